package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"photohall/pkg/core"
)

// Controller 接收一帧输入的会话，core.Game 实现了它
type Controller interface {
	PointerSink
	Mode() core.ViewMode
	Close() bool
}

// FrameInput 一帧内新发生的点击与按键
type FrameInput struct {
	Presses []mgl64.Vec2 // 本帧刚按下的鼠标/触点位置
	Escape  bool
}

// CloseRequested 按 Esc 或点中关闭按钮
func CloseRequested(width int, in FrameInput) bool {
	if in.Escape {
		return true
	}
	btn := CloseButton(width)
	for _, p := range in.Presses {
		if btn.Contains(p) {
			return true
		}
	}
	return false
}

// Dispatch 先投递指针事件，再处理关闭
// 只有本帧开始时已在查看才会关闭，同一次点击不会既打开又关闭
func Dispatch(tr *PointerTracker, c Controller, width int, in FrameInput) {
	inspecting := c.Mode() == core.ViewInspecting
	tr.Flush(c)
	if inspecting && CloseRequested(width, in) {
		c.Close()
	}
}
