package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"photohall/pkg/core"
)

// PointerSink 接收按下/移动/抬起事件，core.Game 实现了它
type PointerSink interface {
	PointerDown(id core.PointerID, p mgl64.Vec2)
	PointerMove(id core.PointerID, p mgl64.Vec2)
	PointerUp(id core.PointerID)
}

// PointerTracker 把每帧的指针快照转换为事件
// 渲染后端只能轮询当前按下的指针，这里负责求差
type PointerTracker struct {
	prev map[core.PointerID]mgl64.Vec2
	next map[core.PointerID]mgl64.Vec2
	ids  []core.PointerID
}

// NewPointerTracker 创建空的跟踪器
func NewPointerTracker() *PointerTracker {
	return &PointerTracker{
		prev: make(map[core.PointerID]mgl64.Vec2),
		next: make(map[core.PointerID]mgl64.Vec2),
	}
}

// Set 记录本帧按下的一个指针
func (t *PointerTracker) Set(id core.PointerID, p mgl64.Vec2) {
	t.next[id] = p
}

// Flush 与上一帧比较并发出事件：先抬起，再移动，最后按下
// 同类事件按 ID 升序
func (t *PointerTracker) Flush(sink PointerSink) {
	for _, id := range t.sorted(t.prev) {
		if _, ok := t.next[id]; !ok {
			sink.PointerUp(id)
		}
	}
	for _, id := range t.sorted(t.next) {
		if old, ok := t.prev[id]; ok && old != t.next[id] {
			sink.PointerMove(id, t.next[id])
		}
	}
	for _, id := range t.sorted(t.next) {
		if _, ok := t.prev[id]; !ok {
			sink.PointerDown(id, t.next[id])
		}
	}

	t.prev, t.next = t.next, t.prev
	clear(t.next)
}

// Pressed 上一次 Flush 后仍按下的指针数
func (t *PointerTracker) Pressed() int {
	return len(t.prev)
}

func (t *PointerTracker) sorted(m map[core.PointerID]mgl64.Vec2) []core.PointerID {
	t.ids = t.ids[:0]
	for id := range m {
		t.ids = append(t.ids, id)
	}
	slices.Sort(t.ids)
	return t.ids
}
