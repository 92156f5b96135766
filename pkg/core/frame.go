package core

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
)

// ExhibitView 单个展品的渲染快照
type ExhibitView struct {
	Index    int
	Key      string
	Side     WallSide
	Position mgl64.Vec3
	Yaw      float64
	Scale    float64
	Emphasis float64
	State    LoadState
	Image    image.Image // 仅在 State == LoadReady 时非 nil
	Active   bool        // 本帧的最近展品
}

// PlayerView 玩家渲染快照
type PlayerView struct {
	Position mgl64.Vec3
	Yaw      float64
	Speed    float64
}

// Frame 一帧的渲染提交，由 Game.Frame 生成
// Exhibits 切片在下一次 Frame 调用时会被复用
type Frame struct {
	ID             uint64
	Hall           HallConfig
	Player         PlayerView
	Camera         CameraPose
	Exhibits       []ExhibitView
	HintVisible    bool
	Mode           ViewMode
	Knob           mgl64.Vec2
	JoystickCenter mgl64.Vec2
	JoystickRadius float64
	JoystickActive bool
}

func (r *Registry) view(i int, active bool) ExhibitView {
	ex := &r.exhibits[i]
	state, img := r.loadSnapshot(i)
	return ExhibitView{
		Index:    ex.Index,
		Key:      ex.ImageKey,
		Side:     ex.Side,
		Position: ex.Position,
		Yaw:      ex.Yaw,
		Scale:    ex.CurrentScale,
		Emphasis: ex.CurrentEmphasis,
		State:    state,
		Image:    img,
		Active:   active,
	}
}
