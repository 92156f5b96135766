package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Game 一次漫游会话（纯逻辑，不包含渲染）
// 所有方法都应在同一个 goroutine（渲染循环）中调用；只有 Registry.Complete 例外
type Game struct {
	cfg    Config
	bounds Bounds

	Player    *Player
	Camera    *CameraRig
	Exhibits  *Registry
	Joystick  *Joystick
	proximity *Proximity
	view      *ViewState

	frameID uint64
	frame   Frame
}

// NewGame 创建会话；loader 和 viewer 可以为 nil
func NewGame(cfg Config, loader ImageLoader, viewer Viewer) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	player := NewPlayer(cfg)
	g := &Game{
		cfg:       cfg,
		bounds:    cfg.Hall.Bounds(),
		Player:    player,
		Camera:    NewCameraRig(cfg.Camera, player),
		Exhibits:  NewRegistry(cfg),
		Joystick:  NewJoystick(mgl64.Vec2{}, cfg.Joystick),
		proximity: NewProximity(cfg.Exhibits, loader),
		view:      NewViewState(viewer),
	}
	return g, nil
}

// Config 会话参数
func (g *Game) Config() Config { return g.cfg }

// Bounds 玩家活动范围
func (g *Game) Bounds() Bounds { return g.bounds }

// SetJoystickCenter 屏幕尺寸变化时重新放置摇杆，进行中的手势会被丢弃
func (g *Game) SetJoystickCenter(center mgl64.Vec2) {
	if g.Joystick.Center == center {
		return
	}
	g.Joystick = NewJoystick(center, g.cfg.Joystick)
}

// Tick 推进一帧
func (g *Game) Tick(dt float64) {
	dt = ClampDelta(dt, g.cfg.MaxDeltaTime)

	if g.view.Inspecting() {
		g.Player.Stop()
	} else {
		g.Player.Update(g.Joystick.Value(), g.cfg.Player, g.bounds, dt)
	}

	g.proximity.Update(g.Exhibits, g.Player.Position, dt)
	g.Camera.Update(g.Player, dt)
	g.frameID++
}

// PointerDown 指针按下；未被摇杆吸收时视为一次选择
func (g *Game) PointerDown(id PointerID, p mgl64.Vec2) {
	if g.Joystick.PointerDown(id, p) {
		return
	}
	g.Select(p)
}

// PointerMove 指针移动
func (g *Game) PointerMove(id PointerID, p mgl64.Vec2) {
	g.Joystick.PointerMove(id, p)
}

// PointerUp 指针抬起
func (g *Game) PointerUp(id PointerID) {
	g.Joystick.PointerUp(id)
}

// Select 点击选择当前最近的展品；落在摇杆区域的点击被丢弃
func (g *Game) Select(p mgl64.Vec2) bool {
	if g.Joystick.Contains(p) {
		return false
	}
	idx, ok := g.proximity.Active()
	if !ok || g.view.Inspecting() {
		return false
	}
	return g.view.Open(g.Exhibits.view(idx, true), true)
}

// Close 关闭大图，回到漫游
func (g *Game) Close() bool {
	return g.view.Close()
}

// Active 本帧最近的可交互展品
func (g *Game) Active() (int, bool) {
	return g.proximity.Active()
}

// Mode 当前视图状态
func (g *Game) Mode() ViewMode { return g.view.Mode() }

// Inspecting 正在查看的展品
func (g *Game) Inspecting() (int, bool) { return g.view.Ref() }

// HintVisible 是否显示"点击查看"提示
func (g *Game) HintVisible() bool {
	_, ok := g.proximity.Active()
	return ok && !g.view.Inspecting()
}

// FrameID 已推进的帧数
func (g *Game) FrameID() uint64 { return g.frameID }

// Frame 生成当前帧的渲染快照
func (g *Game) Frame() *Frame {
	f := &g.frame
	f.ID = g.frameID
	f.Hall = g.cfg.Hall
	f.Player = PlayerView{
		Position: g.Player.Position,
		Yaw:      g.Player.Yaw,
		Speed:    g.Player.PlanarSpeed(),
	}
	f.Camera = g.Camera.Pose()
	f.HintVisible = g.HintVisible()
	f.Mode = g.view.Mode()
	f.Knob = g.Joystick.Knob()
	f.JoystickCenter = g.Joystick.Center
	f.JoystickRadius = g.Joystick.Radius
	f.JoystickActive = g.Joystick.Active()

	active, ok := g.proximity.Active()
	f.Exhibits = f.Exhibits[:0]
	for i := 0; i < g.Exhibits.Len(); i++ {
		f.Exhibits = append(f.Exhibits, g.Exhibits.view(i, ok && i == active))
	}
	return f
}

// String 调试输出
func (g *Game) String() string {
	p := g.Player.Position
	return fmt.Sprintf("frame=%d mode=%s pos=(%.2f, %.2f) yaw=%.2f", g.frameID, g.view.Mode(), p.X(), p.Z(), g.Player.Yaw)
}
