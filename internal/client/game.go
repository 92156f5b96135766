// Package client 基于 Ebiten 的漫游客户端：采集输入、推进模拟、绘制画面
package client

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"photohall/internal/client/scene"
	"photohall/pkg/core"
)

// FPS 重新导出
const FPS = core.FPS

// StatusFunc 调试面板上附加的一行状态
type StatusFunc func() string

// Game 客户端主结构（Ebiten 游戏循环）
type Game struct {
	coreGame *core.Game
	hall     *HallRenderer
	overlay  *Overlay
	pointers *scene.PointerTracker

	lastUpdateTime time.Time
	width, height  int
	touchIDs       []ebiten.TouchID
	pressedIDs     []ebiten.TouchID

	debug  bool
	status StatusFunc
}

// NewGame 创建客户端；loader 负责按需加载展品图片
func NewGame(cfg core.Config, loader core.ImageLoader, width, height int) (*Game, error) {
	textures := newTextureCache()
	overlay := NewOverlay(textures)

	coreGame, err := core.NewGame(cfg, loader, overlay)
	if err != nil {
		return nil, err
	}

	g := &Game{
		coreGame:       coreGame,
		hall:           NewHallRenderer(cfg.Hall, textures),
		overlay:        overlay,
		pointers:       scene.NewPointerTracker(),
		lastUpdateTime: time.Now(),
		width:          width,
		height:         height,
	}
	g.coreGame.SetJoystickCenter(scene.JoystickCenter(width, height, cfg.Joystick))
	return g, nil
}

// Core 模拟核心，用于绑定加载器
func (g *Game) Core() *core.Game { return g.coreGame }

// SetStatus 设置调试面板的附加状态
func (g *Game) SetStatus(fn StatusFunc) { g.status = fn }

// Update 更新游戏状态
func (g *Game) Update() error {
	// 计算delta time，过大的步长由核心裁剪
	now := time.Now()
	deltaTime := now.Sub(g.lastUpdateTime).Seconds()
	g.lastUpdateTime = now

	g.coreGame.SetJoystickCenter(scene.JoystickCenter(g.width, g.height, g.coreGame.Config().Joystick))

	g.collectPointers()
	scene.Dispatch(g.pointers, g.coreGame, g.width, g.frameInput())

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}

	g.coreGame.Tick(deltaTime)
	return nil
}

// collectPointers 采集鼠标、触点与键盘模拟的摇杆指针
func (g *Game) collectPointers() {
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.pointers.Set(core.MousePointer, mgl64.Vec2{float64(x), float64(y)})
	}

	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		x, y := ebiten.TouchPosition(id)
		g.pointers.Set(core.PointerID(id), mgl64.Vec2{float64(x), float64(y)})
	}

	// 模拟指针必须落在摇杆点击区内，否则会被当作选择
	joy := g.coreGame.Joystick
	reach := min(joy.Radius, joy.HitRect.Max.X()-joy.Center.X())
	if target, ok := scene.KeyboardTarget(joy.Center, reach, keyboardDirection()); ok {
		g.pointers.Set(scene.KeyboardPointer, target)
	}
}

// keyboardDirection WASD 或方向键；y 为前进
func keyboardDirection() mgl64.Vec2 {
	var dir mgl64.Vec2
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dir[1]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dir[1]--
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dir[0]--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dir[0]++
	}
	return dir
}

// frameInput 本帧刚按下的点击位置与 Esc
func (g *Game) frameInput() scene.FrameInput {
	in := scene.FrameInput{Escape: inpututil.IsKeyJustPressed(ebiten.KeyEscape)}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		in.Presses = append(in.Presses, mgl64.Vec2{float64(x), float64(y)})
	}
	g.pressedIDs = inpututil.AppendJustPressedTouchIDs(g.pressedIDs[:0])
	for _, id := range g.pressedIDs {
		x, y := ebiten.TouchPosition(id)
		in.Presses = append(in.Presses, mgl64.Vec2{float64(x), float64(y)})
	}
	return in
}

// Draw 绘制游戏画面
func (g *Game) Draw(screen *ebiten.Image) {
	f := g.coreGame.Frame()
	g.hall.Draw(screen, f)

	if f.Mode == core.ViewInspecting {
		g.overlay.Draw(screen, f)
	} else {
		drawHUD(screen, f)
	}

	if g.debug {
		lines := []string{
			fmt.Sprintf("fps=%.0f tps=%.0f", ebiten.ActualFPS(), ebiten.ActualTPS()),
			g.coreGame.String(),
		}
		if g.status != nil {
			lines = append(lines, g.status())
		}
		drawDebug(screen, lines...)
	}
}

// Layout 画面跟随窗口尺寸
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
