package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"photohall/pkg/core"
)

// 界面布局（像素）
const (
	JoystickMargin  = 20.0
	OverlayPadding  = 48.0
	CloseButtonSize = 36.0
	closeInset      = 16.0
)

// KeyboardPointer 键盘方向键模拟的指针标识
const KeyboardPointer core.PointerID = -2

// JoystickCenter 摇杆放在屏幕左下角
func JoystickCenter(width, height int, cfg core.JoystickConfig) mgl64.Vec2 {
	m := cfg.HitHalfExtent + JoystickMargin
	return mgl64.Vec2{m, float64(height) - m}
}

// KeyboardTarget 方向键对应的摇杆拖拽位置；dir 为零时返回 false
// dir.Y() > 0 表示前进，对应屏幕向上
func KeyboardTarget(center mgl64.Vec2, radius float64, dir mgl64.Vec2) (mgl64.Vec2, bool) {
	if dir.LenSqr() == 0 {
		return mgl64.Vec2{}, false
	}
	d := dir.Normalize().Mul(radius)
	return mgl64.Vec2{center.X() + d.X(), center.Y() - d.Y()}, true
}

// CloseButton 全屏查看时右上角的关闭按钮
func CloseButton(width int) core.Rect {
	x := float64(width) - closeInset - CloseButtonSize
	return core.Rect{
		Min: mgl64.Vec2{x, closeInset},
		Max: mgl64.Vec2{x + CloseButtonSize, closeInset + CloseButtonSize},
	}
}

// FitRect 把 w×h 的图片等比缩放后居中放进屏幕（留出边距）
// 图片不会被放大超过原尺寸
func FitRect(w, h, screenW, screenH int) core.Rect {
	availW := float64(screenW) - 2*OverlayPadding
	availH := float64(screenH) - 2*OverlayPadding
	if w <= 0 || h <= 0 || availW <= 0 || availH <= 0 {
		c := mgl64.Vec2{float64(screenW) * 0.5, float64(screenH) * 0.5}
		return core.Rect{Min: c, Max: c}
	}

	scale := min(availW/float64(w), availH/float64(h), 1)
	dw, dh := float64(w)*scale, float64(h)*scale
	x := (float64(screenW) - dw) * 0.5
	y := (float64(screenH) - dh) * 0.5
	return core.Rect{Min: mgl64.Vec2{x, y}, Max: mgl64.Vec2{x + dw, y + dh}}
}
