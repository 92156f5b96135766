package client

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"photohall/pkg/core"
)

var hudFace = text.NewGoXFace(basicfont.Face7x13)

const (
	lineHeight = 16
	knobRadius = 18
	hintText   = "Tap / click to view"
)

var (
	joyBaseColor   = color.RGBA{255, 255, 255, 28}
	joyRingColor   = color.RGBA{255, 255, 255, 90}
	joyKnobColor   = color.RGBA{255, 255, 255, 150}
	joyActiveColor = color.RGBA{255, 255, 255, 220}
	hintBackColor  = color.RGBA{0, 0, 0, 140}
	hintColor      = color.RGBA{255, 255, 255, 0xe0}
	debugColor     = color.RGBA{220, 230, 240, 255}
)

func drawText(screen *ebiten.Image, x, y float64, msg string, clr color.Color) {
	options := &text.DrawOptions{}
	options.GeoM.Translate(x, y)
	options.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, msg, hudFace, options)
}

// drawTextCentered 以 (cx, cy) 为中心绘制一行文字
func drawTextCentered(screen *ebiten.Image, msg string, cx, cy float64, clr color.Color) {
	w, h := text.Measure(msg, hudFace, lineHeight)
	drawText(screen, cx-w/2, cy-h/2, msg, clr)
}

// drawHUD 漫游界面：摇杆与提示
func drawHUD(screen *ebiten.Image, f *core.Frame) {
	cx, cy := float32(f.JoystickCenter.X()), float32(f.JoystickCenter.Y())
	r := float32(f.JoystickRadius)

	vector.DrawFilledCircle(screen, cx, cy, r, joyBaseColor, true)
	vector.StrokeCircle(screen, cx, cy, r, 2, joyRingColor, true)

	knob := joyKnobColor
	if f.JoystickActive {
		knob = joyActiveColor
	}
	vector.DrawFilledCircle(screen, cx+float32(f.Knob.X()), cy+float32(f.Knob.Y()), knobRadius, knob, true)

	if f.HintVisible {
		w := float64(screen.Bounds().Dx())
		y := float64(screen.Bounds().Dy()) - 64
		tw, _ := text.Measure(hintText, hudFace, lineHeight)
		pad := 10.0
		vector.DrawFilledRect(screen, float32(w/2-tw/2-pad), float32(y-lineHeight/2-pad/2),
			float32(tw+2*pad), float32(lineHeight+pad), hintBackColor, false)
		drawTextCentered(screen, hintText, w/2, y, hintColor)
	}
}

// drawDebug 左上角调试信息
func drawDebug(screen *ebiten.Image, lines ...string) {
	y := 8.0
	for _, line := range lines {
		drawText(screen, 8, y, line, debugColor)
		y += lineHeight
	}
}
