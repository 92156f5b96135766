package client

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"photohall/internal/client/scene"
	"photohall/internal/log"
	"photohall/pkg/core"
)

var (
	overlayBackColor = color.RGBA{0, 0, 0, 225}
	closeBackColor   = color.RGBA{255, 255, 255, 40}
	closeLineColor   = color.RGBA{255, 255, 255, 230}
	overlayTextColor = color.RGBA{255, 255, 255, 200}
)

// Overlay 全屏查看器，实现 core.Viewer
type Overlay struct {
	textures *textureCache
	open     bool
	view     core.ExhibitView
}

// NewOverlay 创建查看器
func NewOverlay(textures *textureCache) *Overlay {
	return &Overlay{textures: textures}
}

// Open 显示展品大图
func (o *Overlay) Open(view core.ExhibitView) {
	o.open = true
	o.view = view
	log.Info("打开展品", "index", view.Index, "key", view.Key, "state", view.State)
}

// Close 隐藏大图
func (o *Overlay) Close() {
	if !o.open {
		return
	}
	o.open = false
	log.Info("关闭展品", "index", o.view.Index)
	o.view = core.ExhibitView{}
}

// IsOpen 是否正在显示
func (o *Overlay) IsOpen() bool { return o.open }

// Draw 绘制大图；图片在打开后才就绪时，从当前帧取最新状态
func (o *Overlay) Draw(screen *ebiten.Image, f *core.Frame) {
	if !o.open {
		return
	}
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), overlayBackColor, false)

	view := o.view
	if view.Index >= 0 && view.Index < len(f.Exhibits) {
		view = f.Exhibits[view.Index]
	}

	if img := o.textures.get(view); img != nil {
		b := img.Bounds()
		rect := scene.FitRect(b.Dx(), b.Dy(), w, h)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale((rect.Max.X()-rect.Min.X())/float64(b.Dx()), (rect.Max.Y()-rect.Min.Y())/float64(b.Dy()))
		op.GeoM.Translate(rect.Min.X(), rect.Min.Y())
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, op)
		drawTextCentered(screen, view.Key, float64(w)/2, rect.Max.Y()+lineHeight, overlayTextColor)
	} else {
		msg := "Loading..."
		switch view.State {
		case core.LoadFailed:
			msg = "Image unavailable"
		case core.LoadNotRequested:
			msg = "No image"
			if view.Key != "" {
				msg = "Loading..."
			}
		}
		drawTextCentered(screen, msg, float64(w)/2, float64(h)/2, overlayTextColor)
	}

	btn := scene.CloseButton(w)
	x0, y0 := float32(btn.Min.X()), float32(btn.Min.Y())
	x1, y1 := float32(btn.Max.X()), float32(btn.Max.Y())
	vector.DrawFilledRect(screen, x0, y0, x1-x0, y1-y0, closeBackColor, false)
	inset := float32(10)
	vector.StrokeLine(screen, x0+inset, y0+inset, x1-inset, y1-inset, 2, closeLineColor, true)
	vector.StrokeLine(screen, x1-inset, y0+inset, x0+inset, y1-inset, 2, closeLineColor, true)
}
