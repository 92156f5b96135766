package client

import (
	"image"
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"photohall/internal/client/scene"
	"photohall/pkg/core"
)

// 颜色
var (
	backgroundColor  = color.RGBA{0x16, 0x17, 0x1a, 255}
	edgeColor        = color.RGBA{0x3a, 0x3e, 0x45, 255}
	frameColor       = color.RGBA{0x0f, 0x11, 0x14, 255}
	placeholderColor = color.RGBA{0x2a, 0x2d, 0x31, 255}
	failedColor      = color.RGBA{0x4a, 0x22, 0x24, 255}
	captionColor     = color.RGBA{0xff, 0xff, 0xff, 0xe0}
)

const gridSteps = 4 // 每个展品细分为 gridSteps² 个小格

// textureCache 按展品序号缓存 GPU 纹理；图片就绪后不会再变
type textureCache struct {
	images map[int]*ebiten.Image
}

func newTextureCache() *textureCache {
	return &textureCache{images: make(map[int]*ebiten.Image)}
}

func (c *textureCache) get(ex core.ExhibitView) *ebiten.Image {
	if ex.State != core.LoadReady || ex.Image == nil {
		return nil
	}
	if img, ok := c.images[ex.Index]; ok {
		return img
	}
	img := ebiten.NewImageFromImage(ex.Image)
	c.images[ex.Index] = img
	return img
}

// HallRenderer 绘制大厅线框与墙上的展品
type HallRenderer struct {
	edges    []scene.Edge
	textures *textureCache
	white    *ebiten.Image

	order   []int
	depths  []float64
	verts   []ebiten.Vertex
	indices []uint16
}

// NewHallRenderer 创建渲染器
func NewHallRenderer(hall core.HallConfig, textures *textureCache) *HallRenderer {
	base := ebiten.NewImage(3, 3)
	base.Fill(color.White)

	return &HallRenderer{
		edges:    scene.HallEdges(hall),
		textures: textures,
		white:    base.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		indices:  gridIndices(gridSteps),
	}
}

func gridIndices(n int) []uint16 {
	idx := make([]uint16, 0, n*n*6)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			i0 := uint16(row*(n+1) + col)
			i1 := i0 + 1
			i2 := i0 + uint16(n+1)
			i3 := i2 + 1
			idx = append(idx, i0, i1, i2, i1, i3, i2)
		}
	}
	return idx
}

// Draw 绘制一帧
func (r *HallRenderer) Draw(screen *ebiten.Image, f *core.Frame) {
	screen.Fill(backgroundColor)
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	proj := scene.NewProjector(f.Camera, w, h)

	for _, e := range r.edges {
		a, b, ok := proj.Segment(e[0], e[1])
		if !ok {
			continue
		}
		vector.StrokeLine(screen, float32(a.X()), float32(a.Y()), float32(b.X()), float32(b.Y()), 1, edgeColor, true)
	}

	if f.Hall.Caption != "" {
		if pt, depth, ok := proj.Project(scene.CaptionAnchor(f.Hall)); ok && depth < scene.FarPlane {
			drawTextCentered(screen, f.Hall.Caption, pt.X(), pt.Y(), captionColor)
		}
	}

	// 由远及近绘制
	r.order = r.order[:0]
	r.depths = r.depths[:0]
	for i := range f.Exhibits {
		_, depth, ok := proj.Project(f.Exhibits[i].Position)
		r.depths = append(r.depths, depth)
		if ok {
			r.order = append(r.order, i)
		}
	}
	slices.SortFunc(r.order, func(a, b int) int {
		switch {
		case r.depths[a] > r.depths[b]:
			return -1
		case r.depths[a] < r.depths[b]:
			return 1
		}
		return a - b
	})

	for _, i := range r.order {
		r.drawExhibit(screen, proj, f.Exhibits[i])
	}
}

func (r *HallRenderer) drawExhibit(screen *ebiten.Image, proj scene.Projector, ex core.ExhibitView) {
	frame, photo := scene.ExhibitCorners(ex)
	light := brightness(ex.Emphasis)

	if !r.drawQuad(screen, proj, frame, nil, scaleColor(frameColor, 1+ex.Emphasis)) {
		return
	}

	if tex := r.textures.get(ex); tex != nil {
		r.drawQuad(screen, proj, photo, tex, [4]float32{light, light, light, 1})
		return
	}

	clr := placeholderColor
	if ex.State == core.LoadFailed {
		clr = failedColor
	}
	r.drawQuad(screen, proj, photo, nil, scaleColor(clr, float64(light)))
}

// drawQuad 以细分网格贴图；任何顶点落到近平面后都放弃绘制
func (r *HallRenderer) drawQuad(screen *ebiten.Image, proj scene.Projector, corners [4]mgl64.Vec3, src *ebiten.Image, tint [4]float32) bool {
	if src == nil {
		src = r.white
	}
	b := src.Bounds()
	pts := scene.Grid(corners, gridSteps)

	r.verts = r.verts[:0]
	for i, p := range pts {
		s, _, ok := proj.Project(p)
		if !ok {
			return false
		}
		row, col := i/(gridSteps+1), i%(gridSteps+1)
		r.verts = append(r.verts, ebiten.Vertex{
			DstX:   float32(s.X()),
			DstY:   float32(s.Y()),
			SrcX:   float32(b.Min.X) + float32(b.Dx())*float32(col)/gridSteps,
			SrcY:   float32(b.Min.Y) + float32(b.Dy())*float32(row)/gridSteps,
			ColorR: tint[0],
			ColorG: tint[1],
			ColorB: tint[2],
			ColorA: tint[3],
		})
	}

	screen.DrawTriangles(r.verts, r.indices, src, &ebiten.DrawTrianglesOptions{Filter: ebiten.FilterLinear})
	return true
}

// brightness 高亮强度映射为亮度
func brightness(emphasis float64) float32 {
	return float32(min(0.72+0.5*emphasis, 1))
}

func scaleColor(c color.RGBA, k float64) [4]float32 {
	f := func(v uint8) float32 { return float32(min(float64(v)/255*k, 1)) }
	return [4]float32{f(c.R), f(c.G), f(c.B), float32(c.A) / 255}
}
