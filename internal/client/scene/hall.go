package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"photohall/pkg/core"
)

// 展品尺寸（米）
const (
	FrameWidth  = 1.35
	FrameHeight = 0.95
	PhotoWidth  = 1.22
	PhotoHeight = 0.82
	floorStep   = 2.0 // 地面横线间距
)

// Edge 一条线段
type Edge [2]mgl64.Vec3

// HallEdges 大厅的线框：四条纵向棱、入口与尽头墙、地面横线
func HallEdges(h core.HallConfig) []Edge {
	x := h.Width * 0.5
	l, y := h.Length, h.Height
	edges := []Edge{
		{{-x, 0, 0}, {-x, 0, l}},
		{{x, 0, 0}, {x, 0, l}},
		{{-x, y, 0}, {-x, y, l}},
		{{x, y, 0}, {x, y, l}},
		{{-x, 0, l}, {x, 0, l}},
		{{-x, y, l}, {x, y, l}},
		{{-x, 0, l}, {-x, y, l}},
		{{x, 0, l}, {x, y, l}},
		{{-x, 0, 0}, {-x, y, 0}},
		{{x, 0, 0}, {x, y, 0}},
	}
	for z := floorStep; z < l; z += floorStep {
		edges = append(edges, Edge{{-x, 0, z}, {x, 0, z}})
	}
	return edges
}

// CaptionAnchor 尽头墙上文字的位置
func CaptionAnchor(h core.HallConfig) mgl64.Vec3 {
	return mgl64.Vec3{0, h.Height * 0.62, h.Length - 0.01}
}

// ExhibitCorners 展品边框与照片的四角，已乘缩放
func ExhibitCorners(ex core.ExhibitView) (frame, photo [4]mgl64.Vec3) {
	s := ex.Scale
	if s <= 0 {
		s = 1
	}
	// 照片略微离开墙面，避免与边框重叠
	n := mgl64.Vec3{math.Sin(ex.Yaw), 0, math.Cos(ex.Yaw)}
	frame = Corners(ex.Position, ex.Yaw, FrameWidth*0.5*s, FrameHeight*0.5*s)
	photo = Corners(ex.Position.Add(n.Mul(0.04)), ex.Yaw, PhotoWidth*0.5*s, PhotoHeight*0.5*s)
	return frame, photo
}
