// Package scene 大厅的几何与投影计算，不依赖渲染后端
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"photohall/pkg/core"
)

// 投影参数
const (
	FieldOfView = 55.0 // 垂直视角（度）
	NearPlane   = 0.05
	FarPlane    = 200.0
)

var worldUp = mgl64.Vec3{0, 1, 0}

// Projector 透视投影：世界坐标 -> 屏幕像素
type Projector struct {
	view   mgl64.Mat4
	proj   mgl64.Mat4
	width  float64
	height float64
}

// NewProjector 按相机姿态与屏幕尺寸创建投影
func NewProjector(pose core.CameraPose, width, height int) Projector {
	w := float64(max(width, 1))
	h := float64(max(height, 1))
	return Projector{
		view:   mgl64.LookAtV(pose.Position, pose.Target, worldUp),
		proj:   mgl64.Perspective(mgl64.DegToRad(FieldOfView), w/h, NearPlane, FarPlane),
		width:  w,
		height: h,
	}
}

// ToCamera 世界坐标转相机坐标（相机朝向 -Z）
func (p Projector) ToCamera(v mgl64.Vec3) mgl64.Vec3 {
	return p.view.Mul4x1(v.Vec4(1)).Vec3()
}

func (p Projector) screen(c mgl64.Vec3) mgl64.Vec2 {
	clip := p.proj.Mul4x1(c.Vec4(1))
	w := clip.W()
	return mgl64.Vec2{
		(clip.X()/w + 1) * 0.5 * p.width,
		(1 - clip.Y()/w) * 0.5 * p.height,
	}
}

// Project 投影一个点；位于近平面之后时返回 false
// depth 为点到相机平面的距离
func (p Projector) Project(v mgl64.Vec3) (pt mgl64.Vec2, depth float64, ok bool) {
	c := p.ToCamera(v)
	if c.Z() > -NearPlane {
		return mgl64.Vec2{}, 0, false
	}
	return p.screen(c), -c.Z(), true
}

// Segment 投影线段，跨越近平面的部分被裁掉
func (p Projector) Segment(a, b mgl64.Vec3) (mgl64.Vec2, mgl64.Vec2, bool) {
	ca, cb := p.ToCamera(a), p.ToCamera(b)
	limit := -NearPlane
	aIn, bIn := ca.Z() <= limit, cb.Z() <= limit
	switch {
	case !aIn && !bIn:
		return mgl64.Vec2{}, mgl64.Vec2{}, false
	case !aIn:
		ca = clipNear(cb, ca, limit)
	case !bIn:
		cb = clipNear(ca, cb, limit)
	}
	return p.screen(ca), p.screen(cb), true
}

// clipNear 从 in 指向 out 的线段与 z=limit 的交点
func clipNear(in, out mgl64.Vec3, limit float64) mgl64.Vec3 {
	t := (limit - in.Z()) / (out.Z() - in.Z())
	return in.Add(out.Sub(in).Mul(t))
}

// Corners 以 center 为中心、朝向 yaw 的竖直矩形四角
// 顺序：左上、右上、右下、左下（从正面看）
func Corners(center mgl64.Vec3, yaw, halfW, halfH float64) [4]mgl64.Vec3 {
	right := mgl64.Vec3{math.Cos(yaw), 0, -math.Sin(yaw)}.Mul(halfW)
	up := worldUp.Mul(halfH)
	return [4]mgl64.Vec3{
		center.Sub(right).Add(up),
		center.Add(right).Add(up),
		center.Add(right).Sub(up),
		center.Sub(right).Sub(up),
	}
}

// Grid 把四边形细分为 (n+1)×(n+1) 个点，行优先，从上到下
// 细分后每个小格单独仿射贴图，透视变形不明显
func Grid(c [4]mgl64.Vec3, n int) []mgl64.Vec3 {
	n = max(n, 1)
	pts := make([]mgl64.Vec3, 0, (n+1)*(n+1))
	for row := 0; row <= n; row++ {
		v := float64(row) / float64(n)
		left := lerp3(c[0], c[3], v)
		right := lerp3(c[1], c[2], v)
		for col := 0; col <= n; col++ {
			pts = append(pts, lerp3(left, right, float64(col)/float64(n)))
		}
	}
	return pts
}

func lerp3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
