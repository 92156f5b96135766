package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PointerID 指针手势标识（鼠标或触点）
type PointerID int

// MousePointer 鼠标使用的固定标识，触点使用非负 ID
const MousePointer PointerID = -1

// Rect 屏幕坐标下的轴对齐矩形（闭区间）
type Rect struct {
	Min, Max mgl64.Vec2
}

// Contains 检查点是否落在矩形内
func (r Rect) Contains(p mgl64.Vec2) bool {
	return p.X() >= r.Min.X() && p.X() <= r.Max.X() && p.Y() >= r.Min.Y() && p.Y() <= r.Max.Y()
}

// Joystick 虚拟摇杆：把拖拽手势转换为 [-1,1]² 内的模拟量
type Joystick struct {
	Center  mgl64.Vec2
	Radius  float64
	HitRect Rect

	active  bool
	pointer PointerID
	value   mgl64.Vec2 // x=横移, y=前进
	knob    mgl64.Vec2 // 限幅后的像素偏移，供界面绘制
}

// NewJoystick 在屏幕 center 处创建摇杆
func NewJoystick(center mgl64.Vec2, cfg JoystickConfig) *Joystick {
	ext := mgl64.Vec2{cfg.HitHalfExtent, cfg.HitHalfExtent}
	return &Joystick{
		Center:  center,
		Radius:  cfg.Radius,
		HitRect: Rect{Min: center.Sub(ext), Max: center.Add(ext)},
	}
}

// Contains 检查点是否落在摇杆的点击区域
func (j *Joystick) Contains(p mgl64.Vec2) bool {
	return j.HitRect.Contains(p)
}

// PointerDown 按下；返回该事件是否被摇杆吸收
// 已有手势进行中时，其他指针不会抢占
func (j *Joystick) PointerDown(id PointerID, p mgl64.Vec2) bool {
	if !j.Contains(p) {
		return false
	}
	if j.active {
		return true
	}

	j.active = true
	j.pointer = id
	j.PointerMove(id, p)
	return true
}

// PointerMove 移动；只处理当前手势的指针
func (j *Joystick) PointerMove(id PointerID, p mgl64.Vec2) {
	if !j.active || id != j.pointer {
		return
	}
	if j.Radius <= 0 {
		j.value = mgl64.Vec2{}
		j.knob = mgl64.Vec2{}
		return
	}

	offset := p.Sub(j.Center)
	unit := offset.Mul(1 / j.Radius)
	if l := offset.Len(); l > j.Radius {
		unit = offset.Mul(1 / l)
	}
	unit = clampUnit(unit)

	j.knob = unit.Mul(j.Radius)
	// 屏幕 Y 向下，取反使"向上"对应前进
	j.value = mgl64.Vec2{unit.X(), -unit.Y()}
}

// clampUnit 保证长度严格不超过 1；归一化的舍入误差可能多出一个 ulp
func clampUnit(v mgl64.Vec2) mgl64.Vec2 {
	dir, s := v, 1.0
	for v.Len() > 1 {
		s = math.Nextafter(s, 0)
		v = dir.Mul(s)
	}
	return v
}

// PointerUp 抬起；只有当前手势的指针能结束手势
func (j *Joystick) PointerUp(id PointerID) {
	if !j.active || id != j.pointer {
		return
	}
	j.Reset()
}

// Reset 清空手势状态
func (j *Joystick) Reset() {
	j.active = false
	j.pointer = 0
	j.value = mgl64.Vec2{}
	j.knob = mgl64.Vec2{}
}

// Value 当前输入向量
func (j *Joystick) Value() mgl64.Vec2 { return j.value }

// Knob 当前摇杆头的像素偏移
func (j *Joystick) Knob() mgl64.Vec2 { return j.knob }

// Active 是否有手势进行中
func (j *Joystick) Active() bool { return j.active }
