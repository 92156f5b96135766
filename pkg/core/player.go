package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds 玩家活动范围（XZ 平面）
type Bounds struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

// Clamp 把位置限制在范围内，Y 不变
func (b Bounds) Clamp(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(p.X(), b.MinX, b.MaxX),
		p.Y(),
		mgl64.Clamp(p.Z(), b.MinZ, b.MaxZ),
	}
}

// Contains 检查位置是否在范围内
func (b Bounds) Contains(p mgl64.Vec3) bool {
	return p.X() >= b.MinX && p.X() <= b.MaxX && p.Z() >= b.MinZ && p.Z() <= b.MaxZ
}

// Player 玩家（纯逻辑，不包含渲染）
// 位置固定在 Y=0 平面，速度只有 X/Z 分量
type Player struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Yaw      float64 // 朝向，0 表示面向 +Z
}

// NewPlayer 在入口处创建玩家
func NewPlayer(cfg Config) *Player {
	return &Player{
		Position: cfg.Hall.Bounds().Clamp(mgl64.Vec3{0, 0, cfg.Player.SpawnZ}),
	}
}

// Update 根据摇杆输入推进一帧
func (p *Player) Update(input mgl64.Vec2, cfg PlayerConfig, bounds Bounds, dt float64) {
	desired := mgl64.Vec3{input.X(), 0, input.Y()}
	if desired.LenSqr() > directionEpsilonSq {
		desired = desired.Normalize()
	} else {
		desired = mgl64.Vec3{}
	}

	target := desired.Mul(cfg.Speed)
	p.Velocity = DampVec3(p.Velocity, target, cfg.Accel, dt)

	// 松开摇杆时额外阻尼，停得更平缓
	if input.LenSqr() < releaseEpsilonSq {
		p.Velocity = DampVec3(p.Velocity, mgl64.Vec3{}, cfg.Damping, dt)
	}

	p.Position = bounds.Clamp(p.Position.Add(p.Velocity.Mul(dt)))

	if speed := math.Hypot(p.Velocity.X(), p.Velocity.Z()); speed > turnSpeedThreshold {
		yaw := math.Atan2(p.Velocity.X(), p.Velocity.Z())
		p.Yaw = DampAngle(p.Yaw, yaw, yawRate, dt)
	}
}

// Stop 立即停止（查看大图时冻结）
func (p *Player) Stop() {
	p.Velocity = mgl64.Vec3{}
}

// Forward 当前朝向的单位向量
func (p *Player) Forward() mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(p.Yaw), 0, math.Cos(p.Yaw)}
}

// PlanarSpeed 平面速度大小
func (p *Player) PlanarSpeed() float64 {
	return math.Hypot(p.Velocity.X(), p.Velocity.Z())
}
