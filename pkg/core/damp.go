package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// dampAlpha 指数衰减的插值比例 1-exp(-lambda*dt)
func dampAlpha(lambda, dt float64) float64 {
	return 1 - math.Exp(-lambda*dt)
}

// Damp 帧率无关的指数平滑：lerp(x, target, 1-exp(-lambda*dt))
func Damp(x, target, lambda, dt float64) float64 {
	return x + (target-x)*dampAlpha(lambda, dt)
}

// DampVec3 对三维向量逐分量做 Damp
func DampVec3(v, target mgl64.Vec3, lambda, dt float64) mgl64.Vec3 {
	return lerpVec3(v, target, dampAlpha(lambda, dt))
}

// DampAngle 沿最短弧线对角度做 Damp，结果落在 (-π, π]
func DampAngle(angle, target, lambda, dt float64) float64 {
	diff := wrapAngle(target - angle)
	return wrapAngle(angle + diff*dampAlpha(lambda, dt))
}

// SmoothAlpha 把相对 60Hz 定义的平滑系数换算成本帧插值比例
// 连续 N 帧的复合结果只取决于 dt 之和
func SmoothAlpha(factor, dt float64) float64 {
	return 1 - math.Pow(1-factor, dt*referenceTickRate)
}

// ClampDelta 把帧间隔限制在 [0, max]
func ClampDelta(dt, max float64) float64 {
	if dt < 0 || math.IsNaN(dt) {
		return 0
	}
	if dt > max {
		return max
	}
	return dt
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
