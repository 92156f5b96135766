package core

import "github.com/go-gl/mathgl/mgl64"

// CameraPose 相机位置与注视点
type CameraPose struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
}

// CameraRig 第三人称跟随相机
// 状态独立于玩家，是玩家姿态的平滑副本
type CameraRig struct {
	cfg  CameraConfig
	pose CameraPose
}

// NewCameraRig 创建相机，初始姿态直接落在玩家身后
func NewCameraRig(cfg CameraConfig, player *Player) *CameraRig {
	c := &CameraRig{cfg: cfg}
	c.pose = c.Desired(player)
	return c
}

// Desired 根据玩家姿态计算不带平滑的目标姿态
func (c *CameraRig) Desired(player *Player) CameraPose {
	forward := player.Forward()
	return CameraPose{
		Position: player.Position.Sub(forward.Mul(c.cfg.Back)).Add(mgl64.Vec3{0, c.cfg.Height, 0}),
		Target:   player.Position.Add(forward.Mul(c.cfg.LookAhead)).Add(mgl64.Vec3{0, c.cfg.LookHeight, 0}),
	}
}

// Update 向目标姿态平滑靠拢；查看大图时同样调用
func (c *CameraRig) Update(player *Player, dt float64) {
	desired := c.Desired(player)
	alpha := SmoothAlpha(c.cfg.Smooth, dt)
	c.pose.Position = lerpVec3(c.pose.Position, desired.Position, alpha)
	c.pose.Target = lerpVec3(c.pose.Target, desired.Target, alpha)
}

// Pose 当前相机姿态
func (c *CameraRig) Pose() CameraPose {
	return c.pose
}

// SetPose 直接设置姿态（跳过平滑）
func (c *CameraRig) SetPose(pose CameraPose) {
	c.pose = pose
}
