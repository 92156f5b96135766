package core

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig 配置参数非法
var ErrInvalidConfig = errors.New("配置非法")

// HallConfig 大厅尺寸与玩家活动边界
type HallConfig struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Length  float64 `yaml:"length"`
	MarginX float64 `yaml:"margin_x"` // 左右墙的碰撞边距
	MarginZ float64 `yaml:"margin_z"` // 尽头墙的碰撞边距
	MinZ    float64 `yaml:"min_z"`    // 入口一侧的最小 Z
	Caption string  `yaml:"caption"`  // 尽头墙上的文字
}

// PlayerConfig 玩家移动参数
type PlayerConfig struct {
	Speed   float64 `yaml:"speed"`
	Accel   float64 `yaml:"accel"`
	Damping float64 `yaml:"damping"`
	SpawnZ  float64 `yaml:"spawn_z"`
}

// CameraConfig 跟随相机参数
type CameraConfig struct {
	Height     float64 `yaml:"height"`
	Back       float64 `yaml:"back"`
	LookAhead  float64 `yaml:"look_ahead"`
	LookHeight float64 `yaml:"look_height"`
	Smooth     float64 `yaml:"smooth"` // 越小越"电影感"
}

// ExhibitConfig 展品布局与高亮参数
type ExhibitConfig struct {
	CountPerSide  int      `yaml:"count_per_side"`
	Height        float64  `yaml:"height"`
	ZStart        float64  `yaml:"z_start"`
	ZStep         float64  `yaml:"z_step"`
	WallInset     float64  `yaml:"wall_inset"`
	Proximity     float64  `yaml:"proximity"`
	PreloadMargin float64  `yaml:"preload_margin"`
	ScaleUp       float64  `yaml:"scale_up"`
	BaseEmphasis  float64  `yaml:"base_emphasis"`
	HighEmphasis  float64  `yaml:"high_emphasis"`
	ScaleRate     float64  `yaml:"scale_rate"`
	EmphasisRate  float64  `yaml:"emphasis_rate"`
	Images        []string `yaml:"images"` // 先左墙后右墙
}

// JoystickConfig 虚拟摇杆参数（屏幕像素）
type JoystickConfig struct {
	Radius        float64 `yaml:"radius"`
	HitHalfExtent float64 `yaml:"hit_half_extent"`
}

// Config 模拟核心的全部可调参数
type Config struct {
	Hall         HallConfig     `yaml:"hall"`
	Player       PlayerConfig   `yaml:"player"`
	Camera       CameraConfig   `yaml:"camera"`
	Exhibits     ExhibitConfig  `yaml:"exhibits"`
	Joystick     JoystickConfig `yaml:"joystick"`
	MaxDeltaTime float64        `yaml:"max_delta_time"`
}

// DefaultConfig 返回默认参数
func DefaultConfig() Config {
	images := make([]string, 0, DefaultExhibitsPerSide*2)
	for i := 1; i <= DefaultExhibitsPerSide*2; i++ {
		images = append(images, fmt.Sprintf("p%d.jpg", i))
	}

	return Config{
		Hall: HallConfig{
			Width:   DefaultHallWidth,
			Height:  DefaultHallHeight,
			Length:  DefaultHallLength,
			MarginX: 0.75,
			MarginZ: 0.9,
			MinZ:    0.7,
			Caption: "Welcome to my portfolio.",
		},
		Player: PlayerConfig{
			Speed:   DefaultPlayerSpeed,
			Accel:   DefaultPlayerAccel,
			Damping: DefaultPlayerDamping,
			SpawnZ:  DefaultSpawnZ,
		},
		Camera: CameraConfig{
			Height:     1.35,
			Back:       2.6,
			LookAhead:  2.0,
			LookHeight: 0.9,
			Smooth:     0.08,
		},
		Exhibits: ExhibitConfig{
			CountPerSide:  DefaultExhibitsPerSide,
			Height:        DefaultExhibitHeight,
			ZStart:        DefaultExhibitZStart,
			ZStep:         DefaultExhibitZStep,
			WallInset:     0.14,
			Proximity:     DefaultProximity,
			PreloadMargin: DefaultPreloadMargin,
			ScaleUp:       DefaultScaleUp,
			BaseEmphasis:  0.25,
			HighEmphasis:  0.55,
			ScaleRate:     10.0,
			EmphasisRate:  10.0,
			Images:        images,
		},
		Joystick: JoystickConfig{
			Radius:        46,
			HitHalfExtent: 70,
		},
		MaxDeltaTime: MaxDeltaTime,
	}
}

// Validate 检查参数是否构成一个可运行的大厅
func (c Config) Validate() error {
	h := c.Hall
	switch {
	case h.Width <= 0 || h.Length <= 0:
		return fmt.Errorf("%w: 大厅尺寸必须为正 (%.2f x %.2f)", ErrInvalidConfig, h.Width, h.Length)
	case h.MarginX < 0 || h.MarginZ < 0:
		return fmt.Errorf("%w: 边距不能为负", ErrInvalidConfig)
	case 2*h.MarginX >= h.Width:
		return fmt.Errorf("%w: 左右边距 %.2f 超过半宽", ErrInvalidConfig, h.MarginX)
	case h.MinZ >= h.Length-h.MarginZ:
		return fmt.Errorf("%w: 纵向活动范围为空", ErrInvalidConfig)
	}

	p := c.Player
	if p.Speed < 0 || p.Accel <= 0 || p.Damping < 0 {
		return fmt.Errorf("%w: 玩家速度/加速度/阻尼非法", ErrInvalidConfig)
	}

	if c.Camera.Smooth <= 0 || c.Camera.Smooth > 1 {
		return fmt.Errorf("%w: 相机平滑系数 %.3f 不在 (0, 1]", ErrInvalidConfig, c.Camera.Smooth)
	}

	e := c.Exhibits
	switch {
	case e.CountPerSide < 0:
		return fmt.Errorf("%w: 展品数量为负", ErrInvalidConfig)
	case e.Proximity <= 0 || e.PreloadMargin < 0:
		return fmt.Errorf("%w: 靠近阈值非法", ErrInvalidConfig)
	case e.ScaleUp <= 0:
		return fmt.Errorf("%w: 放大倍数必须为正", ErrInvalidConfig)
	case e.ScaleRate <= 0 || e.EmphasisRate <= 0:
		return fmt.Errorf("%w: 高亮动画速率必须为正", ErrInvalidConfig)
	}

	if c.Joystick.Radius <= 0 {
		return fmt.Errorf("%w: 摇杆半径必须为正", ErrInvalidConfig)
	}
	if c.MaxDeltaTime <= 0 {
		return fmt.Errorf("%w: 最大帧间隔必须为正", ErrInvalidConfig)
	}
	return nil
}

// Bounds 根据边距计算玩家可活动的矩形区域
func (h HallConfig) Bounds() Bounds {
	half := h.Width * 0.5
	return Bounds{
		MinX: -half + h.MarginX,
		MaxX: half - h.MarginX,
		MinZ: h.MinZ,
		MaxZ: h.Length - h.MarginZ,
	}
}
