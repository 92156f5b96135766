package core

// 游戏帧率
const (
	FPS          = 60
	MaxDeltaTime = 0.033 // 单帧最大步长（秒），切后台回来时避免位置跳变
)

// 数值阈值
const (
	directionEpsilonSq = 0.0001 // 期望方向长度平方低于此值视为零向量
	releaseEpsilonSq   = 0.0005 // 摇杆输入长度平方低于此值视为松开
	turnSpeedThreshold = 0.2    // 平面速度低于此值不调整朝向（米/秒）
	yawRate            = 8.0    // 朝向阻尼系数
	referenceTickRate  = 60.0   // 相机平滑系数的参考帧率
)

// 默认大厅尺寸（米）
const (
	DefaultHallWidth  = 8.0
	DefaultHallHeight = 3.2
	DefaultHallLength = 42.0
)

// 默认玩家参数
const (
	DefaultPlayerSpeed   = 2.4  // 米/秒
	DefaultPlayerAccel   = 8.0  // 越大起步越灵敏
	DefaultPlayerDamping = 10.0 // 松开摇杆后的减速阻尼
	DefaultSpawnZ        = 1.2
)

// 默认展品布局
const (
	DefaultExhibitsPerSide = 5
	DefaultExhibitHeight   = 1.55
	DefaultExhibitZStart   = 6.0
	DefaultExhibitZStep    = 6.5
	DefaultProximity       = 1.7
	DefaultPreloadMargin   = 4.0
	DefaultScaleUp         = 1.06
)
