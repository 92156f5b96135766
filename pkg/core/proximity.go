package core

import "github.com/go-gl/mathgl/mgl64"

// ImageLoader 外部的懒加载服务
// Request 必须幂等，完成后调用 Registry.Complete 回传结果
type ImageLoader interface {
	Request(key string)
}

type nopLoader struct{}

func (nopLoader) Request(string) {}

// Proximity 靠近检测：选出最近的可交互展品，驱动高亮动画并触发懒加载
type Proximity struct {
	cfg    ExhibitConfig
	loader ImageLoader

	active    int
	hasActive bool
	distances []float64
}

// NewProximity 创建靠近检测器；loader 为 nil 时不加载图片
func NewProximity(cfg ExhibitConfig, loader ImageLoader) *Proximity {
	if loader == nil {
		loader = nopLoader{}
	}
	return &Proximity{cfg: cfg, loader: loader, active: -1}
}

// Update 每帧扫描全部展品
func (p *Proximity) Update(reg *Registry, playerPos mgl64.Vec3, dt float64) {
	p.active = -1
	p.hasActive = false
	bestDist := 0.0

	if cap(p.distances) < reg.Len() {
		p.distances = make([]float64, reg.Len())
	}
	p.distances = p.distances[:reg.Len()]

	for i := 0; i < reg.Len(); i++ {
		ex := reg.At(i)
		d := ex.Position.Sub(playerPos).Len()
		p.distances[i] = d

		// 在更大的半径内提前加载
		if d < p.cfg.Proximity+p.cfg.PreloadMargin && reg.markRequested(i) {
			p.loader.Request(ex.ImageKey)
		}

		inRange := d < p.cfg.Proximity
		if inRange {
			ex.TargetScale = p.cfg.ScaleUp
			ex.TargetEmphasis = p.cfg.HighEmphasis
		} else {
			ex.TargetScale = 1.0
			ex.TargetEmphasis = p.cfg.BaseEmphasis
		}

		// 动画与加载状态无关：图片未到时画框也会先响应
		ex.CurrentScale = Damp(ex.CurrentScale, ex.TargetScale, p.cfg.ScaleRate, dt)
		ex.CurrentEmphasis = Damp(ex.CurrentEmphasis, ex.TargetEmphasis, p.cfg.EmphasisRate, dt)

		// 严格小于：距离相同时先遍历到的胜出
		if inRange && (!p.hasActive || d < bestDist) {
			bestDist = d
			p.active = i
			p.hasActive = true
		}
	}
}

// Active 本帧选中的展品索引
func (p *Proximity) Active() (int, bool) {
	return p.active, p.hasActive
}

// Distance 本帧第 i 个展品到玩家的距离
func (p *Proximity) Distance(i int) float64 {
	if i < 0 || i >= len(p.distances) {
		return 0
	}
	return p.distances[i]
}
