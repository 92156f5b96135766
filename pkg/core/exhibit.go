package core

import (
	"image"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// LoadState 展品图片的加载状态，只能前进
type LoadState int

const (
	LoadNotRequested LoadState = iota // 未请求
	LoadLoading                       // 加载中
	LoadReady                         // 已就绪
	LoadFailed                        // 加载失败（本次会话不再重试）
)

// String 返回加载状态的字符串表示
func (s LoadState) String() string {
	switch s {
	case LoadNotRequested:
		return "NotRequested"
	case LoadLoading:
		return "Loading"
	case LoadReady:
		return "Ready"
	case LoadFailed:
		return "Failed"
	}
	return "Unknown"
}

// WallSide 展品所在的墙
type WallSide int

const (
	SideLeft  WallSide = iota // 左墙（-X）
	SideRight                 // 右墙（+X）
)

func (s WallSide) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Exhibit 墙上的一幅展品
// 视觉字段由 tick 循环独占；加载字段由 Registry.mu 保护
type Exhibit struct {
	Index    int
	Side     WallSide
	Slot     int        // 同侧墙上的序号
	Position mgl64.Vec3 // 画框中心
	Yaw      float64    // 画面朝向（面向大厅内侧）
	ImageKey string

	CurrentScale    float64
	TargetScale     float64
	CurrentEmphasis float64
	TargetEmphasis  float64

	loadState LoadState
	image     image.Image
}

// Registry 固定数量的展品集合
type Registry struct {
	mu       sync.Mutex
	exhibits []Exhibit
	byKey    map[string][]int
}

// NewRegistry 按布局规则生成展品：左右墙交替，沿大厅等距排列
func NewRegistry(cfg Config) *Registry {
	e := cfg.Exhibits
	r := &Registry{
		exhibits: make([]Exhibit, 0, e.CountPerSide*2),
		byKey:    make(map[string][]int),
	}

	wallX := cfg.Hall.Width*0.5 - e.WallInset
	for i := 0; i < e.CountPerSide; i++ {
		z := e.ZStart + float64(i)*e.ZStep
		r.add(SideLeft, i, mgl64.Vec3{-wallX, e.Height, z}, math.Pi/2, imageAt(e.Images, i), e.BaseEmphasis)
		r.add(SideRight, i, mgl64.Vec3{wallX, e.Height, z}, -math.Pi/2, imageAt(e.Images, i+e.CountPerSide), e.BaseEmphasis)
	}
	return r
}

func (r *Registry) add(side WallSide, slot int, pos mgl64.Vec3, yaw float64, key string, emphasis float64) {
	idx := len(r.exhibits)
	r.exhibits = append(r.exhibits, Exhibit{
		Index:           idx,
		Side:            side,
		Slot:            slot,
		Position:        pos,
		Yaw:             yaw,
		ImageKey:        key,
		CurrentScale:    1,
		TargetScale:     1,
		CurrentEmphasis: emphasis,
		TargetEmphasis:  emphasis,
	})
	if key != "" {
		r.byKey[key] = append(r.byKey[key], idx)
	}
}

func imageAt(images []string, i int) string {
	if i < 0 || i >= len(images) {
		return ""
	}
	return images[i]
}

// Len 展品数量
func (r *Registry) Len() int {
	return len(r.exhibits)
}

// At 返回第 i 个展品；越界返回 nil
func (r *Registry) At(i int) *Exhibit {
	if i < 0 || i >= len(r.exhibits) {
		return nil
	}
	return &r.exhibits[i]
}

// LoadState 返回第 i 个展品的加载状态
func (r *Registry) LoadState(i int) LoadState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.exhibits) {
		return LoadNotRequested
	}
	return r.exhibits[i].loadState
}

// Image 返回已就绪的图片，否则为 nil
func (r *Registry) Image(i int) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.exhibits) {
		return nil
	}
	return r.exhibits[i].image
}

// loadSnapshot 一次加锁读出状态和图片
func (r *Registry) loadSnapshot(i int) (LoadState, image.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ex := &r.exhibits[i]
	return ex.loadState, ex.image
}

// markRequested 把同一图片键下所有未请求的展品置为加载中
// 返回 false 表示已经请求过，调用方不应再发起加载
func (r *Registry) markRequested(i int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ex := &r.exhibits[i]
	if ex.loadState != LoadNotRequested || ex.ImageKey == "" {
		return false
	}
	for _, idx := range r.byKey[ex.ImageKey] {
		if r.exhibits[idx].loadState == LoadNotRequested {
			r.exhibits[idx].loadState = LoadLoading
		}
	}
	return true
}

// Complete 加载完成回调，可在任意 goroutine、任意时刻调用
// 只把"加载中"推进到"就绪/失败"；重复的结果会被忽略
func (r *Registry) Complete(key string, img image.Image, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, idx := range r.byKey[key] {
		ex := &r.exhibits[idx]
		if ex.loadState != LoadLoading {
			continue
		}
		if err != nil || img == nil {
			ex.loadState = LoadFailed
			continue
		}
		ex.loadState = LoadReady
		ex.image = img
	}
}
