package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"photohall/internal/log"
)

// Completer 接收加载结果，core.Registry 实现了该接口
type Completer interface {
	Complete(key string, img image.Image, err error)
}

// LoaderOptions 加载器参数
type LoaderOptions struct {
	Concurrency    int     // 同时进行的加载数
	RatePerSecond  float64 // 每秒发起的加载数，<= 0 不限速
	Burst          int
	MaxTextureSize int
}

// DefaultLoaderOptions 默认参数
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		Concurrency:    4,
		RatePerSecond:  8,
		Burst:          4,
		MaxTextureSize: DefaultMaxTextureSize,
	}
}

// Loader 懒加载服务：每个图片键只加载一次，结果回调给 Completer
type Loader struct {
	src     Source
	opts    LoaderOptions
	sem     *semaphore.Weighted
	limiter *rate.Limiter

	mu      sync.Mutex
	sink    Completer
	seen    map[string]struct{}
	closed  bool
	pending sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	requests atomic.Int64
	loaded   atomic.Int64
	failed   atomic.Int64
}

// NewLoader 创建加载器；调用 Bind 之前完成的结果会被丢弃
func NewLoader(src Source, opts LoaderOptions) *Loader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		src:     src,
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
		limiter: rate.NewLimiter(limit, opts.Burst),
		seen:    make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Bind 设置结果接收方
func (l *Loader) Bind(sink Completer) {
	l.mu.Lock()
	l.sink = sink
	l.mu.Unlock()
}

// Request 发起加载，立即返回；同一个键只会加载一次
func (l *Loader) Request(key string) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if _, ok := l.seen[key]; ok {
		l.mu.Unlock()
		return
	}
	l.seen[key] = struct{}{}
	l.pending.Add(1)
	l.mu.Unlock()

	l.requests.Add(1)
	log.Debug("请求图片", "key", key)
	go l.load(key)
}

func (l *Loader) load(key string) {
	defer l.pending.Done()

	start := time.Now()
	img, err := l.fetch(key)
	if err != nil {
		l.failed.Add(1)
		log.Warn("图片加载失败", "key", key, "err", err)
	} else {
		l.loaded.Add(1)
		b := img.Bounds()
		log.Debug("图片已就绪", "key", key, "w", b.Dx(), "h", b.Dy(), "elapsed", time.Since(start))
	}

	l.mu.Lock()
	sink := l.sink
	l.mu.Unlock()
	if sink == nil {
		log.Warn("加载结果无人接收", "key", key)
		return
	}
	sink.Complete(key, img, err)
}

func (l *Loader) fetch(key string) (image.Image, error) {
	if err := l.sem.Acquire(l.ctx, 1); err != nil {
		return nil, ErrClosed
	}
	defer l.sem.Release(1)

	if err := l.limiter.Wait(l.ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ErrClosed
		}
		return nil, err
	}

	data, err := l.src.Fetch(l.ctx, key)
	if err != nil {
		if l.ctx.Err() != nil {
			return nil, ErrClosed
		}
		return nil, err
	}

	img, _, err := Decode(data, l.opts.MaxTextureSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return img, nil
}

// Requests 已发起的加载数（去重后）
func (l *Loader) Requests() int64 { return l.requests.Load() }

// Stats 成功与失败的数量
func (l *Loader) Stats() (loaded, failed int64) {
	return l.loaded.Load(), l.failed.Load()
}

// Wait 等待所有已发起的加载结束
func (l *Loader) Wait() {
	l.pending.Wait()
}

// Close 取消进行中的加载并等待其退出；被取消的键以 ErrClosed 回调
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.pending.Wait()
}
