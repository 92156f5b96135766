package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"photohall/internal/log"
	"photohall/pkg/assets"
	"photohall/pkg/protocol"
)

// Options 资源服务器参数
type Options struct {
	Addr         string
	Proto        string     // tcp 或 kcp
	RequestRate  rate.Limit // 每个连接每秒的请求数
	RequestBurst int
	AllowAnon    bool // 不校验令牌

	KCPWindow       int  // kcp 收发窗口（包），<= 0 使用默认值
	Batching        bool // 关闭 tcp/kcp 的 nodelay，换取吞吐
	MaxResponseSize int  // 单个应答包的上限，<= 0 或超过帧上限时取帧上限
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		Addr:         ":8090",
		Proto:        "tcp",
		RequestRate:  20,
		RequestBurst: 10,
		KCPWindow:    defaultKCPWindow,
	}
}

// AssetServer 展品图片服务器
type AssetServer struct {
	opts   Options
	source assets.Source
	signer *Signer

	listener net.Listener

	mu     sync.Mutex
	conns  map[uint64]*Connection
	nextID atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewAssetServer 创建服务器
func NewAssetServer(opts Options, source assets.Source, signer *Signer) *AssetServer {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.RequestBurst <= 0 {
		opts.RequestBurst = 1
	}
	if opts.MaxResponseSize <= 0 || opts.MaxResponseSize > protocol.MaxFrameSize {
		opts.MaxResponseSize = protocol.MaxFrameSize
	}
	return &AssetServer{
		opts:   opts,
		source: source,
		signer: signer,
		conns:  make(map[uint64]*Connection),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 开始监听并在后台接受连接
func (s *AssetServer) Start() error {
	log.Info("启动资源服务器", "addr", s.opts.Addr, "proto", s.opts.Proto)

	listener, err := listen(s.opts)
	if err != nil {
		return fmt.Errorf("监听失败: %w", err)
	}
	s.listener = listener

	log.Info("服务器监听中", "addr", listener.Addr())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr 实际监听地址
func (s *AssetServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Connections 当前连接数
func (s *AssetServer) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Shutdown 优雅关闭服务器
func (s *AssetServer) Shutdown() {
	s.once.Do(func() {
		log.Info("正在关闭服务器...")
		s.cancel()

		if s.listener != nil {
			s.listener.Close()
		}

		s.mu.Lock()
		conns := make([]*Connection, 0, len(s.conns))
		for _, c := range s.conns {
			conns = append(conns, c)
		}
		s.mu.Unlock()
		for _, c := range conns {
			c.Close()
		}

		s.wg.Wait()
		log.Info("服务器已关闭")
	})
}

// acceptLoop 接受客户端连接
func (s *AssetServer) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("接受连接失败", "err", err)
			continue
		}

		id := s.nextID.Add(1)
		c := NewConnection(id, conn, s)

		s.mu.Lock()
		if s.ctx.Err() != nil {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[id] = c
		s.mu.Unlock()

		log.Info("新连接", "id", id, "remote", conn.RemoteAddr())

		s.wg.Add(1)
		go c.Handle(s.ctx, &s.wg)
	}
}

func (s *AssetServer) removeConnection(id uint64) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// handleAssetRequest 校验令牌并读取图片，返回应答包
func (s *AssetServer) handleAssetRequest(ctx context.Context, sess Session, req *AssetEvent) *protocol.Packet {
	if !s.opts.AllowAnon {
		viewer, err := s.signer.VerifyAccessToken(req.Token)
		if err != nil {
			log.Warn("拒绝请求", "conn", sess.ID(), "key", req.Key, "err", err)
			return protocol.NewAssetErrorPacket(req.Seq, req.Key, protocol.StatusDenied, "令牌无效")
		}
		if sess.Viewer() != viewer {
			sess.SetViewer(viewer)
		}
	}

	data, err := s.source.Fetch(ctx, req.Key)
	switch {
	case errors.Is(err, assets.ErrNotFound):
		log.Debug("图片不存在", "key", req.Key)
		return protocol.NewAssetErrorPacket(req.Seq, req.Key, protocol.StatusNotFound, "")
	case errors.Is(err, assets.ErrDenied):
		log.Warn("非法路径", "conn", sess.ID(), "key", req.Key)
		return protocol.NewAssetErrorPacket(req.Seq, req.Key, protocol.StatusDenied, "非法路径")
	case err != nil:
		log.Error("读取图片失败", "key", req.Key, "err", err)
		return protocol.NewAssetErrorPacket(req.Seq, req.Key, protocol.StatusError, "读取失败")
	}

	pkt := protocol.NewAssetResponsePacket(&protocol.AssetResponse{
		Seq:  req.Seq,
		Key:  req.Key,
		Data: data,
	})
	// 按整包大小判断，键名与信封同样计入帧长
	if size := pkt.Size(); size > s.opts.MaxResponseSize {
		log.Warn("图片过大", "key", req.Key, "bytes", len(data), "packet", size)
		return protocol.NewAssetErrorPacket(req.Seq, req.Key, protocol.StatusError, "图片过大")
	}

	log.Debug("已发送图片", "conn", sess.ID(), "viewer", sess.Viewer(), "key", req.Key, "bytes", len(data))
	return pkt
}
