package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"photohall/internal/log"
	"photohall/pkg/protocol"
)

const (
	MaxRequestSize = 4096             // 客户端只发小消息
	idleTimeout    = 2 * time.Minute  // 无消息多久后断开
	writeTimeout   = 10 * time.Second // 图片较大，写超时放宽
)

var (
	ErrSendQueueFull = errors.New("发送队列满")
	ErrConnClosed    = errors.New("连接已关闭")
)

// Connection 表示一个客户端连接
type Connection struct {
	id     uint64
	conn   net.Conn
	server *AssetServer
	viewer atomic.Value

	limiter *rate.Limiter

	sendChan chan []byte
	closeCh  chan struct{}
	closed   bool
	closeMu  sync.Mutex

	served atomic.Int64
}

// NewConnection 创建新连接
func NewConnection(id uint64, conn net.Conn, server *AssetServer) *Connection {
	c := &Connection{
		id:       id,
		conn:     conn,
		server:   server,
		limiter:  rate.NewLimiter(server.opts.RequestRate, server.opts.RequestBurst),
		sendChan: make(chan []byte, 64),
		closeCh:  make(chan struct{}),
	}
	c.viewer.Store("")
	return c
}

// Handle 处理连接，直到连接关闭或服务器退出
func (c *Connection) Handle(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	log.Debug("连接处理开始", "conn", c)

	wg.Add(1)
	go c.sendLoop(ctx, wg)

	wg.Add(1)
	go c.receiveLoop(ctx, wg)

	select {
	case <-ctx.Done():
	case <-c.closeCh:
	}

	c.Close()
}

// Close 关闭连接
func (c *Connection) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.closeCh)

	if c.conn != nil {
		c.conn.Close()
	}
	close(c.sendChan)

	c.server.removeConnection(c.id)
	log.Info("连接已关闭", "conn", c, "served", c.served.Load())
}

// Send 发送消息包（异步）
func (c *Connection) Send(pkt *protocol.Packet) error {
	data := pkt.Marshal()

	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return ErrConnClosed
	}

	select {
	case c.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// sendLoop 发送循环
func (c *Connection) sendLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case data, ok := <-c.sendChan:
			if !ok {
				return
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := protocol.WriteFrame(c.conn, data); err != nil {
				log.Warn("发送数据失败", "conn", c, "err", err)
				c.Close()
				return
			}
		}
	}
}

// receiveLoop 接收循环
func (c *Connection) receiveLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer c.Close()

	for {
		if ctx.Err() != nil {
			return
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
		data, err := protocol.ReadFrame(c.conn, MaxRequestSize)
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				log.Info("连接空闲超时", "conn", c)
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
			default:
				log.Warn("读取数据失败", "conn", c, "err", err)
			}
			return
		}

		if len(data) == 0 {
			continue
		}

		if err := c.handleMessage(ctx, data); err != nil {
			log.Warn("处理消息失败", "conn", c, "err", err)
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Connection) handleMessage(ctx context.Context, data []byte) error {
	event, err := DecodePacket(data)
	if err != nil {
		return fmt.Errorf("反序列化失败: %w", err)
	}

	switch event.Kind {
	case EventAsset:
		if !c.limiter.Allow() {
			return c.Send(protocol.NewAssetErrorPacket(event.Asset.Seq, event.Asset.Key, protocol.StatusBusy, "请求过于频繁"))
		}
		pkt := c.server.handleAssetRequest(ctx, c, event.Asset)
		if err := c.Send(pkt); err != nil {
			return err
		}
		c.served.Add(1)

	case EventPing:
		return c.Send(protocol.NewPongPacket(event.Ping.ClientTime, time.Now().UnixMilli()))

	default:
		return fmt.Errorf("未知消息类型")
	}
	return nil
}

func (c *Connection) ID() uint64 { return c.id }

func (c *Connection) Viewer() string {
	v, _ := c.viewer.Load().(string)
	return v
}

func (c *Connection) SetViewer(name string) { c.viewer.Store(name) }

// String 返回连接的字符串表示
func (c *Connection) String() string {
	if v := c.Viewer(); v != "" {
		return fmt.Sprintf("Connection{%d, %s, %s}", c.id, v, c.conn.RemoteAddr())
	}
	return fmt.Sprintf("Connection{%d, %s}", c.id, c.conn.RemoteAddr())
}
