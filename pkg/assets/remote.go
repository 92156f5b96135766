package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	kcp "github.com/xtaci/kcp-go/v5"

	"photohall/internal/log"
	"photohall/pkg/protocol"
)

const dialTimeout = 5 * time.Second

// Dial 按协议建立连接，支持 tcp 与 kcp
func Dial(addr, proto string) (net.Conn, error) {
	switch proto {
	case "", "tcp":
		return net.DialTimeout("tcp", addr, dialTimeout)
	case "kcp":
		conn, err := kcp.DialWithOptions(addr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		conn.SetStreamMode(true)
		conn.SetNoDelay(1, 20, 2, 1)
		return conn, nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", proto)
	}
}

type result struct {
	resp *protocol.AssetResponse
	err  error
}

// RemoteSource 通过资源服务器获取图片，单连接上多路复用请求
type RemoteSource struct {
	conn  net.Conn
	token string

	writeMu sync.Mutex

	mu      sync.Mutex
	seq     uint32
	waiting map[uint32]chan result
	pongs   map[int64]chan protocol.Pong
	err     error // 连接断开的原因

	done chan struct{}
	wg   sync.WaitGroup
}

// DialRemote 连接资源服务器
func DialRemote(addr, proto, token string) (*RemoteSource, error) {
	log.Info("连接资源服务器", "addr", addr, "proto", proto)
	conn, err := Dial(addr, proto)
	if err != nil {
		return nil, fmt.Errorf("连接服务器失败: %w", err)
	}
	return NewRemoteSource(conn, token), nil
}

// NewRemoteSource 在已有连接上创建远程源并启动接收循环
func NewRemoteSource(conn net.Conn, token string) *RemoteSource {
	r := &RemoteSource{
		conn:    conn,
		token:   token,
		waiting: make(map[uint32]chan result),
		pongs:   make(map[int64]chan protocol.Pong),
		done:    make(chan struct{}),
	}
	r.wg.Add(1)
	go r.receiveLoop()
	return r
}

// Fetch 请求一张图片并等待应答
func (r *RemoteSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	ch := make(chan result, 1)

	r.mu.Lock()
	if r.err != nil {
		err := r.err
		r.mu.Unlock()
		return nil, err
	}
	r.seq++
	seq := r.seq
	r.waiting[seq] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.waiting, seq)
		r.mu.Unlock()
	}()

	if err := r.send(protocol.NewAssetRequestPacket(seq, r.token, key)); err != nil {
		return nil, err
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		if err := statusError(res.resp); err != nil {
			return nil, err
		}
		return res.resp.Data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ping 测量往返时间
func (r *RemoteSource) Ping(ctx context.Context) (time.Duration, error) {
	now := time.Now()
	stamp := now.UnixNano()
	ch := make(chan protocol.Pong, 1)

	r.mu.Lock()
	if r.err != nil {
		err := r.err
		r.mu.Unlock()
		return 0, err
	}
	r.pongs[stamp] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pongs, stamp)
		r.mu.Unlock()
	}()

	if err := r.send(protocol.NewPingPacket(stamp)); err != nil {
		return 0, err
	}

	select {
	case <-ch:
		return time.Since(now), nil
	case <-r.done:
		return 0, r.closedErr()
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (r *RemoteSource) send(pkt *protocol.Packet) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if err := protocol.WritePacket(r.conn, pkt); err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	return nil
}

func (r *RemoteSource) closedErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	return ErrClosed
}

// receiveLoop 接收循环
func (r *RemoteSource) receiveLoop() {
	defer r.wg.Done()
	defer close(r.done)

	for {
		pkt, err := protocol.ReadPacket(r.conn, 0)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				err = ErrClosed
			} else {
				log.Warn("读取应答失败", "err", err)
			}
			r.fail(err)
			return
		}

		switch pkt.Type {
		case protocol.MessageAssetResponse:
			resp, err := protocol.ParseAssetResponse(pkt)
			if err != nil {
				log.Warn("处理消息失败", "err", err)
				continue
			}
			r.mu.Lock()
			ch, ok := r.waiting[resp.Seq]
			r.mu.Unlock()
			if ok {
				select {
				case ch <- result{resp: resp}:
				default:
				}
			}

		case protocol.MessagePong:
			pong, err := protocol.ParsePong(pkt)
			if err != nil {
				continue
			}
			r.mu.Lock()
			ch, ok := r.pongs[pong.ClientTime]
			r.mu.Unlock()
			if ok {
				select {
				case ch <- *pong:
				default:
				}
			}

		default:
			log.Debug("忽略未知消息", "type", pkt.Type)
		}
	}
}

// fail 连接断开时唤醒所有等待者
func (r *RemoteSource) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		r.err = err
	}
	for seq, ch := range r.waiting {
		select {
		case ch <- result{err: r.err}:
		default:
		}
		delete(r.waiting, seq)
	}
}

// Close 关闭连接并等待接收循环退出
func (r *RemoteSource) Close() error {
	err := r.conn.Close()
	r.wg.Wait()
	return err
}

func statusError(resp *protocol.AssetResponse) error {
	switch resp.Status {
	case protocol.StatusOK:
		return nil
	case protocol.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Key)
	case protocol.StatusDenied:
		return fmt.Errorf("%w: %s", ErrDenied, resp.Message)
	default:
		return fmt.Errorf("服务器错误 (%s): %s", resp.Status, resp.Message)
	}
}
