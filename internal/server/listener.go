package server

import (
	"fmt"
	"net"

	kcp "github.com/xtaci/kcp-go/v5"
)

const defaultKCPWindow = 256

// tunedListener 在 Accept 之后按协议调整连接参数
type tunedListener struct {
	net.Listener
	tune func(net.Conn)
}

func (l tunedListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	l.tune(conn)
	return conn, nil
}

// listen 按 opts.Proto 监听 opts.Addr
func listen(opts Options) (net.Listener, error) {
	switch opts.Proto {
	case "", "tcp":
		ln, err := net.Listen("tcp", opts.Addr)
		if err != nil {
			return nil, err
		}
		return tunedListener{Listener: ln, tune: tcpTuner(opts)}, nil
	case "kcp":
		ln, err := kcp.ListenWithOptions(opts.Addr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		return tunedListener{Listener: ln, tune: kcpTuner(opts)}, nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", opts.Proto)
	}
}

func tcpTuner(opts Options) func(net.Conn) {
	return func(conn net.Conn) {
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(!opts.Batching)
		}
	}
}

// kcpTuner 图片应答较大，统一使用流模式；窗口与 nodelay 取自配置
func kcpTuner(opts Options) func(net.Conn) {
	window := opts.KCPWindow
	if window <= 0 {
		window = defaultKCPWindow
	}
	return func(conn net.Conn) {
		sess, ok := conn.(*kcp.UDPSession)
		if !ok {
			return
		}
		sess.SetStreamMode(true)
		if opts.Batching {
			sess.SetNoDelay(0, 40, 0, 0)
		} else {
			sess.SetNoDelay(1, 20, 2, 1)
		}
		sess.SetWindowSize(window, window)
	}
}
