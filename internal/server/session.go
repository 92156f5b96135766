package server

import "photohall/pkg/protocol"

// Session 服务器处理请求时看到的连接
type Session interface {
	ID() uint64
	Viewer() string
	SetViewer(name string)
	Send(pkt *protocol.Packet) error
	Close()
}
