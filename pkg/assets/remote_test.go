package assets

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"photohall/pkg/protocol"
)

// serveFake 在管道另一端模拟资源服务器
func serveFake(t *testing.T, conn net.Conn, files map[string][]byte) {
	t.Helper()
	go func() {
		defer conn.Close()
		for {
			pkt, err := protocol.ReadPacket(conn, 0)
			if err != nil {
				return
			}
			var reply *protocol.Packet
			switch pkt.Type {
			case protocol.MessagePing:
				ping, _ := protocol.ParsePing(pkt)
				reply = protocol.NewPongPacket(ping.ClientTime, time.Now().UnixMilli())
			case protocol.MessageAssetRequest:
				req, _ := protocol.ParseAssetRequest(pkt)
				switch data, ok := files[req.Key]; {
				case req.Token != "secret":
					reply = protocol.NewAssetErrorPacket(req.Seq, req.Key, protocol.StatusDenied, "bad token")
				case !ok:
					reply = protocol.NewAssetErrorPacket(req.Seq, req.Key, protocol.StatusNotFound, "")
				default:
					reply = protocol.NewAssetResponsePacket(&protocol.AssetResponse{Seq: req.Seq, Key: req.Key, Data: data})
				}
			}
			if err := protocol.WritePacket(conn, reply); err != nil {
				return
			}
		}
	}()
}

func TestRemoteSourceFetch(t *testing.T) {
	client, server := net.Pipe()
	serveFake(t, server, map[string][]byte{"p1.jpg": []byte("jpeg-bytes")})

	r := NewRemoteSource(client, "secret")
	defer r.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := r.Fetch(ctx, "p1.jpg")
	if err != nil || string(data) != "jpeg-bytes" {
		t.Fatalf("Fetch = %q, %v", data, err)
	}
	if _, err := r.Fetch(ctx, "nope.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
	if _, err := r.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestRemoteSourceDenied(t *testing.T) {
	client, server := net.Pipe()
	serveFake(t, server, map[string][]byte{"p1.jpg": []byte("x")})

	r := NewRemoteSource(client, "wrong")
	defer r.Close()
	if _, err := r.Fetch(context.Background(), "p1.jpg"); !errors.Is(err, ErrDenied) {
		t.Errorf("err = %v, want ErrDenied", err)
	}
}

func TestRemoteSourceDisconnect(t *testing.T) {
	client, server := net.Pipe()
	r := NewRemoteSource(client, "secret")
	defer r.Close()

	errc := make(chan error, 1)
	go func() {
		_, err := r.Fetch(context.Background(), "p1.jpg")
		errc <- err
	}()

	// 读走请求后断开
	if _, err := protocol.ReadPacket(server, 0); err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	server.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("err = %v, want ErrClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Fetch did not return after disconnect")
	}

	if _, err := r.Fetch(context.Background(), "p2.jpg"); !errors.Is(err, ErrClosed) {
		t.Errorf("fetch after disconnect err = %v, want ErrClosed", err)
	}
}
