package protocol

import "fmt"

// ========== 辅助构造方法 ==========

// NewAssetRequestPacket 构造图片请求消息包
func NewAssetRequestPacket(seq uint32, token, key string) *Packet {
	req := &AssetRequest{Seq: seq, Token: token, Key: key}
	return &Packet{Type: MessageAssetRequest, Payload: req.Marshal()}
}

// NewAssetResponsePacket 构造图片应答消息包
func NewAssetResponsePacket(resp *AssetResponse) *Packet {
	return &Packet{Type: MessageAssetResponse, Payload: resp.Marshal()}
}

// NewAssetErrorPacket 构造失败应答
func NewAssetErrorPacket(seq uint32, key string, status Status, message string) *Packet {
	return NewAssetResponsePacket(&AssetResponse{Seq: seq, Key: key, Status: status, Message: message})
}

// NewPingPacket 构造心跳消息包
func NewPingPacket(clientTime int64) *Packet {
	ping := &Ping{ClientTime: clientTime}
	return &Packet{Type: MessagePing, Payload: ping.Marshal()}
}

// NewPongPacket 构造心跳应答消息包
func NewPongPacket(clientTime, serverTime int64) *Packet {
	pong := &Pong{ClientTime: clientTime, ServerTime: serverTime}
	return &Packet{Type: MessagePong, Payload: pong.Marshal()}
}

// ========== 编解码 ==========

// MarshalPacket 序列化消息包
func MarshalPacket(pkt *Packet) []byte {
	return pkt.Marshal()
}

// UnmarshalPacket 反序列化消息包
func UnmarshalPacket(data []byte) (*Packet, error) {
	pkt := &Packet{}
	if err := pkt.Unmarshal(data); err != nil {
		return nil, err
	}
	if pkt.Type == MessageUnspecified {
		return nil, fmt.Errorf("%w: 缺少消息类型", ErrMalformed)
	}
	return pkt, nil
}

func expect(pkt *Packet, t MessageType) error {
	if pkt.Type != t {
		return fmt.Errorf("%w: 期望 %s, 实际 %s", ErrMalformed, t, pkt.Type)
	}
	return nil
}

// ParseAssetRequest 解析图片请求
func ParseAssetRequest(pkt *Packet) (*AssetRequest, error) {
	if err := expect(pkt, MessageAssetRequest); err != nil {
		return nil, err
	}
	req := &AssetRequest{}
	if err := req.Unmarshal(pkt.Payload); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseAssetResponse 解析图片应答
func ParseAssetResponse(pkt *Packet) (*AssetResponse, error) {
	if err := expect(pkt, MessageAssetResponse); err != nil {
		return nil, err
	}
	resp := &AssetResponse{}
	if err := resp.Unmarshal(pkt.Payload); err != nil {
		return nil, err
	}
	return resp, nil
}

// ParsePing 解析心跳
func ParsePing(pkt *Packet) (*Ping, error) {
	if err := expect(pkt, MessagePing); err != nil {
		return nil, err
	}
	ping := &Ping{}
	if err := ping.Unmarshal(pkt.Payload); err != nil {
		return nil, err
	}
	return ping, nil
}

// ParsePong 解析心跳应答
func ParsePong(pkt *Packet) (*Pong, error) {
	if err := expect(pkt, MessagePong); err != nil {
		return nil, err
	}
	pong := &Pong{}
	if err := pong.Unmarshal(pkt.Payload); err != nil {
		return nil, err
	}
	return pong, nil
}
