package server

import (
	"fmt"

	"photohall/pkg/protocol"
)

// DecodePacket 解析服务器收到的数据包
func DecodePacket(data []byte) (*ServerEvent, error) {
	pkt, err := protocol.UnmarshalPacket(data)
	if err != nil {
		return nil, fmt.Errorf("解析包失败: %w", err)
	}

	switch pkt.Type {
	case protocol.MessageAssetRequest:
		req, err := protocol.ParseAssetRequest(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind:  EventAsset,
			Asset: &AssetEvent{Seq: req.Seq, Token: req.Token, Key: req.Key},
		}, nil

	case protocol.MessagePing:
		ping, err := protocol.ParsePing(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventPing,
			Ping: &PingEvent{ClientTime: ping.ClientTime},
		}, nil

	default:
		return &ServerEvent{Kind: EventUnknown}, nil
	}
}
