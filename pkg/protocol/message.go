package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed 消息无法解析
var ErrMalformed = errors.New("消息格式错误")

// MessageType 消息类型
type MessageType int32

const (
	MessageUnspecified   MessageType = 0
	MessageAssetRequest  MessageType = 1
	MessageAssetResponse MessageType = 2
	MessagePing          MessageType = 3
	MessagePong          MessageType = 4
)

func (t MessageType) String() string {
	switch t {
	case MessageAssetRequest:
		return "AssetRequest"
	case MessageAssetResponse:
		return "AssetResponse"
	case MessagePing:
		return "Ping"
	case MessagePong:
		return "Pong"
	}
	return fmt.Sprintf("MessageType(%d)", int32(t))
}

// Status 资源请求结果
type Status int32

const (
	StatusOK       Status = 0
	StatusNotFound Status = 1
	StatusDenied   Status = 2
	StatusError    Status = 3
	StatusBusy     Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusDenied:
		return "denied"
	case StatusError:
		return "error"
	case StatusBusy:
		return "busy"
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// Packet 外层信封
//
//	message Packet { MessageType type = 1; bytes payload = 2; }
type Packet struct {
	Type    MessageType
	Payload []byte
}

// AssetRequest 请求一张展品图片
//
//	message AssetRequest { uint32 seq = 1; string token = 2; string key = 3; }
type AssetRequest struct {
	Seq   uint32
	Token string
	Key   string
}

// AssetResponse 图片数据或错误
//
//	message AssetResponse { uint32 seq = 1; string key = 2; Status status = 3; bytes data = 4; string message = 5; }
type AssetResponse struct {
	Seq     uint32
	Key     string
	Status  Status
	Data    []byte
	Message string
}

// Ping 心跳
//
//	message Ping { int64 client_time = 1; }
//	message Pong { int64 client_time = 1; int64 server_time = 2; }
type Ping struct {
	ClientTime int64
}

// Pong 心跳应答
type Pong struct {
	ClientTime int64
	ServerTime int64
}

// ========== 编码 ==========

func (p *Packet) Marshal() []byte {
	b := make([]byte, 0, len(p.Payload)+16)
	b = appendVarintField(b, 1, uint64(p.Type))
	b = appendBytesField(b, 2, p.Payload)
	return b
}

func (m *AssetRequest) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.Seq))
	b = appendStringField(b, 2, m.Token)
	b = appendStringField(b, 3, m.Key)
	return b
}

func (m *AssetResponse) Marshal() []byte {
	b := make([]byte, 0, len(m.Data)+len(m.Key)+len(m.Message)+24)
	b = appendVarintField(b, 1, uint64(m.Seq))
	b = appendStringField(b, 2, m.Key)
	b = appendVarintField(b, 3, uint64(m.Status))
	b = appendBytesField(b, 4, m.Data)
	b = appendStringField(b, 5, m.Message)
	return b
}

func (m *Ping) Marshal() []byte {
	return appendVarintField(nil, 1, uint64(m.ClientTime))
}

func (m *Pong) Marshal() []byte {
	b := appendVarintField(nil, 1, uint64(m.ClientTime))
	return appendVarintField(b, 2, uint64(m.ServerTime))
}

// Size 序列化后的字节数，与 Marshal 一致但不分配内存
func (p *Packet) Size() int {
	n := 0
	if p.Type != 0 {
		n += protowire.SizeTag(1) + protowire.SizeVarint(uint64(p.Type))
	}
	if len(p.Payload) > 0 {
		n += protowire.SizeTag(2) + protowire.SizeBytes(len(p.Payload))
	}
	return n
}

// 零值字段不写出，与 proto3 一致
func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// ========== 解码 ==========

// Unmarshal 解析 Packet；Payload 引用 data 的内存
func (p *Packet) Unmarshal(data []byte) error {
	*p = Packet{}
	return walkFields(data, func(num protowire.Number, d *fieldDecoder) {
		switch num {
		case 1:
			p.Type = MessageType(d.varint())
		case 2:
			p.Payload = d.bytes()
		default:
			d.skip()
		}
	})
}

func (m *AssetRequest) Unmarshal(data []byte) error {
	*m = AssetRequest{}
	return walkFields(data, func(num protowire.Number, d *fieldDecoder) {
		switch num {
		case 1:
			m.Seq = uint32(d.varint())
		case 2:
			m.Token = d.string()
		case 3:
			m.Key = d.string()
		default:
			d.skip()
		}
	})
}

func (m *AssetResponse) Unmarshal(data []byte) error {
	*m = AssetResponse{}
	return walkFields(data, func(num protowire.Number, d *fieldDecoder) {
		switch num {
		case 1:
			m.Seq = uint32(d.varint())
		case 2:
			m.Key = d.string()
		case 3:
			m.Status = Status(d.varint())
		case 4:
			m.Data = d.bytes()
		case 5:
			m.Message = d.string()
		default:
			d.skip()
		}
	})
}

func (m *Ping) Unmarshal(data []byte) error {
	*m = Ping{}
	return walkFields(data, func(num protowire.Number, d *fieldDecoder) {
		if num == 1 {
			m.ClientTime = int64(d.varint())
			return
		}
		d.skip()
	})
}

func (m *Pong) Unmarshal(data []byte) error {
	*m = Pong{}
	return walkFields(data, func(num protowire.Number, d *fieldDecoder) {
		switch num {
		case 1:
			m.ClientTime = int64(d.varint())
		case 2:
			m.ServerTime = int64(d.varint())
		default:
			d.skip()
		}
	})
}

// fieldDecoder 逐字段读取；类型不匹配或截断时记录错误
type fieldDecoder struct {
	num protowire.Number
	typ protowire.Type
	buf []byte
	n   int
	err error
}

func (d *fieldDecoder) fail(n int) {
	if n < 0 {
		d.err = fmt.Errorf("%w: 字段 %d: %v", ErrMalformed, d.num, protowire.ParseError(n))
		return
	}
	d.err = fmt.Errorf("%w: 字段 %d 类型 %d 不匹配", ErrMalformed, d.num, d.typ)
}

func (d *fieldDecoder) varint() uint64 {
	if d.typ != protowire.VarintType {
		d.fail(0)
		return 0
	}
	v, n := protowire.ConsumeVarint(d.buf)
	if n < 0 {
		d.fail(n)
		return 0
	}
	d.n = n
	return v
}

func (d *fieldDecoder) bytes() []byte {
	if d.typ != protowire.BytesType {
		d.fail(0)
		return nil
	}
	v, n := protowire.ConsumeBytes(d.buf)
	if n < 0 {
		d.fail(n)
		return nil
	}
	d.n = n
	return v
}

func (d *fieldDecoder) string() string {
	return string(d.bytes())
}

func (d *fieldDecoder) skip() {
	n := protowire.ConsumeFieldValue(d.num, d.typ, d.buf)
	if n < 0 {
		d.fail(n)
		return
	}
	d.n = n
}

func walkFields(data []byte, visit func(num protowire.Number, d *fieldDecoder)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		d := fieldDecoder{num: num, typ: typ, buf: data[n:]}
		visit(num, &d)
		if d.err != nil {
			return d.err
		}
		data = d.buf[d.n:]
	}
	return nil
}
