package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrFrameTooLarge 帧长度超过上限
var ErrFrameTooLarge = errors.New("消息过大")

// MaxFrameSize 默认单帧上限，足够容纳一张压缩后的展品图片
const MaxFrameSize = 16 << 20

const frameHeaderSize = 4

// WriteFrame 写出 4 字节大端长度前缀 + 数据
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w (%d bytes)", ErrFrameTooLarge, len(data))
	}
	buf := make([]byte, frameHeaderSize+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[frameHeaderSize:], data)
	_, err := w.Write(buf)
	return err
}

// ReadFrame 读取一帧；max <= 0 时使用 MaxFrameSize
func ReadFrame(r io.Reader, max int) ([]byte, error) {
	if max <= 0 {
		max = MaxFrameSize
	}

	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header[:])
	if uint64(length) > uint64(max) {
		return nil, fmt.Errorf("%w (%d bytes)", ErrFrameTooLarge, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("读取数据失败: %w", err)
	}
	return data, nil
}

// WritePacket 序列化并写出一个消息包
func WritePacket(w io.Writer, pkt *Packet) error {
	return WriteFrame(w, pkt.Marshal())
}

// ReadPacket 读取并解析一个消息包
func ReadPacket(r io.Reader, max int) (*Packet, error) {
	data, err := ReadFrame(r, max)
	if err != nil {
		return nil, err
	}
	return UnmarshalPacket(data)
}
