package server

type EventKind int

const (
	EventUnknown EventKind = iota
	EventAsset
	EventPing
)

type AssetEvent struct {
	Seq   uint32
	Token string
	Key   string
}

type PingEvent struct {
	ClientTime int64
}

type ServerEvent struct {
	Kind  EventKind
	Asset *AssetEvent
	Ping  *PingEvent
}
