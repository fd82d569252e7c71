package ws

import "time"

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 64 * 1024

	sendBuffer = 256
)

// FrameHandler receives every text message read from a client.
type FrameHandler func(c *Client, raw []byte)
