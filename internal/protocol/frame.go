package protocol

import "encoding/json"

type FrameType string

const (
	FrameCall   FrameType = "call"
	FrameResult FrameType = "result"
	FrameListen FrameType = "listen"
	FrameCancel FrameType = "cancel"
	FrameEvent  FrameType = "event"
)

// Frame is one JSON message on the channel websocket.
type Frame struct {
	Type   FrameType `json:"type"`
	ID     uint64    `json:"id,omitempty"`
	Method string    `json:"method,omitempty"`
	Args   Args      `json:"args,omitempty"`
	Result *string   `json:"result,omitempty"`
	Data   string    `json:"data,omitempty"`
	Error  *Error    `json:"error,omitempty"`
}

func (f Frame) Call() Call {
	return Call{Method: f.Method, Args: f.Args}
}

// resultFrame always carries the id so call 0 can be matched.
type resultFrame struct {
	Type   FrameType `json:"type"`
	ID     uint64    `json:"id"`
	Result *string   `json:"result,omitempty"`
	Error  *Error    `json:"error,omitempty"`
}

func ResultFrame(id uint64, value string) []byte {
	return encode(resultFrame{Type: FrameResult, ID: id, Result: &value})
}

func ErrorFrame(id uint64, e *Error) []byte {
	return encode(resultFrame{Type: FrameResult, ID: id, Error: e})
}

func EventFrame(data string) []byte {
	return encode(Frame{Type: FrameEvent, Data: data})
}

func EventErrorFrame(e *Error) []byte {
	return encode(Frame{Type: FrameEvent, Error: e})
}

func DecodeFrame(raw []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(raw, &f)
	return f, err
}

func encode(f any) []byte {
	// Frames hold strings, numbers and nil details only.
	data, _ := json.Marshal(f)
	return data
}
