package sse

import (
	"encoding/json"
	"errors"
)

// DefaultFields 默认按优先级收集的文本字段
var DefaultFields = []string{"answer", "text", "message"}

var errNotObject = errors.New("sse event payload is not a JSON object")

// Event 单个 data: 行解码后的事件，所有字段均为可选
type Event struct {
	Raw map[string]json.RawMessage
}

// ParseEvent 解析 data: 后的 JSON 负载
func ParseEvent(payload []byte) (*Event, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errNotObject
	}
	return &Event{Raw: raw}, nil
}

// Field 读取字符串字段，缺失、为 null、非字符串或为空时返回 false
func (e *Event) Field(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	value, ok := e.Raw[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// Name 上游事件类型，例如 message / message_end / error
func (e *Event) Name() string {
	name, _ := e.Field("event")
	return name
}

// ConversationID 上游会话 ID
func (e *Event) ConversationID() string {
	id, _ := e.Field("conversation_id")
	return id
}
