package models

// 下发给浏览器的 SSE 事件

// AppendTextEvent 增量文本
type AppendTextEvent struct {
	Text string `json:"text"`
}

// HeartbeatEvent —— 无字段
type HeartbeatEvent struct{}

// ErrorEvent 流中出现的错误
type ErrorEvent struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

// MessageEndEvent 流结束时的完整文本
type MessageEndEvent struct {
	Response string `json:"response"`
}
