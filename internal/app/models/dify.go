package models

const (
	ResponseModeStreaming = "streaming"
	ResponseModeBlocking  = "blocking"
)

// ChatMessageRequest 上游 /chat-messages 请求体
type ChatMessageRequest struct {
	Inputs       map[string]string `json:"inputs"`
	Query        string            `json:"query"`
	ResponseMode string            `json:"response_mode"`
	User         string            `json:"user"`
}

// BlockingResult 阻塞模式下的原始上游响应
type BlockingResult struct {
	Status int
	Body   []byte
}
