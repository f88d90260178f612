package code

// 统一响应中的业务码
const (
	Success       = 0
	InvalidParams = 400
	Upstream      = 502
	Failed        = 500
)

const (
	MsgSuccess = "Success"
	MsgFailed  = "Failed"
)
