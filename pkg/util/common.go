package util

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

func GetJson(v interface{}) string {
	marshal, _ := json.Marshal(v)
	return string(marshal)
}

// FirstNonEmpty 返回第一个去掉空白后非空的字符串
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Stringify 将数字/字符串形式的请求参数转为字符串，空值返回 fallback
func Stringify(v interface{}, fallback string) string {
	switch val := v.(type) {
	case nil:
		return fallback
	case string:
		if val == "" {
			return fallback
		}
		return val
	case float64:
		if val == 0 {
			return fallback
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		if val.String() == "" || val.String() == "0" {
			return fallback
		}
		return val.String()
	case bool:
		if !val {
			return fallback
		}
		return strconv.FormatBool(val)
	default:
		return GetJson(val)
	}
}

// AnswerText 阻塞响应中的文本，优先 answer，其次 output
func AnswerText(body []byte) string {
	if answer := gjson.GetBytes(body, "answer").String(); answer != "" {
		return answer
	}
	return gjson.GetBytes(body, "output").String()
}
