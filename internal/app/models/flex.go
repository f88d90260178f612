package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Text 生成内容中的标量字段，接受字符串、数字、布尔或 null
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		// 结构不符时忽略该字段，而不是让整个文档解析失败
		*t = ""
		return nil
	}
	*t = Text(data)
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Float 尝试按数字解析
func (t Text) Float() (float64, bool) {
	f, err := strconv.ParseFloat(string(t), 64)
	return f, err == nil
}

// TextList 接受数组或单个标量
type TextList []Text

func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []Text
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var single Text
	if err := single.UnmarshalJSON(data); err != nil {
		return err
	}
	if single == "" {
		*l = nil
		return nil
	}
	*l = TextList{single}
	return nil
}

func (l TextList) Strings() []string {
	out := make([]string, 0, len(l))
	for _, item := range l {
		if item != "" {
			out = append(out, string(item))
		}
	}
	return out
}

// Bool 尝试按布尔解析，第二个返回值表示字段是否存在且可识别
func (t Text) Bool() (bool, bool) {
	b, err := strconv.ParseBool(string(t))
	return b, err == nil
}

// Reasons 技能校验理由，接受 {"pros": [...], "cons": [...]} 或普通数组（视为 pros）
type Reasons struct {
	Pros TextList `json:"pros"`
	Cons TextList `json:"cons"`
}

func (r *Reasons) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain Reasons
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*r = Reasons(p)
		return nil
	}
	var list TextList
	if err := list.UnmarshalJSON(data); err != nil {
		return err
	}
	*r = Reasons{Pros: list}
	return nil
}
