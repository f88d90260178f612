// Package extract recovers JSON documents from generated text that may be
// wrapped in prose or code fences, carry trailing commas or be truncated.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Document 成功解析出的 JSON 值（对象或数组）
type Document struct {
	Value    any
	Strategy string
}

// Strategy 一种解析尝试，失败时返回 false，不允许 panic
type Strategy interface {
	Name() string
	Extract(text, requiredKey string) (any, bool)
}

// Extractor 依次尝试各个策略，第一个成功的结果胜出
type Extractor struct {
	strategies []Strategy
}

// New 使用给定策略创建 Extractor
func New(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Default 围栏代码块 -> 含关键字段的对象片段（修复）-> 原文
func Default() *Extractor {
	return New(FencedBlock{}, KeyedSpan{}, Verbatim{})
}

var defaultExtractor = Default()

// Extract 使用默认策略解析
func Extract(text, requiredKey string) (Document, bool) {
	return defaultExtractor.Extract(text, requiredKey)
}

// Extract 返回解析出的文档；全部策略失败时返回 false
func (e *Extractor) Extract(text, requiredKey string) (doc Document, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("extract strategy panicked")
			doc, ok = Document{}, false
		}
	}()

	for _, s := range e.strategies {
		if value, ok := s.Extract(text, requiredKey); ok {
			return Document{Value: value, Strategy: s.Name()}, true
		}
	}
	log.WithField("length", len(text)).Debug("extraction failed, falling back to text")
	return Document{}, false
}

// DecodeInto 将文档转换为结构体，结构体字段应全部可选
func (d Document) DecodeInto(target any) error {
	raw, err := json.Marshal(d.Value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

// Has 顶层对象是否包含 key
func (d Document) Has(key string) bool {
	m, ok := d.Value.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m[key]
	return ok
}

func parse(text string) (any, bool) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, false
	}
	return value, true
}

var fencedObject = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// FencedBlock 查找 ``` 或 ```json 代码块中的 {...}
type FencedBlock struct{}

func (FencedBlock) Name() string { return "fenced" }

func (FencedBlock) Extract(text, _ string) (any, bool) {
	match := fencedObject.FindStringSubmatch(text)
	if match == nil {
		return nil, false
	}
	return parse(match[1])
}

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// KeyedSpan 从包含 "requiredKey" 的第一个 { 开始截取对象，片段本身不是合法 JSON 时
// 才去掉尾逗号并补齐缺失的 }。requiredKey 为空时从第一个 { 开始。
type KeyedSpan struct{}

func (KeyedSpan) Name() string { return "keyed_span" }

func (KeyedSpan) Extract(text, requiredKey string) (any, bool) {
	span, ok := keyedSpan(text, requiredKey)
	if !ok {
		return nil, false
	}
	if v, ok := parse(span); ok {
		return v, true
	}
	return parse(Repair(span))
}

// keyedSpan 找到第一个其片段包含 "requiredKey" 的 {
func keyedSpan(text, requiredKey string) (string, bool) {
	quoted := `"` + requiredKey + `"`
	if requiredKey != "" && !strings.Contains(text, quoted) {
		return "", false
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		span := spanFrom(text, start)
		if requiredKey == "" || strings.Contains(span, quoted) {
			return span, true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// spanFrom 截到与 start 处 { 配对的 }；找不到配对时截到最后一个 }，没有 } 时截到文本末尾
func spanFrom(text string, start int) string {
	if end, ok := matchingBrace(text, start); ok {
		return text[start : end+1]
	}
	if last := strings.LastIndexByte(text, '}'); last > start {
		return text[start : last+1]
	}
	return text[start:]
}

// matchingBrace 跳过字符串内容，返回与 start 处 { 配对的 } 下标
func matchingBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// Repair 去掉 } 或 ] 前的尾逗号，{ 多于 } 时在末尾补齐
func Repair(span string) string {
	repaired := trailingComma.ReplaceAllString(span, "$1")
	if deficit := strings.Count(repaired, "{") - strings.Count(repaired, "}"); deficit > 0 {
		repaired += strings.Repeat("}", deficit)
	}
	return repaired
}

// Verbatim 直接解析整段文本
type Verbatim struct{}

func (Verbatim) Name() string { return "verbatim" }

func (Verbatim) Extract(text, _ string) (any, bool) {
	return parse(strings.TrimSpace(text))
}
