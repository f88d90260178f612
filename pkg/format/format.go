// Package format turns free text that could not be parsed as JSON into
// ordered presentation segments. The output is lossy and only meant for display.
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// Kind 段落类型
type Kind string

const (
	KindHeading   Kind = "heading"
	KindList      Kind = "list"
	KindParagraph Kind = "paragraph"
)

// DefaultMinLength 短于该长度（按字符计）的段落视为噪音
const DefaultMinLength = 3

// Segment 一个展示片段
type Segment struct {
	Kind  Kind     `json:"kind"`
	Level int      `json:"level,omitempty"`
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

// DefaultDenylist 常见的对话式开场白/结束语
var DefaultDenylist = []*regexp.Regexp{
	regexp.MustCompile(`\*\*Suggested Projects:\*\*`),
	regexp.MustCompile(`(?i)I'd be happy to help you with that!`),
	regexp.MustCompile(`(?i)Based on your input.*?here are.*?:`),
	regexp.MustCompile(`(?i)Please select one of these projects`),
	regexp.MustCompile(`(?i)Which project would you like to start with\?`),
}

var (
	fencedBlock  = regexp.MustCompile("(?s)```.*?```")
	blankLine    = regexp.MustCompile(`\n[ \t]*\n`)
	listMarker   = regexp.MustCompile(`^(?:[-*]|\d+\.)\s`)
	markerPrefix = regexp.MustCompile(`^(?:[-*]|\d+\.)\s*`)
)

// Formatter 启发式文本分段器
type Formatter struct {
	denylist  []*regexp.Regexp
	minLength int
	md        goldmark.Markdown
}

// New 创建 Formatter，denylist 为 nil 时使用 DefaultDenylist
func New(denylist []*regexp.Regexp, minLength int) *Formatter {
	if denylist == nil {
		denylist = DefaultDenylist
	}
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Formatter{denylist: denylist, minLength: minLength, md: goldmark.New()}
}

var defaultFormatter = New(nil, DefaultMinLength)

// Format 使用默认配置分段
func Format(text string) []Segment {
	return defaultFormatter.Format(text)
}

// Format 按空行切分并逐段分类，顺序与原文一致
func (f *Formatter) Format(text string) []Segment {
	cleaned := f.clean(text)
	if cleaned == "" {
		return nil
	}

	var segments []Segment
	for _, section := range blankLine.Split(cleaned, -1) {
		trimmed := strings.TrimSpace(section)
		if utf8.RuneCountInString(trimmed) < f.minLength {
			continue
		}
		segments = append(segments, f.classify(trimmed))
	}
	return segments
}

func (f *Formatter) clean(text string) string {
	cleaned := strings.ReplaceAll(text, "\r\n", "\n")
	cleaned = fencedBlock.ReplaceAllString(cleaned, "")
	for _, re := range f.denylist {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}

func (f *Formatter) classify(section string) Segment {
	switch {
	case strings.HasPrefix(section, "## "):
		return Segment{Kind: KindHeading, Level: 1, Text: f.plain(section[3:])}
	case strings.HasPrefix(section, "### "):
		return Segment{Kind: KindHeading, Level: 2, Text: f.plain(section[4:])}
	}

	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !listMarker.MatchString(line) {
			continue
		}
		if item := f.plain(markerPrefix.ReplaceAllString(line, "")); item != "" {
			items = append(items, item)
		}
	}
	if len(items) > 0 {
		return Segment{Kind: KindList, Items: items}
	}
	return Segment{Kind: KindParagraph, Text: f.plain(section)}
}

// plain 去掉行内 markdown 标记（强调、代码、链接），合并空白
func (f *Formatter) plain(s string) string {
	src := []byte(s)
	doc := f.md.Parser().Parse(gmtext.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(src))
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				b.Write(line.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})

	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return strings.Join(strings.Fields(s), " ")
	}
	return out
}
