package format

import (
	"regexp"
	"strings"
)

// LessonSection 课程回复中的一节
type LessonSection struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// Lesson 聊天回复的展示形式
type Lesson struct {
	IsLesson  bool            `json:"is_lesson"`
	Sections  []LessonSection `json:"sections,omitempty"`
	PlainText string          `json:"plain_text"`
}

var (
	templateBlocks = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<prompt_template.*?</prompt_template>`),
		regexp.MustCompile(`(?s)<instruction.*?</instruction>`),
		regexp.MustCompile(`(?s)<focus.*?</focus>`),
		regexp.MustCompile(`(?s)<task.*?</task>`),
		regexp.MustCompile(`(?s)<warning.*?</warning>`),
		regexp.MustCompile(`(?s)<reflection.*?</reflection>`),
	}
	bareTag       = regexp.MustCompile(`</?\w+>`)
	lessonHint    = regexp.MustCompile(`(?i)Lesson:|Task:|Warning:|Reflection:|Focus:`)
	lessonSplit   = regexp.MustCompile(`(?i)(?:Lesson|Task|Focus|Warning|Reflection)[:.]\s`)
	lessonTitle   = regexp.MustCompile(`^(Lesson|Task|Focus|Warning|Reflection)[:.]`)
	lessonPrefix  = regexp.MustCompile(`^(?:Lesson|Task|Focus|Warning|Reflection)[:.]\s*`)
	anyWhitespace = regexp.MustCompile(`\s+`)
)

// FormatLesson 去掉提示词模板标签；包含 Lesson/Task/Focus/Warning/Reflection 标记时按标记分节，
// 否则返回合并空白后的纯文本
func FormatLesson(text string) Lesson {
	cleaned := text
	for _, re := range templateBlocks {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(bareTag.ReplaceAllString(cleaned, ""))

	if !lessonHint.MatchString(text) {
		return Lesson{PlainText: strings.TrimSpace(anyWhitespace.ReplaceAllString(cleaned, " "))}
	}

	lesson := Lesson{IsLesson: true, PlainText: cleaned}
	for _, part := range splitBefore(cleaned, lessonSplit) {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		match := lessonTitle.FindStringSubmatch(trimmed)
		if match == nil {
			lesson.Sections = append(lesson.Sections, LessonSection{Content: trimmed})
			continue
		}
		lesson.Sections = append(lesson.Sections, LessonSection{
			Title:   match[1],
			Content: strings.TrimSpace(lessonPrefix.ReplaceAllString(trimmed, "")),
		})
	}
	return lesson
}

// splitBefore 在每个匹配的起始位置切分，匹配内容保留在后一段
func splitBefore(s string, re *regexp.Regexp) []string {
	var parts []string
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			parts = append(parts, s[last:loc[0]])
		}
		last = loc[0]
	}
	return append(parts, s[last:])
}
