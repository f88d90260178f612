package views

import "valsia/pkg/format"

// Chat 聊天回复按课程标记分节
func (p *Presenter) Chat(text string) format.Lesson {
	return format.FormatLesson(text)
}
