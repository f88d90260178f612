package views

import (
	"valsia/internal/app/models"
	"valsia/pkg/format"
	"valsia/pkg/util"
)

type SkillCard struct {
	SkillName         string   `json:"skill_name"`
	IsValid           *bool    `json:"is_valid,omitempty"`
	ConfidenceScore   string   `json:"confidence_score,omitempty"`
	DemandLevel       string   `json:"demand_level,omitempty"`
	ValidationSummary string   `json:"validation_summary,omitempty"`
	Pros              []string `json:"pros"`
	Cons              []string `json:"cons"`
	Alternatives      []string `json:"alternatives"`
}

// SkillView 技能校验页
type SkillView struct {
	Structured bool             `json:"structured"`
	Strategy   string           `json:"strategy,omitempty"`
	Validation *SkillCard       `json:"validation,omitempty"`
	Segments   []format.Segment `json:"segments,omitempty"`
}

// Skill 读取阻塞响应中的 answer/output 文本后提取
func (p *Presenter) Skill(body []byte) SkillView {
	text := util.AnswerText(body)
	if text == "" {
		return SkillView{}
	}

	var doc models.SkillValidation
	strategy, ok := p.decode("skill", text, "", &doc)
	if !ok {
		return SkillView{Segments: p.formatter.Format(text)}
	}

	card := &SkillCard{
		SkillName:         orDefault(doc.SkillName.String(), "Skill Validation"),
		ConfidenceScore:   doc.ConfidenceScore.String(),
		DemandLevel:       doc.DemandLevel.String(),
		ValidationSummary: doc.ValidationSummary.String(),
		Pros:              doc.Reasons.Pros.Strings(),
		Cons:              doc.Reasons.Cons.Strings(),
		Alternatives:      doc.Alternatives.Strings(),
	}
	if valid, known := doc.IsValid.Bool(); known {
		card.IsValid = &valid
	}
	return SkillView{Structured: true, Strategy: strategy, Validation: card}
}
