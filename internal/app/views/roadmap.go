package views

import (
	"valsia/internal/app/models"
	"valsia/pkg/format"
)

type ResourceView struct {
	Title    string `json:"title"`
	Type     string `json:"type,omitempty"`
	URL      string `json:"url"`
	Duration string `json:"duration,omitempty"`
}

type PhaseView struct {
	Number        int            `json:"number"`
	Title         string         `json:"title"`
	Goal          string         `json:"goal,omitempty"`
	DurationWeeks string         `json:"duration_weeks,omitempty"`
	Topics        []string       `json:"topics"`
	Milestone     string         `json:"milestone,omitempty"`
	Resources     []ResourceView `json:"resources"`
}

// RoadmapView 学习路线页
type RoadmapView struct {
	Structured          bool             `json:"structured"`
	Strategy            string           `json:"strategy,omitempty"`
	SkillName           string           `json:"skill_name,omitempty"`
	DifficultyLevel     string           `json:"difficulty_level,omitempty"`
	TotalDurationMonths string           `json:"total_duration_months,omitempty"`
	Phases              []PhaseView      `json:"phases"`
	Segments            []format.Segment `json:"segments,omitempty"`
}

// Roadmap 能提取到含 phases 的文档时渲染阶段，否则按文本分段
func (p *Presenter) Roadmap(text string) RoadmapView {
	view := RoadmapView{Phases: []PhaseView{}}

	var doc models.Roadmap
	strategy, ok := p.decode("roadmap", text, "phases", &doc)
	if !ok {
		view.Segments = p.formatter.Format(text)
		return view
	}

	view.Structured = true
	view.Strategy = strategy
	view.SkillName = doc.SkillName.String()
	view.DifficultyLevel = doc.DifficultyLevel.String()
	view.TotalDurationMonths = doc.TotalDurationMonths.String()
	for i, phase := range doc.Phases {
		pv := PhaseView{
			Number:        i + 1,
			Title:         orDefault(phase.Title.String(), "Phase"),
			Goal:          phase.Goal.String(),
			DurationWeeks: phase.DurationWeeks.String(),
			Topics:        phase.Topics.Strings(),
			Milestone:     phase.Milestone.String(),
			Resources:     []ResourceView{},
		}
		for _, r := range phase.Resources {
			pv.Resources = append(pv.Resources, ResourceView{
				Title:    r.Title.String(),
				Type:     r.Type.String(),
				URL:      orDefault(r.URL.String(), "#"),
				Duration: r.Duration.String(),
			})
		}
		view.Phases = append(view.Phases, pv)
	}
	return view
}
