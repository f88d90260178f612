package views

import (
	"strings"

	"valsia/internal/app/models"
	"valsia/pkg/format"
)

// ProjectCard 一个项目建议
type ProjectCard struct {
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Difficulty       string   `json:"difficulty"`
	EstimatedHours   string   `json:"estimated_hours,omitempty"`
	TechStack        []string `json:"tech_stack"`
	SkillsReinforced []string `json:"skills_reinforced"`
	PortfolioValue   string   `json:"portfolio_value,omitempty"`
	WhyThisProject   string   `json:"why_this_project,omitempty"`
}

// ProjectsView 项目页
type ProjectsView struct {
	Mode       string           `json:"mode"`
	Structured bool             `json:"structured"`
	Strategy   string           `json:"strategy,omitempty"`
	Projects   []ProjectCard    `json:"projects"`
	Segments   []format.Segment `json:"segments,omitempty"`
}

// Projects 能提取到 suggested_projects 时渲染项目卡片（可以为零个），否则按文本分段
func (p *Presenter) Projects(text, mode string) ProjectsView {
	view := ProjectsView{Mode: mode, Projects: []ProjectCard{}}

	var doc models.ProjectSuggestions
	strategy, ok := p.decode("projects", text, "suggested_projects", &doc)
	if !ok {
		view.Segments = p.formatter.Format(text)
		return view
	}

	view.Structured = true
	view.Strategy = strategy
	for _, idea := range doc.SuggestedProjects {
		view.Projects = append(view.Projects, ProjectCard{
			Title:            orDefault(idea.Title.String(), "Untitled project"),
			Description:      idea.Description.String(),
			Difficulty:       strings.ToLower(orDefault(idea.Difficulty.String(), "beginner")),
			EstimatedHours:   idea.EstimatedHours.String(),
			TechStack:        idea.TechStack.Strings(),
			SkillsReinforced: idea.SkillsReinforced.Strings(),
			PortfolioValue:   strings.ToLower(idea.PortfolioValue.String()),
			WhyThisProject:   idea.WhyThisProject.String(),
		})
	}
	return view
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
