package models

// 上游生成的结构化文档，所有字段都是可选的

// Roadmap 学习路线
type Roadmap struct {
	SkillName           Text           `json:"skill_name"`
	DifficultyLevel     Text           `json:"difficulty_level"`
	TotalDurationMonths Text           `json:"total_duration_months"`
	Phases              []RoadmapPhase `json:"phases"`
}

type RoadmapPhase struct {
	Title         Text       `json:"title"`
	Goal          Text       `json:"goal"`
	DurationWeeks Text       `json:"duration_weeks"`
	Topics        TextList   `json:"topics"`
	Milestone     Text       `json:"milestone"`
	Resources     []Resource `json:"resources"`
}

type Resource struct {
	Title    Text `json:"title"`
	Type     Text `json:"type"`
	URL      Text `json:"url"`
	Duration Text `json:"duration"`
}

// ProjectSuggestions 项目建议
type ProjectSuggestions struct {
	SuggestedProjects []ProjectIdea `json:"suggested_projects"`
}

type ProjectIdea struct {
	Title            Text     `json:"title"`
	Description      Text     `json:"description"`
	Difficulty       Text     `json:"difficulty"`
	EstimatedHours   Text     `json:"estimated_hours"`
	TechStack        TextList `json:"tech_stack"`
	SkillsReinforced TextList `json:"skills_reinforced"`
	PortfolioValue   Text     `json:"portfolio_value"`
	WhyThisProject   Text     `json:"why_this_project"`
}

// SkillValidation 技能校验结果
type SkillValidation struct {
	SkillName         Text     `json:"skill_name"`
	IsValid           Text     `json:"is_valid"`
	ConfidenceScore   Text     `json:"confidence_score"`
	DemandLevel       Text     `json:"demand_level"`
	ValidationSummary Text     `json:"validation_summary"`
	Reasons           Reasons  `json:"reasons"`
	Alternatives      TextList `json:"alternatives"`
}
