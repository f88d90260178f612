package models

// ChatRequest 聊天请求结构体
type ChatRequest struct {
	Message string `json:"message"`
}

// RoadmapRequest 学习路线请求，除 skill 外均可选
type RoadmapRequest struct {
	Skill          string      `json:"skill"`
	Experience     string      `json:"experience,omitempty"`
	TimeCommitment interface{} `json:"timeCommitment,omitempty"` // 数字或字符串
	LearningGoal   string      `json:"learningGoal,omitempty"`
}

// ProjectRequest 项目建议/指导请求
type ProjectRequest struct {
	Skill string `json:"skill"`
	Level string `json:"level,omitempty"`
	Mode  string `json:"mode,omitempty"` // suggest | guide
}

// SkillRequest 技能校验请求
type SkillRequest struct {
	Skill string `json:"skill"`
}
