package v1

// 对外提示与空结果时的兜底文本
const (
	msgInvalidBody = "Invalid request body"

	msgChatUpstream = "Failed to get response"
	msgChatFailed   = "Failed to process chat message"
	msgChatEmpty    = "Sorry, I couldn't process that. Please try again."

	msgRoadmapFailed = "Failed to generate roadmap"
	msgRoadmapEmpty  = "I couldn't generate a roadmap. Please try again."

	msgProjectUpstream = "Failed to generate project"
	msgProjectFailed   = "Failed to generate project guidance"
	msgProjectEmpty    = "I couldn't generate a project. Please try again."

	msgSkillFailed = "Failed to validate skill"
)
