package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"valsia/internal/app/models"
	"valsia/internal/pkg/metrics"
	"valsia/pkg/config"
	"valsia/pkg/util"
)

const (
	defaultExperience     = "complete_beginner"
	defaultTimeCommitment = "10"
	defaultLearningGoal   = "get_job"
	defaultProjectLevel   = "beginner"

	ProjectModeGuide   = "guide"
	ProjectModeSuggest = "suggest"
)

var greeting = regexp.MustCompile(`(?i)^(hi|hello|hey|greetings|sup|what's up)$`)

// Caller 请求方信息，只用于记录
type Caller struct {
	ClientIP string
}

// LearningService 聊天、学习路线、项目建议和技能校验
type LearningService struct {
	generator Generator
	history   HistoryStore
	conf      *config.Config
	replacer  util.StringReplacer
}

func NewLearningService(generator Generator, history HistoryStore, conf *config.Config) *LearningService {
	if history == nil {
		history = NoopHistory{}
	}
	return &LearningService{
		generator: generator,
		history:   history,
		conf:      conf,
		replacer:  util.NewSimpleStringReplacer(),
	}
}

// IsGreeting 判断消息是否只是打招呼
func IsGreeting(message string) bool {
	return greeting.MatchString(strings.TrimSpace(message))
}

// Chat 聊天机器人，onText 不为 nil 时实时回调增量文本
func (s *LearningService) Chat(ctx context.Context, req models.ChatRequest, caller Caller, onText func(string)) (string, error) {
	if req.Message == "" {
		return "", &ValidationError{Message: "Message is required"}
	}

	isGreeting := IsGreeting(req.Message)
	inputs := map[string]string{
		"variable_name_1": req.Message,
		"variable_name_2": req.Message,
		"greeting":        "no",
		"request":         req.Message,
	}
	if isGreeting {
		inputs["greeting"] = "yes"
		inputs["request"] = ""
	}

	return s.stream(ctx, config.AppChat, "", models.ChatMessageRequest{
		Inputs: inputs,
		Query:  req.Message,
	}, caller, onText)
}

// Roadmap 生成学习路线
func (s *LearningService) Roadmap(ctx context.Context, req models.RoadmapRequest, caller Caller) (string, error) {
	if req.Skill == "" {
		return "", &ValidationError{Message: "Skill is required"}
	}
	level := util.FirstNonEmpty(req.Experience, defaultExperience)

	return s.stream(ctx, config.AppRoadmap, req.Skill, models.ChatMessageRequest{
		Inputs: map[string]string{
			"skill_name":       req.Skill,
			"user_level":       level,
			"time_commitment_": util.Stringify(req.TimeCommitment, defaultTimeCommitment),
			"learning_goal":    util.FirstNonEmpty(req.LearningGoal, defaultLearningGoal),
		},
		Query: s.render("roadmap", req.Skill, level),
	}, caller, nil)
}

// Project 项目建议（suggest）或项目指导（guide）
func (s *LearningService) Project(ctx context.Context, req models.ProjectRequest, caller Caller) (string, error) {
	if req.Skill == "" {
		return "", &ValidationError{Message: "Skill is required"}
	}
	level := util.FirstNonEmpty(req.Level, defaultProjectLevel)
	mode := ProjectMode(req.Mode)

	return s.stream(ctx, config.AppProject, req.Skill, models.ChatMessageRequest{
		Inputs: map[string]string{
			"skill_name":     req.Skill,
			"user_level":     level,
			"user_interests": s.render("project_interest", req.Skill, level),
			"mode":           mode,
		},
		Query: s.render("project_"+mode, req.Skill, level),
	}, caller, nil)
}

// ProjectMode 只接受 suggest/guide，其余按 guide 处理
func ProjectMode(mode string) string {
	if mode == ProjectModeSuggest || mode == ProjectModeGuide {
		return mode
	}
	return ProjectModeGuide
}

// ValidateSkill 阻塞调用技能校验应用，返回原始上游响应
func (s *LearningService) ValidateSkill(ctx context.Context, req models.SkillRequest, caller Caller) (*models.BlockingResult, error) {
	if req.Skill == "" {
		return nil, &ValidationError{Message: "Skill is required"}
	}

	start := time.Now()
	result, err := s.generator.Block(ctx, config.AppSkill, models.ChatMessageRequest{
		Inputs: map[string]string{"skill_interest": req.Skill},
		Query:  req.Skill,
	})

	g := s.newGeneration(config.AppSkill, req.Skill, req.Skill, caller)
	switch {
	case err != nil:
		g.Status = generationStatus(err)
	case result.Status < 200 || result.Status > 299:
		g.Status = models.GenerationUpstreamError
		g.UpstreamStatus = result.Status
		g.Response = string(result.Body)
	default:
		g.Status = models.GenerationOK
		g.UpstreamStatus = result.Status
		g.Response = util.AnswerText(result.Body)
	}
	s.finish(ctx, g, start)
	return result, err
}

// History 最近的生成记录
func (s *LearningService) History(ctx context.Context, query models.GenerationQuery) ([]models.Generation, error) {
	return s.history.List(ctx, query)
}

func (s *LearningService) render(name, skill, level string) string {
	return util.Render(s.replacer, s.conf.Query(name), map[string]string{
		"skill": skill,
		"level": level,
	})
}

func (s *LearningService) stream(ctx context.Context, app, skill string, req models.ChatMessageRequest, caller Caller, onText func(string)) (string, error) {
	start := time.Now()
	text, err := s.generator.Stream(ctx, app, req, onText)
	if err == nil && text == "" {
		err = ErrEmptyResponse
	}

	g := s.newGeneration(app, skill, req.Query, caller)
	g.Response = text
	g.Status = generationStatus(err)
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		g.UpstreamStatus = upstream.Status
		g.Response = string(upstream.Body)
	}
	metrics.AggregatedBytes.WithLabelValues(app).Observe(float64(len(text)))
	s.finish(ctx, g, start)

	if err != nil {
		return "", err
	}
	return text, nil
}

func (s *LearningService) newGeneration(app, skill, query string, caller Caller) *models.Generation {
	return &models.Generation{
		ID:       uuid.NewString(),
		Kind:     app,
		Skill:    skill,
		Query:    query,
		ClientIP: caller.ClientIP,
	}
}

// finish 记录指标并写入生成记录，写入失败只打印日志
func (s *LearningService) finish(ctx context.Context, g *models.Generation, start time.Time) {
	elapsed := time.Since(start)
	g.DurationMs = elapsed.Milliseconds()
	g.CreatedAt = time.Now()
	metrics.UpstreamRequestsTotal.WithLabelValues(g.Kind, string(g.Status)).Inc()
	metrics.UpstreamDurationSeconds.WithLabelValues(g.Kind).Observe(elapsed.Seconds())

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.history.Create(saveCtx, g); err != nil {
		log.WithFields(log.Fields{"kind": g.Kind, "id": g.ID}).Warnf("save generation failed: %v", err)
	}
}

func generationStatus(err error) models.GenerationStatus {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return models.GenerationOK
	case errors.Is(err, ErrEmptyResponse):
		return models.GenerationEmpty
	case errors.As(err, &upstream):
		return models.GenerationUpstreamError
	default:
		return models.GenerationFailed
	}
}
