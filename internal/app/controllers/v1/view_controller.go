package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"valsia/internal/app/controllers"
	"valsia/internal/app/models"
	"valsia/internal/app/services"
	"valsia/internal/app/views"
	"valsia/internal/pkg/code"
)

// ViewController 生成后直接返回页面使用的结构化数据
type ViewController struct {
	service   *services.LearningService
	presenter *views.Presenter
}

func NewViewController(service *services.LearningService, presenter *views.Presenter) *ViewController {
	return &ViewController{service: service, presenter: presenter}
}

func viewError(ctx *gin.Context, err error, upstreamFallback, fallback string) {
	status, message := controllers.ErrorStatus(err, upstreamFallback, fallback)
	if status == controllers.StatusClientClosedRequest {
		ctx.AbortWithStatus(status)
		return
	}
	controllers.ResponseWithErr(ctx, status, message, err.Error(), nil)
}

func bindView(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		controllers.ResponseWithErr(ctx, code.InvalidParams, msgInvalidBody, err.Error(), nil)
		return false
	}
	return true
}

// Chat 课程分节
func (c *ViewController) Chat(ctx *gin.Context) {
	var req models.ChatRequest
	if !bindView(ctx, &req) {
		return
	}
	text, err := c.service.Chat(ctx.Request.Context(), req, caller(ctx), nil)
	if errors.Is(err, services.ErrEmptyResponse) {
		text, err = msgChatEmpty, nil
	}
	if err != nil {
		viewError(ctx, err, msgChatUpstream, msgChatFailed)
		return
	}
	controllers.Response(ctx, code.Success, code.MsgSuccess, c.presenter.Chat(text))
}

// Roadmap 学习路线阶段
func (c *ViewController) Roadmap(ctx *gin.Context) {
	var req models.RoadmapRequest
	if !bindView(ctx, &req) {
		return
	}
	text, err := c.service.Roadmap(ctx.Request.Context(), req, caller(ctx))
	if errors.Is(err, services.ErrEmptyResponse) {
		text, err = msgRoadmapEmpty, nil
	}
	if err != nil {
		viewError(ctx, err, msgRoadmapFailed, msgRoadmapFailed)
		return
	}
	controllers.Response(ctx, code.Success, code.MsgSuccess, c.presenter.Roadmap(text))
}

// Project 项目卡片
func (c *ViewController) Project(ctx *gin.Context) {
	var req models.ProjectRequest
	if !bindView(ctx, &req) {
		return
	}
	text, err := c.service.Project(ctx.Request.Context(), req, caller(ctx))
	if errors.Is(err, services.ErrEmptyResponse) {
		text, err = msgProjectEmpty, nil
	}
	if err != nil {
		viewError(ctx, err, msgProjectUpstream, msgProjectFailed)
		return
	}
	controllers.Response(ctx, code.Success, code.MsgSuccess, c.presenter.Projects(text, services.ProjectMode(req.Mode)))
}

// Skill 技能校验卡片
func (c *ViewController) Skill(ctx *gin.Context) {
	var req models.SkillRequest
	if !bindView(ctx, &req) {
		return
	}
	result, err := c.service.ValidateSkill(ctx.Request.Context(), req, caller(ctx))
	if err != nil {
		viewError(ctx, err, msgSkillFailed, msgSkillFailed)
		return
	}
	if result.Status < http.StatusOK || result.Status >= http.StatusMultipleChoices {
		controllers.ResponseWithErr(ctx, result.Status, msgSkillFailed, string(result.Body), nil)
		return
	}
	controllers.Response(ctx, code.Success, code.MsgSuccess, c.presenter.Skill(result.Body))
}
