package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"valsia/internal/app/controllers"
	"valsia/internal/app/models"
	"valsia/internal/app/services"
	"valsia/internal/pkg/logging"
)

type LearningController struct {
	service *services.LearningService
}

func NewLearningController(service *services.LearningService) *LearningController {
	return &LearningController{service: service}
}

func caller(ctx *gin.Context) services.Caller {
	return services.Caller{ClientIP: ctx.ClientIP()}
}

// abortWithError 按错误类型返回 {"error": "..."}
func abortWithError(ctx *gin.Context, err error, upstreamFallback, fallback string) {
	status, message := controllers.ErrorStatus(err, upstreamFallback, fallback)
	entry := logging.WithContext(ctx).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Errorf("%s: %v", ctx.FullPath(), err)
	} else {
		entry.Warnf("%s: %v", ctx.FullPath(), err)
	}
	if status == controllers.StatusClientClosedRequest {
		ctx.AbortWithStatus(status)
		return
	}
	ctx.AbortWithStatusJSON(status, gin.H{"error": message})
}

// Chat 聊天机器人
func (c *LearningController) Chat(ctx *gin.Context) {
	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	response, err := c.service.Chat(ctx.Request.Context(), req, caller(ctx), nil)
	if errors.Is(err, services.ErrEmptyResponse) {
		ctx.JSON(http.StatusOK, gin.H{"response": msgChatEmpty})
		return
	}
	if err != nil {
		abortWithError(ctx, err, msgChatUpstream, msgChatFailed)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"response": response})
}

// Roadmap 学习路线；上游错误体原样透传
func (c *LearningController) Roadmap(ctx *gin.Context) {
	var req models.RoadmapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	roadmap, err := c.service.Roadmap(ctx.Request.Context(), req, caller(ctx))
	if errors.Is(err, services.ErrEmptyResponse) {
		ctx.JSON(http.StatusOK, gin.H{"roadmap": msgRoadmapEmpty})
		return
	}
	var upstream *services.UpstreamError
	if errors.As(err, &upstream) && gjson.ValidBytes(upstream.Body) {
		logging.WithContext(ctx).Warnf("roadmap upstream error: %v", err)
		ctx.Data(upstream.Status, "application/json; charset=utf-8", upstream.Body)
		return
	}
	if err != nil {
		abortWithError(ctx, err, msgRoadmapFailed, msgRoadmapFailed)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"roadmap": roadmap})
}

// Project 项目建议/指导
func (c *LearningController) Project(ctx *gin.Context) {
	var req models.ProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	answer, err := c.service.Project(ctx.Request.Context(), req, caller(ctx))
	if errors.Is(err, services.ErrEmptyResponse) {
		ctx.JSON(http.StatusOK, gin.H{"answer": msgProjectEmpty})
		return
	}
	if err != nil {
		abortWithError(ctx, err, msgProjectUpstream, msgProjectFailed)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"answer": answer})
}

// ValidateSkill 技能校验，原样返回上游 JSON
func (c *LearningController) ValidateSkill(ctx *gin.Context) {
	var req models.SkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	result, err := c.service.ValidateSkill(ctx.Request.Context(), req, caller(ctx))
	if err != nil {
		abortWithError(ctx, err, msgSkillFailed, msgSkillFailed)
		return
	}
	if !json.Valid(result.Body) {
		logging.WithContext(ctx).Errorf("skill validator returned non-JSON body, status %d", result.Status)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": msgSkillFailed})
		return
	}
	ctx.Data(result.Status, "application/json; charset=utf-8", result.Body)
}
