package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"valsia/internal/app/controllers"
	"valsia/internal/app/models"
	"valsia/internal/app/services"
	"valsia/internal/pkg/code"
)

type HistoryController struct {
	service *services.LearningService
}

func NewHistoryController(service *services.LearningService) *HistoryController {
	return &HistoryController{service: service}
}

// List 最近的生成记录
func (c *HistoryController) List(ctx *gin.Context) {
	var query models.GenerationQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controllers.ResponseWithErr(ctx, code.InvalidParams, "Invalid query", err.Error(), nil)
		return
	}

	generations, err := c.service.History(ctx.Request.Context(), query)
	if errors.Is(err, services.ErrHistoryDisabled) {
		controllers.ResponseWithErr(ctx, http.StatusServiceUnavailable, "History is not enabled", err.Error(), nil)
		return
	}
	if err != nil {
		controllers.ResponseWithErr(ctx, code.Failed, code.MsgFailed, err.Error(), nil)
		return
	}
	if generations == nil {
		generations = []models.Generation{}
	}
	controllers.Response(ctx, code.Success, code.MsgSuccess, generations)
}
