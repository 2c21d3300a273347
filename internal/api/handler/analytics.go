package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mihintamu/scholarai-server/internal/pkg/response"
	"github.com/mihintamu/scholarai-server/internal/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Sales 销售统计（管理员）
// GET /api/v1/admin/analytics/sales
func (h *AnalyticsHandler) Sales(c *gin.Context) {
	summary, err := h.analyticsService.SalesSummary(c.Request.Context())
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, summary)
}

// Users 用户统计（管理员）
// GET /api/v1/admin/analytics/users
func (h *AnalyticsHandler) Users(c *gin.Context) {
	summary, err := h.analyticsService.UserSummary(c.Request.Context())
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, summary)
}

// Contents 生成内容统计（管理员）
// GET /api/v1/admin/analytics/contents
func (h *AnalyticsHandler) Contents(c *gin.Context) {
	summary, err := h.analyticsService.ContentSummary(c.Request.Context())
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, summary)
}
