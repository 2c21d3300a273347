package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mihintamu/scholarai-server/internal/api/middleware"
	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/pkg/response"
	"github.com/mihintamu/scholarai-server/internal/service"
)

type ContentHandler struct {
	generationService *service.GenerationService
	contentService    *service.ContentService
}

func NewContentHandler(generationService *service.GenerationService, contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{
		generationService: generationService,
		contentService:    contentService,
	}
}

// Types 内容类型列表
// GET /api/v1/content/types
func (h *ContentHandler) Types(c *gin.Context) {
	response.Success(c, model.ContentTypes)
}

// Generate 生成内容
// POST /api/v1/content/generate
func (h *ContentHandler) Generate(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.GenerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.generationService.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidContentType),
			errors.Is(err, service.ErrInvalidWordCount),
			errors.Is(err, service.ErrEmptyTopic):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrSubjectNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrFreePlanLimit):
			response.FreePlanLimitError(c, err.Error())
		case errors.Is(err, service.ErrInsufficientCredits):
			response.CreditsError(c, err.Error())
		case errors.Is(err, service.ErrGenerationFailed):
			response.GenerationError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// List 生成历史
// GET /api/v1/content/history?page=1&page_size=20
func (h *ContentHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.contentService.List(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 历史记录详情
// GET /api/v1/content/history/:id
func (h *ContentHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的记录 ID")
		return
	}

	detail, err := h.contentService.Get(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, detail)
}

// Download 下载纯文本
// GET /api/v1/content/history/:id/download
func (h *ContentHandler) Download(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的记录 ID")
		return
	}

	filename, text, err := h.contentService.Download(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
