package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/pkg/response"
	"github.com/mihintamu/scholarai-server/internal/service"
)

type KnowledgeHandler struct {
	knowledgeService *service.KnowledgeService
}

func NewKnowledgeHandler(knowledgeService *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeService: knowledgeService}
}

// List 知识库列表（管理员）
// GET /api/v1/admin/knowledge?q=xxx&subject_id=1  （subject_id=common 只看通用条目）
func (h *KnowledgeHandler) List(c *gin.Context) {
	filter := &dto.KnowledgeFilter{Query: c.Query("q")}

	if raw := c.Query("subject_id"); raw != "" {
		if raw == "common" {
			filter.CommonOnly = true
		} else {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				response.ParamError(c, "无效的科目 ID")
				return
			}
			filter.SubjectID = &id
		}
	}

	entries, err := h.knowledgeService.List(filter)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, entries)
}

// Get 知识库条目详情（管理员）
// GET /api/v1/admin/knowledge/:id
func (h *KnowledgeHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的条目 ID")
		return
	}

	entry, err := h.knowledgeService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrKnowledgeNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}
	response.Success(c, entry)
}

// Create 创建知识库条目（管理员）
// POST /api/v1/admin/knowledge
func (h *KnowledgeHandler) Create(c *gin.Context) {
	var req dto.SaveKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	entry, err := h.knowledgeService.Save(&req)
	if err != nil {
		h.handleSaveError(c, err)
		return
	}

	response.SuccessWithMessage(c, "保存成功", entry)
}

// Update 更新知识库条目（管理员）
// PUT /api/v1/admin/knowledge/:id
func (h *KnowledgeHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的条目 ID")
		return
	}

	var req dto.SaveKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	entry, err := h.knowledgeService.Update(id, &req)
	if err != nil {
		h.handleSaveError(c, err)
		return
	}

	response.SuccessWithMessage(c, "保存成功", entry)
}

// Delete 删除知识库条目（管理员）
// DELETE /api/v1/admin/knowledge/:id
func (h *KnowledgeHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的条目 ID")
		return
	}

	if err := h.knowledgeService.Delete(id); err != nil {
		if errors.Is(err, service.ErrKnowledgeNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Upload 上传知识库文件并尝试抽取文本（管理员）
// POST /api/v1/admin/knowledge/upload
func (h *KnowledgeHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请选择文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	resp, err := h.knowledgeService.Upload(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrExtNotAllowed):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "上传失败")
		}
		return
	}

	response.Success(c, resp)
}

// Parse 解析已上传的文档（管理员）
// POST /api/v1/admin/knowledge/parse
func (h *KnowledgeHandler) Parse(c *gin.Context) {
	var req dto.ParseDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.knowledgeService.ParseDocument(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFileType) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "文档解析失败")
		return
	}

	response.Success(c, resp)
}

func (h *KnowledgeHandler) handleSaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyKnowledge),
		errors.Is(err, service.ErrSubjectRequired):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrKnowledgeNotFound):
		response.NotFoundError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
