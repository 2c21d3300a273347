package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/pkg/response"
	"github.com/mihintamu/scholarai-server/internal/service"
)

type SubjectHandler struct {
	subjectService *service.SubjectService
}

func NewSubjectHandler(subjectService *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// List 科目列表
// GET /api/v1/subjects
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.subjectService.List()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, subjects)
}

// Create 创建科目（管理员）
// POST /api/v1/admin/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	subject, err := h.subjectService.Create(&req)
	if err != nil {
		if errors.Is(err, service.ErrSubjectExists) || errors.Is(err, service.ErrEmptySubjectName) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "创建成功", subject)
}

// Delete 删除科目（管理员）
// DELETE /api/v1/admin/subjects/:id
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的科目 ID")
		return
	}

	if err := h.subjectService.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrSubjectNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrSubjectReferenced):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
