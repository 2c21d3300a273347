package handler

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mihintamu/scholarai-server/internal/api/middleware"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/pkg/response"
	"github.com/mihintamu/scholarai-server/internal/service"
)

// 头像最大 2MB
const maxAvatarSize = 2 << 20

// AvatarStore 头像存储（OSS 客户端实现）
type AvatarStore interface {
	UploadAvatar(userID int64, data []byte, ext string) (string, error)
}

type UserHandler struct {
	authService *service.AuthService
	avatarStore AvatarStore
}

func NewUserHandler(authService *service.AuthService, avatarStore AvatarStore) *UserHandler {
	return &UserHandler{
		authService: authService,
		avatarStore: avatarStore,
	}
}

// GetProfile 获取当前用户信息
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	info := &dto.UserInfo{
		ID:            user.ID,
		Username:      user.Username,
		PhoneNumber:   user.PhoneNumber,
		Role:          user.Role,
		AvatarURL:     user.AvatarURL,
		EmailVerified: user.EmailVerified,
	}
	if user.Email != nil {
		info.Email = *user.Email
	}

	response.Success(c, info)
}

// UpdateProfile 更新当前用户信息
// PUT /api/v1/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameExists):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, info)
}

// UploadAvatar 上传头像
// POST /api/v1/user/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请选择文件")
		return
	}
	if fileHeader.Size > maxAvatarSize {
		response.ParamError(c, "头像大小不能超过 2MB")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		response.ParamError(c, "仅支持 jpg/png/webp 格式")
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

	avatarURL, err := h.avatarStore.UploadAvatar(userID, data, ext)
	if err != nil {
		response.ServerError(c, "上传失败")
		return
	}

	if err := h.authService.UpdateAvatar(userID, avatarURL); err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"avatar_url": avatarURL})
}
