package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mihintamu/scholarai-server/internal/api/middleware"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/pkg/response"
	"github.com/mihintamu/scholarai-server/internal/service"
)

type SubscriptionHandler struct {
	subService *service.SubscriptionService
}

func NewSubscriptionHandler(subService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subService: subService}
}

// Plans 套餐列表
// GET /api/v1/subscription/plans
func (h *SubscriptionHandler) Plans(c *gin.Context) {
	response.Success(c, h.subService.ListPlans())
}

// RazorpayKey 支付公钥
// GET /api/v1/subscription/razorpay-key
func (h *SubscriptionHandler) RazorpayKey(c *gin.Context) {
	response.Success(c, h.subService.GetRazorpayKey())
}

// Get 当前订阅
// GET /api/v1/subscription
func (h *SubscriptionHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	info, err := h.subService.GetSubscriptionInfo(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, info)
}

// ConfirmPayment 支付确认
// POST /api/v1/subscription/confirm
func (h *SubscriptionHandler) ConfirmPayment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.subService.ConfirmPayment(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlan),
			errors.Is(err, service.ErrFreePlanNotPayable):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "订阅成功", info)
}
