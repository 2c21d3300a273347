package dto

// SubscriptionInfo 订阅信息（账户设置页）
type SubscriptionInfo struct {
	PlanID           string `json:"plan_id"`
	PlanName         string `json:"plan_name"`
	CreditsRemaining int    `json:"credits_remaining"`
	Status           string `json:"status"`
}

// ConfirmPaymentRequest 支付确认请求（Razorpay 回调后由前端上报）
type ConfirmPaymentRequest struct {
	PlanName  string `json:"plan_name" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
}

// RazorpayKeyResponse Razorpay 公钥响应
type RazorpayKeyResponse struct {
	KeyID    string `json:"key_id"`
	Currency string `json:"currency"`
}

// PlanInfo 套餐展示信息
type PlanInfo struct {
	Name    string  `json:"name"`
	PlanID  string  `json:"plan_id"`
	Credits int     `json:"credits"`
	Price   float64 `json:"price"`
}
