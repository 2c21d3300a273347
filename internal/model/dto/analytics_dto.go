package dto

// SalesSummary 销售统计
type SalesSummary struct {
	TotalRevenue float64         `json:"total_revenue"`
	PaidUsers    int64           `json:"paid_users"`
	ByPlan       []PlanSalesItem `json:"by_plan"`
}

// PlanSalesItem 按套餐的销售明细
type PlanSalesItem struct {
	PlanName string  `json:"plan_name"`
	Count    int64   `json:"count"`
	Revenue  float64 `json:"revenue"`
}

// UserSummary 用户统计
type UserSummary struct {
	TotalUsers    int64 `json:"total_users"`
	VerifiedUsers int64 `json:"verified_users"`
	NewLast30Days int64 `json:"new_last_30_days"`
}

// ContentSummary 生成内容统计
type ContentSummary struct {
	TotalContents int64              `json:"total_contents"`
	ByType        []ContentTypeCount `json:"by_type"`
}

// ContentTypeCount 按内容类型的数量
type ContentTypeCount struct {
	ContentType string `json:"content_type"`
	Count       int64  `json:"count"`
}
