package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByUserID(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert 按 user_id 创建或覆盖订阅行（支付成功后调用）
func (r *SubscriptionRepository) Upsert(sub *model.Subscription) error {
	var existing model.Subscription
	err := r.db.Where("user_id = ?", sub.UserID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(sub).Error
		}
		return err
	}

	sub.ID = existing.ID
	sub.CreatedAt = existing.CreatedAt
	return r.db.Save(sub).Error
}

// ConsumeCredit 原子条件扣减：仅当剩余积分 > 0 时减 1。
// 返回 false 表示没有可扣的积分（并发下也不会扣成负数）。
func (r *SubscriptionRepository) ConsumeCredit(userID int64) (bool, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("user_id = ? AND credits_remaining > 0", userID).
		Update("credits_remaining", gorm.Expr("credits_remaining - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountPaid 付费用户数（free 以外的活跃订阅）
func (r *SubscriptionRepository) CountPaid() (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("plan_name <> ? AND status = ?", "free", "active").
		Count(&count).Error
	return count, err
}

// SumRevenue 总收入
func (r *SubscriptionRepository) SumRevenue() (float64, error) {
	var total float64
	err := r.db.Model(&model.Subscription{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

// RevenueByPlan 按套餐统计订阅数与收入
func (r *SubscriptionRepository) RevenueByPlan() ([]PlanRevenue, error) {
	var rows []PlanRevenue
	err := r.db.Model(&model.Subscription{}).
		Select("plan_name, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS revenue").
		Where("plan_name <> ?", "free").
		Group("plan_name").
		Order("plan_name ASC").
		Scan(&rows).Error
	return rows, err
}

// PlanRevenue 按套餐聚合的结果行
type PlanRevenue struct {
	PlanName string
	Count    int64
	Revenue  float64
}
