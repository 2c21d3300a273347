package service

import (
	"errors"
	"log"
	"sort"

	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/config"
	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/pkg/email"
	"github.com/mihintamu/scholarai-server/internal/repository"
)

var (
	ErrUnknownPlan         = errors.New("未知的套餐")
	ErrFreePlanNotPayable  = errors.New("free 套餐无需支付")
	ErrInsufficientCredits = errors.New("积分不足，请升级套餐")
	ErrFreePlanLimit       = errors.New("免费生成次数已用完，请升级套餐")
)

type SubscriptionService struct {
	subRepo      *repository.SubscriptionRepository
	userRepo     *repository.UserRepository
	emailService *email.Service
	cfg          *config.Config
}

func NewSubscriptionService(
	subRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	emailService *email.Service,
	cfg *config.Config,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:      subRepo,
		userRepo:     userRepo,
		emailService: emailService,
		cfg:          cfg,
	}
}

// GetSubscription 获取用户订阅。历史账号没有订阅行时自动补一条 free。
func (s *SubscriptionService) GetSubscription(userID int64) (*model.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tier := s.cfg.Plans.Tiers["free"]
	sub = &model.Subscription{
		UserID:           userID,
		PlanID:           tier.ID,
		PlanName:         "free",
		CreditsRemaining: tier.Credits,
		Status:           "active",
	}
	if err := s.subRepo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// GetSubscriptionInfo 账户设置页展示用
func (s *SubscriptionService) GetSubscriptionInfo(userID int64) (*dto.SubscriptionInfo, error) {
	sub, err := s.GetSubscription(userID)
	if err != nil {
		return nil, err
	}

	return &dto.SubscriptionInfo{
		PlanID:           sub.PlanID,
		PlanName:         sub.PlanName,
		CreditsRemaining: sub.CreditsRemaining,
		Status:           sub.Status,
	}, nil
}

// ListPlans 套餐列表，按价格升序
func (s *SubscriptionService) ListPlans() []*dto.PlanInfo {
	plans := make([]*dto.PlanInfo, 0, len(s.cfg.Plans.Tiers))
	for name, tier := range s.cfg.Plans.Tiers {
		plans = append(plans, &dto.PlanInfo{
			Name:    name,
			PlanID:  tier.ID,
			Credits: tier.Credits,
			Price:   tier.Price,
		})
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].Price < plans[j].Price
	})
	return plans
}

// GetRazorpayKey 前端发起支付用的公钥
func (s *SubscriptionService) GetRazorpayKey() *dto.RazorpayKeyResponse {
	return &dto.RazorpayKeyResponse{
		KeyID:    s.cfg.Razorpay.KeyID,
		Currency: s.cfg.Razorpay.Currency,
	}
}

// ConfirmPayment 支付成功后由前端上报，覆盖订阅并重置积分
func (s *SubscriptionService) ConfirmPayment(userID int64, req *dto.ConfirmPaymentRequest) (*dto.SubscriptionInfo, error) {
	tier, ok := s.cfg.Plans.Tiers[req.PlanName]
	if !ok {
		return nil, ErrUnknownPlan
	}
	if req.PlanName == "free" {
		return nil, ErrFreePlanNotPayable
	}

	sub := &model.Subscription{
		UserID:           userID,
		PlanID:           tier.ID,
		PlanName:         req.PlanName,
		CreditsRemaining: tier.Credits,
		Amount:           tier.Price,
		PaymentID:        req.PaymentID,
		Status:           "active",
	}
	if err := s.subRepo.Upsert(sub); err != nil {
		return nil, err
	}

	// 支付回执邮件，失败忽略
	if s.emailService != nil {
		if user, err := s.userRepo.GetByID(userID); err == nil && user.Email != nil {
			if err := s.emailService.SendPaymentReceipt(*user.Email, req.PlanName, tier.Credits, tier.Price); err != nil {
				log.Printf("Failed to send payment receipt: %v", err)
			}
		}
	}

	return s.GetSubscriptionInfo(userID)
}

// CheckCredits 生成前的快速检查，积分不足立即报错。
// free 套餐用尽返回专门的错误，前端提示升级。
func (s *SubscriptionService) CheckCredits(userID int64) (*model.Subscription, error) {
	sub, err := s.GetSubscription(userID)
	if err != nil {
		return nil, err
	}

	if sub.CreditsRemaining <= 0 {
		if sub.PlanName == "free" {
			return nil, ErrFreePlanLimit
		}
		return nil, ErrInsufficientCredits
	}
	return sub, nil
}

// TryConsume 原子扣减一个积分，返回是否扣成功
func (s *SubscriptionService) TryConsume(userID int64) (bool, error) {
	return s.subRepo.ConsumeCredit(userID)
}
