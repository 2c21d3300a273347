package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/repository"
)

// 统计结果缓存
const (
	cacheKeySales    = "analytics:sales"
	cacheKeyUsers    = "analytics:users"
	cacheKeyContents = "analytics:contents"
	cacheTTL         = 5 * time.Minute
)

type AnalyticsService struct {
	userRepo    *repository.UserRepository
	subRepo     *repository.SubscriptionRepository
	contentRepo *repository.ContentRepository
	rdb         *redis.Client
}

func NewAnalyticsService(
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	contentRepo *repository.ContentRepository,
	rdb *redis.Client,
) *AnalyticsService {
	return &AnalyticsService{
		userRepo:    userRepo,
		subRepo:     subRepo,
		contentRepo: contentRepo,
		rdb:         rdb,
	}
}

// SalesSummary 销售统计，结果缓存 5 分钟
func (s *AnalyticsService) SalesSummary(ctx context.Context) (*dto.SalesSummary, error) {
	var cached dto.SalesSummary
	if s.getCache(ctx, cacheKeySales, &cached) {
		return &cached, nil
	}

	revenue, err := s.subRepo.SumRevenue()
	if err != nil {
		return nil, err
	}
	paid, err := s.subRepo.CountPaid()
	if err != nil {
		return nil, err
	}
	byPlan, err := s.subRepo.RevenueByPlan()
	if err != nil {
		return nil, err
	}

	summary := &dto.SalesSummary{
		TotalRevenue: revenue,
		PaidUsers:    paid,
		ByPlan:       make([]dto.PlanSalesItem, 0, len(byPlan)),
	}
	for _, row := range byPlan {
		summary.ByPlan = append(summary.ByPlan, dto.PlanSalesItem{
			PlanName: row.PlanName,
			Count:    row.Count,
			Revenue:  row.Revenue,
		})
	}

	s.setCache(ctx, cacheKeySales, summary)
	return summary, nil
}

// UserSummary 用户统计
func (s *AnalyticsService) UserSummary(ctx context.Context) (*dto.UserSummary, error) {
	var cached dto.UserSummary
	if s.getCache(ctx, cacheKeyUsers, &cached) {
		return &cached, nil
	}

	total, err := s.userRepo.CountAll()
	if err != nil {
		return nil, err
	}
	verified, err := s.userRepo.CountVerified()
	if err != nil {
		return nil, err
	}
	recent, err := s.userRepo.CountCreatedSince(30)
	if err != nil {
		return nil, err
	}

	summary := &dto.UserSummary{
		TotalUsers:    total,
		VerifiedUsers: verified,
		NewLast30Days: recent,
	}

	s.setCache(ctx, cacheKeyUsers, summary)
	return summary, nil
}

// ContentSummary 生成内容统计
func (s *AnalyticsService) ContentSummary(ctx context.Context) (*dto.ContentSummary, error) {
	var cached dto.ContentSummary
	if s.getCache(ctx, cacheKeyContents, &cached) {
		return &cached, nil
	}

	total, err := s.contentRepo.CountAll()
	if err != nil {
		return nil, err
	}
	byType, err := s.contentRepo.CountByType()
	if err != nil {
		return nil, err
	}

	summary := &dto.ContentSummary{
		TotalContents: total,
		ByType:        make([]dto.ContentTypeCount, 0, len(byType)),
	}
	for _, row := range byType {
		summary.ByType = append(summary.ByType, dto.ContentTypeCount{
			ContentType: row.ContentType,
			Count:       row.Count,
		})
	}

	s.setCache(ctx, cacheKeyContents, summary)
	return summary, nil
}

// WarmCache 预热统计缓存（定时任务调用）
func (s *AnalyticsService) WarmCache(ctx context.Context) {
	if _, err := s.SalesSummary(ctx); err != nil {
		log.Printf("Failed to warm sales summary cache: %v", err)
	}
	if _, err := s.UserSummary(ctx); err != nil {
		log.Printf("Failed to warm user summary cache: %v", err)
	}
	if _, err := s.ContentSummary(ctx); err != nil {
		log.Printf("Failed to warm content summary cache: %v", err)
	}
}

func (s *AnalyticsService) getCache(ctx context.Context, key string, out interface{}) bool {
	if s.rdb == nil {
		return false
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *AnalyticsService) setCache(ctx context.Context, key string, value interface{}) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache %s: %v", key, err)
	}
}
