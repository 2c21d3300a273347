package cron

import (
	"context"
	"log"
	"time"

	"github.com/mihintamu/scholarai-server/internal/repository"
	"github.com/mihintamu/scholarai-server/internal/service"
)

type Service struct {
	userRepo     *repository.UserRepository
	analyticsSvc *service.AnalyticsService
	stopChan     chan struct{}
}

func NewService(userRepo *repository.UserRepository, analyticsSvc *service.AnalyticsService) *Service {
	return &Service{
		userRepo:     userRepo,
		analyticsSvc: analyticsSvc,
		stopChan:     make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyCleanup()
	go s.runCacheWarm()
	log.Println("Cron service started (unverified cleanup + analytics warm)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runDailyCleanup 每日清理过期未验证账号
func (s *Service) runDailyCleanup() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.cleanupUnverified()
			timer.Reset(24 * time.Hour)
		}
	}
}

// cleanupUnverified 删除验证码已过期且始终未验证的账号
func (s *Service) cleanupUnverified() {
	deleted, err := s.userRepo.DeleteExpiredUnverified()
	if err != nil {
		log.Printf("Failed to cleanup unverified users: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Cleaned up %d expired unverified users", deleted)
	}
}

// runCacheWarm 每小时预热一次统计缓存
func (s *Service) runCacheWarm() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			s.analyticsSvc.WarmCache(ctx)
			cancel()
		}
	}
}
