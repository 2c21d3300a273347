package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/repository"
	"github.com/mihintamu/scholarai-server/internal/testutil"
)

func setupAnalyticsService(t *testing.T, db *gorm.DB) *AnalyticsService {
	t.Helper()

	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	contentRepo := repository.NewContentRepository(db)
	return NewAnalyticsService(userRepo, subRepo, contentRepo, nil)
}

func TestAnalyticsService_SalesSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupAnalyticsService(t, db)

	u1 := testutil.TestUser(t, db)
	u2 := testutil.TestUser(t, db)
	u3 := testutil.TestUser(t, db)

	s1 := testutil.TestSubscription(t, db, u1.ID, "basic", 8)
	s1.Amount = 499
	require.NoError(t, db.Save(s1).Error)
	s2 := testutil.TestSubscription(t, db, u2.ID, "premium", 30)
	s2.Amount = 2499
	require.NoError(t, db.Save(s2).Error)
	testutil.TestSubscription(t, db, u3.ID, "free", 1)

	summary, err := svc.SalesSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, float64(2998), summary.TotalRevenue)
	assert.Equal(t, int64(2), summary.PaidUsers)
	assert.Len(t, summary.ByPlan, 2)
}

func TestAnalyticsService_UserSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupAnalyticsService(t, db)

	testutil.TestUser(t, db)
	testutil.TestUser(t, db)
	testutil.TestUser(t, db, testutil.WithUnverified("code", time.Now().Add(time.Hour)))

	summary, err := svc.UserSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.TotalUsers)
	assert.Equal(t, int64(2), summary.VerifiedUsers)
	assert.Equal(t, int64(3), summary.NewLast30Days)
}

func TestAnalyticsService_ContentSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupAnalyticsService(t, db)
	user := testutil.TestUser(t, db)

	testutil.TestContent(t, db, user.ID, testutil.WithContentType("essays"))
	testutil.TestContent(t, db, user.ID, testutil.WithContentType("essays"))
	testutil.TestContent(t, db, user.ID, testutil.WithContentType("research_paper"))

	summary, err := svc.ContentSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.TotalContents)
	require.Len(t, summary.ByType, 2)
}
