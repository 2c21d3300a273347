package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/repository"
	"github.com/mihintamu/scholarai-server/internal/testutil"
)

func setupSubscriptionService(t *testing.T, db *gorm.DB) *SubscriptionService {
	t.Helper()

	subRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	return NewSubscriptionService(subRepo, userRepo, nil, testPlansConfig())
}

func TestSubscriptionService_GetSubscription_AutoCreateFree(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupSubscriptionService(t, db)
	user := testutil.TestUser(t, db)

	// 没有订阅行时自动补 free
	sub, err := svc.GetSubscription(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", sub.PlanName)
	assert.Equal(t, 1, sub.CreditsRemaining)

	// 再次读取返回同一行
	again, err := svc.GetSubscription(user.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
}

func TestSubscriptionService_CheckCredits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupSubscriptionService(t, db)

	// 有积分通过
	u1 := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, u1.ID, "basic", 3)
	sub, err := svc.CheckCredits(u1.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.CreditsRemaining)

	// free 用尽返回专门错误
	u2 := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, u2.ID, "free", 0)
	_, err = svc.CheckCredits(u2.ID)
	assert.ErrorIs(t, err, ErrFreePlanLimit)

	// 付费套餐用尽返回积分不足
	u3 := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, u3.ID, "premium", 0)
	_, err = svc.CheckCredits(u3.ID)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
}

func TestSubscriptionService_ConfirmPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupSubscriptionService(t, db)
	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID, "free", 0)

	info, err := svc.ConfirmPayment(user.ID, &dto.ConfirmPaymentRequest{
		PlanName:  "premium",
		PaymentID: "pay_abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, "premium", info.PlanName)
	assert.Equal(t, 30, info.CreditsRemaining)
	assert.Equal(t, "active", info.Status)
}

func TestSubscriptionService_ConfirmPayment_InvalidPlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupSubscriptionService(t, db)
	user := testutil.TestUser(t, db)

	_, err := svc.ConfirmPayment(user.ID, &dto.ConfirmPaymentRequest{
		PlanName:  "enterprise",
		PaymentID: "pay_abc123",
	})
	assert.ErrorIs(t, err, ErrUnknownPlan)

	_, err = svc.ConfirmPayment(user.ID, &dto.ConfirmPaymentRequest{
		PlanName:  "free",
		PaymentID: "pay_abc123",
	})
	assert.ErrorIs(t, err, ErrFreePlanNotPayable)
}

func TestSubscriptionService_ListPlans(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupSubscriptionService(t, db)

	plans := svc.ListPlans()
	require.Len(t, plans, 3)

	// 按价格升序
	assert.Equal(t, "free", plans[0].Name)
	assert.Equal(t, "basic", plans[1].Name)
	assert.Equal(t, "premium", plans[2].Name)
	assert.Equal(t, 30, plans[2].Credits)
}
