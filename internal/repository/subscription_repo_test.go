package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/testutil"
)

func TestSubscriptionRepository_ConsumeCredit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID, "basic", 2)

	// 两次扣减成功
	ok, err := repo.ConsumeCredit(user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumeCredit(user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// 积分归零后扣减失败，不会扣成负数
	ok, err = repo.ConsumeCredit(user.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	sub, err := repo.GetByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sub.CreditsRemaining)
}

func TestSubscriptionRepository_ConsumeCredit_NoSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)

	ok, err := repo.ConsumeCredit(99999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubscriptionRepository_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	original := testutil.TestSubscription(t, db, user.ID, "free", 1)

	// 升级套餐覆盖原有行
	err := repo.Upsert(&model.Subscription{
		UserID:           user.ID,
		PlanID:           "plan_premium",
		PlanName:         "premium",
		CreditsRemaining: 30,
		Amount:           2499,
		PaymentID:        "pay_123",
		Status:           "active",
	})
	require.NoError(t, err)

	sub, err := repo.GetByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, original.ID, sub.ID)
	assert.Equal(t, "premium", sub.PlanName)
	assert.Equal(t, 30, sub.CreditsRemaining)
}

func TestSubscriptionRepository_RevenueByPlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)

	u1 := testutil.TestUser(t, db)
	u2 := testutil.TestUser(t, db)
	u3 := testutil.TestUser(t, db)

	s1 := testutil.TestSubscription(t, db, u1.ID, "basic", 8)
	s1.Amount = 499
	require.NoError(t, db.Save(s1).Error)

	s2 := testutil.TestSubscription(t, db, u2.ID, "basic", 8)
	s2.Amount = 499
	require.NoError(t, db.Save(s2).Error)

	s3 := testutil.TestSubscription(t, db, u3.ID, "premium", 30)
	s3.Amount = 2499
	require.NoError(t, db.Save(s3).Error)

	total, err := repo.SumRevenue()
	require.NoError(t, err)
	assert.InDelta(t, 3497.0, total, 0.01)

	paid, err := repo.CountPaid()
	require.NoError(t, err)
	assert.Equal(t, int64(3), paid)

	rows, err := repo.RevenueByPlan()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "basic", rows[0].PlanName)
	assert.Equal(t, int64(2), rows[0].Count)
	assert.InDelta(t, 998.0, rows[0].Revenue, 0.01)
	assert.Equal(t, "premium", rows[1].PlanName)
}
