package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihintamu/scholarai-server/internal/testutil"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db, testutil.WithUsername("alice"), testutil.WithEmail("alice@example.com"))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserRepository_Exists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	testutil.TestUser(t, db, testutil.WithUsername("bob"), testutil.WithEmail("bob@example.com"))

	exists, err := repo.ExistsByEmail("bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByUsername("bob")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_DeleteExpiredUnverified(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	// 已过期未验证，应被删除
	expired := testutil.TestUser(t, db, testutil.WithUnverified("code1", time.Now().Add(-time.Hour)))
	// 未过期未验证，保留
	pending := testutil.TestUser(t, db, testutil.WithUnverified("code2", time.Now().Add(time.Hour)))
	// 已验证，保留
	verified := testutil.TestUser(t, db)

	deleted, err := repo.DeleteExpiredUnverified()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByID(expired.ID)
	assert.Error(t, err)

	_, err = repo.GetByID(pending.ID)
	assert.NoError(t, err)

	_, err = repo.GetByID(verified.ID)
	assert.NoError(t, err)
}

func TestUserRepository_Counts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	testutil.TestUser(t, db)
	testutil.TestUser(t, db)
	testutil.TestUser(t, db, testutil.WithUnverified("code", time.Now().Add(time.Hour)))

	total, err := repo.CountAll()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	verified, err := repo.CountVerified()
	require.NoError(t, err)
	assert.Equal(t, int64(2), verified)

	recent, err := repo.CountCreatedSince(30)
	require.NoError(t, err)
	assert.Equal(t, int64(3), recent)
}

func TestUserRepository_GetByVerificationCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db, testutil.WithUnverified("secret-code", time.Now().Add(time.Hour)))

	got, err := repo.GetByVerificationCode("secret-code")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByVerificationCode("wrong-code")
	assert.Error(t, err)
}
