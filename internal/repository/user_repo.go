package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByGithubID(githubID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("github_id = ?", githubID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByVerificationCode(code string) (*model.User, error) {
	var user model.User
	err := r.db.Where("verification_code = ?", code).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// DeleteExpiredUnverified 删除验证码已过期且未验证的账号，返回删除数量
func (r *UserRepository) DeleteExpiredUnverified() (int64, error) {
	result := r.db.Where("email_verified = ? AND verification_expires_at IS NOT NULL AND verification_expires_at < ?", false, time.Now()).
		Delete(&model.User{})
	return result.RowsAffected, result.Error
}

// CountAll 用户总数
func (r *UserRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Count(&count).Error
	return count, err
}

// CountVerified 已验证用户数
func (r *UserRepository) CountVerified() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email_verified = ?", true).Count(&count).Error
	return count, err
}

// CountCreatedSince 最近 N 天注册的用户数
func (r *UserRepository) CountCreatedSince(days int) (int64, error) {
	var count int64
	since := time.Now().AddDate(0, 0, -days)
	err := r.db.Model(&model.User{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
