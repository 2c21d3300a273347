package repository

import (
	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/model"
)

type AccessCodeRepository struct {
	db *gorm.DB
}

func NewAccessCodeRepository(db *gorm.DB) *AccessCodeRepository {
	return &AccessCodeRepository{db: db}
}

func (r *AccessCodeRepository) Create(code *model.AdminAccessCode) error {
	return r.db.Create(code).Error
}

// Exists 访问码是否有效（逐字比对）
func (r *AccessCodeRepository) Exists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&model.AdminAccessCode{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}
