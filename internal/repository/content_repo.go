package repository

import (
	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/model"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) Create(content *model.GeneratedContent) error {
	return r.db.Create(content).Error
}

func (r *ContentRepository) GetByID(id int64) (*model.GeneratedContent, error) {
	var content model.GeneratedContent
	err := r.db.Where("id = ?", id).First(&content).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// ListByUserID 按用户分页查询历史记录，新的在前
func (r *ContentRepository) ListByUserID(userID int64, page, pageSize int) ([]*model.GeneratedContent, int64, error) {
	var total int64
	query := r.db.Model(&model.GeneratedContent{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contents []*model.GeneratedContent
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&contents).Error
	return contents, total, err
}

// CountAll 全部生成记录数
func (r *ContentRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.GeneratedContent{}).Count(&count).Error
	return count, err
}

// CountByType 按内容类型统计
func (r *ContentRepository) CountByType() ([]TypeCount, error) {
	var rows []TypeCount
	err := r.db.Model(&model.GeneratedContent{}).
		Select("content_type, COUNT(*) AS count").
		Group("content_type").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// TypeCount 按类型聚合的结果行
type TypeCount struct {
	ContentType string
	Count       int64
}
