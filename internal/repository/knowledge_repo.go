package repository

import (
	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/model"
)

type KnowledgeRepository struct {
	db *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

func (r *KnowledgeRepository) Create(entry *model.KnowledgeEntry) error {
	return r.db.Create(entry).Error
}

func (r *KnowledgeRepository) GetByID(id int64) (*model.KnowledgeEntry, error) {
	var entry model.KnowledgeEntry
	err := r.db.Preload("Subject").Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List 返回所有条目，带科目关联，新的在前
func (r *KnowledgeRepository) List() ([]*model.KnowledgeEntry, error) {
	var entries []*model.KnowledgeEntry
	err := r.db.Preload("Subject").Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *KnowledgeRepository) Update(entry *model.KnowledgeEntry) error {
	return r.db.Save(entry).Error
}

func (r *KnowledgeRepository) Delete(id int64) error {
	return r.db.Delete(&model.KnowledgeEntry{}, id).Error
}

// CountBySubjectID 引用指定科目的条目数（通用条目不计入）
func (r *KnowledgeRepository) CountBySubjectID(subjectID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.KnowledgeEntry{}).
		Where("subject_id = ? AND is_common = ?", subjectID, false).
		Count(&count).Error
	return count, err
}

// ListForGeneration 生成上下文用：先通用条目，再指定科目的条目
func (r *KnowledgeRepository) ListForGeneration(subjectID int64) ([]*model.KnowledgeEntry, error) {
	var common []*model.KnowledgeEntry
	if err := r.db.Where("is_common = ?", true).Order("created_at ASC").Find(&common).Error; err != nil {
		return nil, err
	}

	var scoped []*model.KnowledgeEntry
	err := r.db.Where("subject_id = ? AND is_common = ?", subjectID, false).
		Order("created_at ASC").Find(&scoped).Error
	if err != nil {
		return nil, err
	}

	return append(common, scoped...), nil
}
