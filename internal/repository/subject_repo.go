package repository

import (
	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/model"
)

type SubjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) Create(subject *model.Subject) error {
	return r.db.Create(subject).Error
}

func (r *SubjectRepository) GetByID(id int64) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.Where("id = ?", id).First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// List 按名称排序返回所有科目
func (r *SubjectRepository) List() ([]*model.Subject, error) {
	var subjects []*model.Subject
	err := r.db.Order("name ASC").Find(&subjects).Error
	return subjects, err
}

func (r *SubjectRepository) Delete(id int64) error {
	return r.db.Delete(&model.Subject{}, id).Error
}

func (r *SubjectRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Subject{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}
