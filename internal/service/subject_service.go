package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/repository"
)

var (
	ErrEmptySubjectName  = errors.New("科目名称不能为空")
	ErrSubjectExists     = errors.New("科目名称已存在")
	ErrSubjectNotFound   = errors.New("科目不存在")
	ErrSubjectReferenced = errors.New("科目下还有知识库条目，无法删除")
)

type SubjectService struct {
	subjectRepo   *repository.SubjectRepository
	knowledgeRepo *repository.KnowledgeRepository
}

func NewSubjectService(subjectRepo *repository.SubjectRepository, knowledgeRepo *repository.KnowledgeRepository) *SubjectService {
	return &SubjectService{
		subjectRepo:   subjectRepo,
		knowledgeRepo: knowledgeRepo,
	}
}

// Create 创建科目，名称全局唯一，首尾空白去除
func (s *SubjectService) Create(req *dto.CreateSubjectRequest) (*dto.SubjectInfo, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptySubjectName
	}

	exists, err := s.subjectRepo.ExistsByName(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSubjectExists
	}

	subject := &model.Subject{Name: name}
	if err := s.subjectRepo.Create(subject); err != nil {
		return nil, err
	}

	return buildSubjectInfo(subject), nil
}

// List 按名称排序列出全部科目
func (s *SubjectService) List() ([]*dto.SubjectInfo, error) {
	subjects, err := s.subjectRepo.List()
	if err != nil {
		return nil, err
	}

	infos := make([]*dto.SubjectInfo, 0, len(subjects))
	for _, subject := range subjects {
		infos = append(infos, buildSubjectInfo(subject))
	}
	return infos, nil
}

// GetByID 根据 ID 获取科目
func (s *SubjectService) GetByID(id int64) (*model.Subject, error) {
	subject, err := s.subjectRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	return subject, nil
}

// Delete 删除科目。仍被知识库条目引用时拒绝删除。
func (s *SubjectService) Delete(id int64) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}

	count, err := s.knowledgeRepo.CountBySubjectID(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSubjectReferenced
	}

	return s.subjectRepo.Delete(id)
}

func buildSubjectInfo(subject *model.Subject) *dto.SubjectInfo {
	return &dto.SubjectInfo{
		ID:        subject.ID,
		Name:      subject.Name,
		CreatedAt: subject.CreatedAt.Format(time.RFC3339),
	}
}
