package service

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/config"
	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/repository"
)

var (
	ErrKnowledgeNotFound = errors.New("知识库条目不存在")
	ErrEmptyKnowledge    = errors.New("正文和文件至少填写一项")
	ErrSubjectRequired   = errors.New("非通用条目必须选择科目")
	ErrFileTooLarge      = errors.New("文件大小超过限制")
	ErrExtNotAllowed     = errors.New("不支持的文件扩展名")
)

// FileStore 知识库文件存储（OSS 客户端实现）
type FileStore interface {
	UploadKnowledgeFile(data []byte, ext string) (string, error)
	Delete(objectKey string) error
	ExtractObjectKey(url string) string
}

type KnowledgeService struct {
	knowledgeRepo *repository.KnowledgeRepository
	subjectRepo   *repository.SubjectRepository
	fileStore     FileStore
	parser        *ParserService
	cfg           *config.UploadConfig
}

func NewKnowledgeService(
	knowledgeRepo *repository.KnowledgeRepository,
	subjectRepo *repository.SubjectRepository,
	fileStore FileStore,
	parser *ParserService,
	cfg *config.UploadConfig,
) *KnowledgeService {
	return &KnowledgeService{
		knowledgeRepo: knowledgeRepo,
		subjectRepo:   subjectRepo,
		fileStore:     fileStore,
		parser:        parser,
		cfg:           cfg,
	}
}

// Save 创建知识库条目。通用条目忽略科目，其余必须绑定已存在的科目。
func (s *KnowledgeService) Save(req *dto.SaveKnowledgeRequest) (*dto.KnowledgeInfo, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	entry := &model.KnowledgeEntry{
		Content:  req.Content,
		IsCommon: req.IsCommon,
		FileURL:  req.FileURL,
		FileType: req.FileType,
	}
	if !req.IsCommon {
		entry.SubjectID = req.SubjectID
	}

	if err := s.knowledgeRepo.Create(entry); err != nil {
		return nil, err
	}

	return s.buildInfo(entry), nil
}

// Update 更新知识库条目
func (s *KnowledgeService) Update(id int64, req *dto.SaveKnowledgeRequest) (*dto.KnowledgeInfo, error) {
	entry, err := s.getEntry(id)
	if err != nil {
		return nil, err
	}

	if err := s.validate(req); err != nil {
		return nil, err
	}

	entry.Content = req.Content
	entry.IsCommon = req.IsCommon
	entry.FileURL = req.FileURL
	entry.FileType = req.FileType
	if req.IsCommon {
		entry.SubjectID = nil
	} else {
		entry.SubjectID = req.SubjectID
	}

	if err := s.knowledgeRepo.Update(entry); err != nil {
		return nil, err
	}

	// Save 不会刷新 Preload 的关联，重新读一次
	entry, err = s.getEntry(id)
	if err != nil {
		return nil, err
	}
	return s.buildInfo(entry), nil
}

// List 列出条目，新的在前。支持正文/科目名子串搜索、按科目过滤，
// subject 传 "common" 时只看通用条目。
func (s *KnowledgeService) List(filter *dto.KnowledgeFilter) ([]*dto.KnowledgeInfo, error) {
	entries, err := s.knowledgeRepo.List()
	if err != nil {
		return nil, err
	}

	infos := make([]*dto.KnowledgeInfo, 0, len(entries))
	for _, entry := range entries {
		info := s.buildInfo(entry)
		if filter != nil && !matchKnowledgeFilter(info, filter) {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func matchKnowledgeFilter(info *dto.KnowledgeInfo, filter *dto.KnowledgeFilter) bool {
	if filter.CommonOnly && !info.IsCommon {
		return false
	}
	if filter.SubjectID != nil {
		if info.SubjectID == nil || *info.SubjectID != *filter.SubjectID {
			return false
		}
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(info.Content), q) &&
			!strings.Contains(strings.ToLower(info.SubjectName), q) {
			return false
		}
	}
	return true
}

// Get 获取单个条目
func (s *KnowledgeService) Get(id int64) (*dto.KnowledgeInfo, error) {
	entry, err := s.getEntry(id)
	if err != nil {
		return nil, err
	}
	return s.buildInfo(entry), nil
}

// Delete 删除条目，关联文件尽力删除（失败只记日志）
func (s *KnowledgeService) Delete(id int64) error {
	entry, err := s.getEntry(id)
	if err != nil {
		return err
	}

	if err := s.knowledgeRepo.Delete(id); err != nil {
		return err
	}

	if entry.FileURL != "" && s.fileStore != nil {
		objectKey := s.fileStore.ExtractObjectKey(entry.FileURL)
		if err := s.fileStore.Delete(objectKey); err != nil {
			log.Printf("Failed to delete knowledge file %s: %v", objectKey, err)
		}
	}
	return nil
}

// Upload 上传知识库文件并尝试抽取文本预填正文。
// 解析失败不影响上传结果，错误随响应返回。
func (s *KnowledgeService) Upload(ctx context.Context, filename string, data []byte) (*dto.UploadFileResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if err := s.checkUpload(ext, int64(len(data))); err != nil {
		return nil, err
	}

	fileURL, err := s.fileStore.UploadKnowledgeFile(data, ext)
	if err != nil {
		return nil, err
	}

	resp := &dto.UploadFileResponse{
		FileURL:  fileURL,
		FileType: strings.TrimPrefix(ext, "."),
	}

	if s.parser != nil {
		text, err := s.parser.ParseData(ctx, filename, "", data)
		if err != nil {
			resp.ParseError = err.Error()
		} else {
			resp.ExtractedText = text
		}
	}

	return resp, nil
}

// ParseDocument 解析已上传的文档
func (s *KnowledgeService) ParseDocument(ctx context.Context, req *dto.ParseDocumentRequest) (*dto.ParseDocumentResponse, error) {
	text, err := s.parser.ParseDocument(ctx, req.FileURL, req.FileType)
	if err != nil {
		return nil, err
	}
	return &dto.ParseDocumentResponse{ExtractedText: text}, nil
}

func (s *KnowledgeService) validate(req *dto.SaveKnowledgeRequest) error {
	if strings.TrimSpace(req.Content) == "" && req.FileURL == "" {
		return ErrEmptyKnowledge
	}

	if !req.IsCommon {
		if req.SubjectID == nil {
			return ErrSubjectRequired
		}
		if _, err := s.subjectRepo.GetByID(*req.SubjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubjectNotFound
			}
			return err
		}
	}
	return nil
}

func (s *KnowledgeService) checkUpload(ext string, size int64) error {
	if s.cfg.MaxSize > 0 && size > s.cfg.MaxSize {
		return ErrFileTooLarge
	}

	for _, allowed := range s.cfg.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return ErrExtNotAllowed
}

func (s *KnowledgeService) getEntry(id int64) (*model.KnowledgeEntry, error) {
	entry, err := s.knowledgeRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKnowledgeNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *KnowledgeService) buildInfo(entry *model.KnowledgeEntry) *dto.KnowledgeInfo {
	info := &dto.KnowledgeInfo{
		ID:        entry.ID,
		SubjectID: entry.SubjectID,
		Content:   entry.Content,
		IsCommon:  entry.IsCommon,
		FileURL:   entry.FileURL,
		FileType:  entry.FileType,
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
	}

	// 通用条目有固定展示名；科目被删后兜底为 Unknown
	switch {
	case entry.IsCommon:
		info.SubjectName = "Common Knowledge Base"
	case entry.Subject != nil:
		info.SubjectName = entry.Subject.Name
	default:
		info.SubjectName = "Unknown"
	}

	return info
}
