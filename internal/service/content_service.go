package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/repository"
)

var ErrContentNotFound = errors.New("生成记录不存在")

// 列表预览截断长度
const previewLength = 200

// markdown 清理规则，下载导出时使用
var (
	headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldRe    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe  = regexp.MustCompile(`\*(.*?)\*`)
	boldAltRe = regexp.MustCompile(`__(.*?)__`)
)

type ContentService struct {
	contentRepo *repository.ContentRepository
}

func NewContentService(contentRepo *repository.ContentRepository) *ContentService {
	return &ContentService{contentRepo: contentRepo}
}

// List 用户的生成历史，分页、新的在前、正文截断
func (s *ContentService) List(userID int64, page, pageSize int) ([]*dto.ContentListItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	contents, total, err := s.contentRepo.ListByUserID(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ContentListItem, 0, len(contents))
	for _, content := range contents {
		items = append(items, &dto.ContentListItem{
			ID:              content.ID,
			ContentType:     content.ContentType,
			Subject:         content.Subject,
			Topic:           content.Topic,
			WordCountOption: content.WordCountOption,
			TargetWordCount: content.TargetWordCount,
			Preview:         truncate(content.GeneratedText, previewLength),
			CreatedAt:       content.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, total, nil
}

// Get 获取单条记录，只能看自己的
func (s *ContentService) Get(userID, contentID int64) (*dto.ContentDetail, error) {
	content, err := s.getOwned(userID, contentID)
	if err != nil {
		return nil, err
	}

	return &dto.ContentDetail{
		ID:              content.ID,
		ContentType:     content.ContentType,
		Subject:         content.Subject,
		Topic:           content.Topic,
		WordCountOption: content.WordCountOption,
		TargetWordCount: content.TargetWordCount,
		GeneratedText:   content.GeneratedText,
		CreatedAt:       content.CreatedAt.Format(time.RFC3339),
	}, nil
}

// Download 导出纯文本，markdown 标记清理后返回文件名和正文
func (s *ContentService) Download(userID, contentID int64) (string, string, error) {
	content, err := s.getOwned(userID, contentID)
	if err != nil {
		return "", "", err
	}

	filename := fmt.Sprintf("%s_%s.txt", content.ContentType, sanitizeFilename(content.Topic))
	return filename, StripMarkdown(content.GeneratedText), nil
}

// sanitizeFilename 主题转为安全的文件名片段
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "content"
	}
	var sb strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "content"
	}
	return sb.String()
}

// StripMarkdown 去掉标题、加粗、斜体标记，保留正文
func StripMarkdown(text string) string {
	text = headingRe.ReplaceAllString(text, "")
	text = boldRe.ReplaceAllString(text, "$1")
	text = boldAltRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	return text
}

func (s *ContentService) getOwned(userID, contentID int64) (*model.GeneratedContent, error) {
	content, err := s.contentRepo.GetByID(contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	// 不暴露他人记录的存在性
	if content.UserID != userID {
		return nil, ErrContentNotFound
	}
	return content, nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
