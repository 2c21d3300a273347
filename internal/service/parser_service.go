package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mihintamu/scholarai-server/internal/pkg/llm"
)

var ErrUnsupportedFileType = errors.New("不支持的文件类型")

// 抽取文本上限，超出部分截断并追加标记
const (
	maxExtractedChars = 500_000
	truncationMarker  = "\n\n[content truncated]"
)

// Downloader 按 URL 拉取文件内容（OSS 客户端实现）
type Downloader interface {
	ExtractObjectKey(url string) string
	Download(objectKey string) ([]byte, error)
}

// ParserService 从上传的文档中抽取纯文本。
// PDF 和纯文本本地解析，Word/Excel 走大模型抽取。
type ParserService struct {
	downloader Downloader
	extractor  llm.DocumentExtractor
}

func NewParserService(downloader Downloader, extractor llm.DocumentExtractor) *ParserService {
	return &ParserService{
		downloader: downloader,
		extractor:  extractor,
	}
}

// ParseDocument 下载并解析指定 URL 的文档
func (s *ParserService) ParseDocument(ctx context.Context, fileURL, fileType string) (string, error) {
	objectKey := s.downloader.ExtractObjectKey(fileURL)
	data, err := s.downloader.Download(objectKey)
	if err != nil {
		return "", fmt.Errorf("failed to download document: %w", err)
	}

	return s.ParseData(ctx, objectKey, fileType, data)
}

// ParseData 按文件类型分发解析
func (s *ParserService) ParseData(ctx context.Context, filename, fileType string, data []byte) (string, error) {
	var text string
	var err error

	switch {
	case isPDF(fileType, filename):
		text, err = extractPDFText(data)
	case isPlainText(fileType, filename):
		text = string(data)
	case isWordOrExcel(fileType, filename):
		text, err = s.extractor.ExtractText(ctx, filename, data)
	default:
		return "", ErrUnsupportedFileType
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if len(text) > maxExtractedChars {
		text = text[:maxExtractedChars] + truncationMarker
	}
	return text, nil
}

// extractPDFText 逐页抽取 PDF 纯文本
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue // 单页失败不影响其他页
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func isPDF(fileType, filename string) bool {
	return fileType == "application/pdf" || strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func isPlainText(fileType, filename string) bool {
	return strings.HasPrefix(fileType, "text/") || strings.HasSuffix(strings.ToLower(filename), ".txt")
}

func isWordOrExcel(fileType, filename string) bool {
	switch fileType {
	case "application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return true
	}
	lower := strings.ToLower(filename)
	for _, ext := range []string{".doc", ".docx", ".xls", ".xlsx"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
