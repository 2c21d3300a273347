package model

import (
	"time"
)

// 内容类型
var ContentTypes = []string{
	"assignments",
	"reports",
	"research_paper",
	"essays",
	"thesis",
	"presentation",
	"case_studies",
	"book_review",
	"article_reviews",
	"term_papers",
	"exam_notes",
}

// 字数档位
const (
	WordCountShort  = "short"
	WordCountMedium = "medium"
	WordCountLong   = "long"
)

// WordCountOption 目标字数到档位的映射：短 ≤500，中 ≤1000，长 >1000
func WordCountOption(targetWords int) string {
	if targetWords <= 500 {
		return WordCountShort
	}
	if targetWords <= 1000 {
		return WordCountMedium
	}
	return WordCountLong
}

// IsValidContentType 检查内容类型是否合法
func IsValidContentType(contentType string) bool {
	for _, t := range ContentTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// GeneratedContent 生成历史记录，只增不改
type GeneratedContent struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	UserID          int64     `gorm:"not null;index" json:"user_id"`
	ContentType     string    `gorm:"size:50;not null" json:"content_type"`
	Subject         string    `gorm:"size:200;not null" json:"subject"`
	Topic           string    `gorm:"size:200;not null" json:"topic"`
	WordCountOption string    `gorm:"size:20;not null" json:"word_count_option"` // short, medium, long
	TargetWordCount int       `gorm:"not null" json:"target_word_count"`
	GeneratedText   string    `gorm:"type:longtext" json:"generated_text"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

func (GeneratedContent) TableName() string {
	return "generated_contents"
}
