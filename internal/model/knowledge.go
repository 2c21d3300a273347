package model

import (
	"time"
)

// KnowledgeEntry 知识库条目。is_common=true 时对所有生成生效，
// subject_id 被忽略；否则必须绑定一个科目。
type KnowledgeEntry struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	SubjectID *int64    `gorm:"index" json:"subject_id,omitempty"`
	Content   string    `gorm:"type:text" json:"content"`
	IsCommon  bool      `gorm:"default:false;index" json:"is_common"`
	FileURL   string    `gorm:"size:500" json:"file_url,omitempty"`
	FileType  string    `gorm:"size:100" json:"file_type,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

func (KnowledgeEntry) TableName() string {
	return "knowledge_base"
}
