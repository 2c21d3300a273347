package dto

// SaveKnowledgeRequest 创建/更新知识库条目请求。
// 校验策略：content 和 file_url 至少有一个；非通用条目必须选科目。
type SaveKnowledgeRequest struct {
	SubjectID *int64 `json:"subject_id,omitempty"`
	Content   string `json:"content"`
	IsCommon  bool   `json:"is_common"`
	FileURL   string `json:"file_url,omitempty"`
	FileType  string `json:"file_type,omitempty"`
}

// KnowledgeInfo 知识库条目信息，subject_name 为解析后的展示名
type KnowledgeInfo struct {
	ID          int64  `json:"id"`
	SubjectID   *int64 `json:"subject_id,omitempty"`
	SubjectName string `json:"subject_name"`
	Content     string `json:"content"`
	IsCommon    bool   `json:"is_common"`
	FileURL     string `json:"file_url,omitempty"`
	FileType    string `json:"file_type,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// KnowledgeFilter 知识库列表过滤条件
type KnowledgeFilter struct {
	Query      string
	SubjectID  *int64
	CommonOnly bool
}

// ParseDocumentRequest 文档解析请求
type ParseDocumentRequest struct {
	FileURL  string `json:"file_url" binding:"required"`
	FileType string `json:"file_type" binding:"required"`
}

// ParseDocumentResponse 文档解析响应
type ParseDocumentResponse struct {
	ExtractedText string `json:"extracted_text"`
}

// UploadFileResponse 文件上传响应，extracted_text 用于前端预填 content
type UploadFileResponse struct {
	FileURL       string `json:"file_url"`
	FileType      string `json:"file_type"`
	ExtractedText string `json:"extracted_text,omitempty"`
	ParseError    string `json:"parse_error,omitempty"`
}
