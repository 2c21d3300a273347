package dto

// GenerateContentRequest 内容生成请求
type GenerateContentRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	SubjectID   int64  `json:"subject_id" binding:"required"`
	Topic       string `json:"topic" binding:"required,max=200"`
	WordCount   int    `json:"word_count" binding:"required"`
}

// GenerateContentResponse 内容生成响应
type GenerateContentResponse struct {
	ContentID        int64  `json:"content_id"`
	GeneratedText    string `json:"generated_text"`
	WordCountOption  string `json:"word_count_option"`
	CreditsRemaining int    `json:"credits_remaining"`
}

// ContentListItem 历史记录列表项，正文截断展示
type ContentListItem struct {
	ID              int64  `json:"id"`
	ContentType     string `json:"content_type"`
	Subject         string `json:"subject"`
	Topic           string `json:"topic"`
	WordCountOption string `json:"word_count_option"`
	TargetWordCount int    `json:"target_word_count"`
	Preview         string `json:"preview"`
	CreatedAt       string `json:"created_at"`
}

// ContentDetail 历史记录详情
type ContentDetail struct {
	ID              int64  `json:"id"`
	ContentType     string `json:"content_type"`
	Subject         string `json:"subject"`
	Topic           string `json:"topic"`
	WordCountOption string `json:"word_count_option"`
	TargetWordCount int    `json:"target_word_count"`
	GeneratedText   string `json:"generated_text"`
	CreatedAt       string `json:"created_at"`
}
