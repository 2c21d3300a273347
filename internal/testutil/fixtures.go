package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:      fmt.Sprintf("testuser_%d", time.Now().UnixNano()%1000000),
		Email:         &email,
		PasswordHash:  &passwordHash,
		Role:          model.RoleUser,
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithUnverified 设置为未验证并指定验证码
func WithUnverified(code string, expiresAt time.Time) func(*model.User) {
	return func(u *model.User) {
		u.EmailVerified = false
		u.VerificationCode = &code
		u.VerificationExpiresAt = &expiresAt
	}
}

// TestSubject 创建测试科目
func TestSubject(t *testing.T, db *gorm.DB, name string) *model.Subject {
	t.Helper()

	subject := &model.Subject{Name: name}
	if err := db.Create(subject).Error; err != nil {
		t.Fatalf("Failed to create test subject: %v", err)
	}

	return subject
}

// TestKnowledge 创建测试知识库条目
func TestKnowledge(t *testing.T, db *gorm.DB, opts ...func(*model.KnowledgeEntry)) *model.KnowledgeEntry {
	t.Helper()

	entry := &model.KnowledgeEntry{
		Content: fmt.Sprintf("Test knowledge %d", time.Now().UnixNano()%1000000),
	}

	for _, opt := range opts {
		opt(entry)
	}

	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("Failed to create test knowledge entry: %v", err)
	}

	return entry
}

// WithSubjectID 绑定科目
func WithSubjectID(subjectID int64) func(*model.KnowledgeEntry) {
	return func(e *model.KnowledgeEntry) {
		e.SubjectID = &subjectID
	}
}

// WithCommon 设置为通用条目
func WithCommon() func(*model.KnowledgeEntry) {
	return func(e *model.KnowledgeEntry) {
		e.IsCommon = true
		e.SubjectID = nil
	}
}

// WithContent 设置正文
func WithContent(content string) func(*model.KnowledgeEntry) {
	return func(e *model.KnowledgeEntry) {
		e.Content = content
	}
}

// WithFile 设置关联文件
func WithFile(fileURL, fileType string) func(*model.KnowledgeEntry) {
	return func(e *model.KnowledgeEntry) {
		e.FileURL = fileURL
		e.FileType = fileType
	}
}

// TestSubscription 创建测试订阅
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, planName string, credits int) *model.Subscription {
	t.Helper()

	sub := &model.Subscription{
		UserID:           userID,
		PlanID:           fmt.Sprintf("plan_%s", planName),
		PlanName:         planName,
		CreditsRemaining: credits,
		Status:           "active",
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// TestContent 创建测试生成记录
func TestContent(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.GeneratedContent)) *model.GeneratedContent {
	t.Helper()

	content := &model.GeneratedContent{
		UserID:          userID,
		ContentType:     "essays",
		Subject:         "Mathematics",
		Topic:           "Test topic",
		WordCountOption: model.WordCountShort,
		TargetWordCount: 500,
		GeneratedText:   "Generated test content.",
	}

	for _, opt := range opts {
		opt(content)
	}

	if err := db.Create(content).Error; err != nil {
		t.Fatalf("Failed to create test content: %v", err)
	}

	return content
}

// WithContentType 设置内容类型
func WithContentType(contentType string) func(*model.GeneratedContent) {
	return func(c *model.GeneratedContent) {
		c.ContentType = contentType
	}
}

// WithTopic 设置主题
func WithTopic(topic string) func(*model.GeneratedContent) {
	return func(c *model.GeneratedContent) {
		c.Topic = topic
	}
}

// WithGeneratedText 设置正文
func WithGeneratedText(text string) func(*model.GeneratedContent) {
	return func(c *model.GeneratedContent) {
		c.GeneratedText = text
	}
}

// TestAccessCode 创建测试访问码
func TestAccessCode(t *testing.T, db *gorm.DB, code string) *model.AdminAccessCode {
	t.Helper()

	accessCode := &model.AdminAccessCode{Code: code}
	if err := db.Create(accessCode).Error; err != nil {
		t.Fatalf("Failed to create test access code: %v", err)
	}

	return accessCode
}
