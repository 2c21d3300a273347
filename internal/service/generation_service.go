package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/pkg/llm"
	"github.com/mihintamu/scholarai-server/internal/pkg/pubsub"
	"github.com/mihintamu/scholarai-server/internal/repository"
)

var (
	ErrInvalidContentType = errors.New("不支持的内容类型")
	ErrInvalidWordCount   = errors.New("目标字数必须在 100 到 5000 之间")
	ErrEmptyTopic         = errors.New("主题不能为空")
	ErrGenerationFailed   = errors.New("内容生成失败，请稍后重试")
)

// 目标字数范围
const (
	minWordCount = 100
	maxWordCount = 5000
)

// EventPublisher 生成事件发布接口（Redis 发布者实现）
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *pubsub.GenerationEvent) error
}

type GenerationService struct {
	contentRepo   *repository.ContentRepository
	knowledgeRepo *repository.KnowledgeRepository
	subjectSvc    *SubjectService
	subSvc        *SubscriptionService
	generator     llm.TextGenerator
	publisher     EventPublisher
}

func NewGenerationService(
	contentRepo *repository.ContentRepository,
	knowledgeRepo *repository.KnowledgeRepository,
	subjectSvc *SubjectService,
	subSvc *SubscriptionService,
	generator llm.TextGenerator,
	publisher EventPublisher,
) *GenerationService {
	return &GenerationService{
		contentRepo:   contentRepo,
		knowledgeRepo: knowledgeRepo,
		subjectSvc:    subjectSvc,
		subSvc:        subSvc,
		generator:     generator,
		publisher:     publisher,
	}
}

// Generate 内容生成主流程：校验 → 积分检查 → 组装上下文 → 调用大模型 →
// 保存历史 → 扣减积分。积分检查在调用大模型之前，积分不足时不产生任何调用。
func (s *GenerationService) Generate(ctx context.Context, userID int64, req *dto.GenerateContentRequest) (*dto.GenerateContentResponse, error) {
	if !model.IsValidContentType(req.ContentType) {
		return nil, ErrInvalidContentType
	}
	if req.WordCount < minWordCount || req.WordCount > maxWordCount {
		return nil, ErrInvalidWordCount
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, ErrEmptyTopic
	}

	subject, err := s.subjectSvc.GetByID(req.SubjectID)
	if err != nil {
		return nil, err
	}

	// 积分检查先行，不足时直接失败
	sub, err := s.subSvc.CheckCredits(userID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, &pubsub.GenerationEvent{
		UserID:      userID,
		ContentType: req.ContentType,
		Step:        pubsub.StepGenerating,
	})

	systemPrompt, userPrompt, err := s.buildPrompts(req, subject.Name)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.GenerateText(ctx, systemPrompt, userPrompt)
	if err != nil {
		s.publish(ctx, &pubsub.GenerationEvent{
			UserID:      userID,
			ContentType: req.ContentType,
			Step:        pubsub.StepFailed,
			Error:       err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	s.publish(ctx, &pubsub.GenerationEvent{
		UserID:      userID,
		ContentType: req.ContentType,
		Step:        pubsub.StepSaving,
	})

	content := &model.GeneratedContent{
		UserID:          userID,
		ContentType:     req.ContentType,
		Subject:         subject.Name,
		Topic:           req.Topic,
		WordCountOption: model.WordCountOption(req.WordCount),
		TargetWordCount: req.WordCount,
		GeneratedText:   text,
	}
	if err := s.contentRepo.Create(content); err != nil {
		return nil, err
	}

	// 扣减是尽力而为：内容已经生成并保存，扣减失败只记日志
	remaining := sub.CreditsRemaining
	consumed, err := s.subSvc.TryConsume(userID)
	if err != nil {
		log.Printf("Failed to consume credit for user %d: %v", userID, err)
	} else if !consumed {
		log.Printf("No credit left to consume for user %d (concurrent generation?)", userID)
		remaining = 0
	} else {
		remaining--
	}

	s.publish(ctx, &pubsub.GenerationEvent{
		UserID:      userID,
		ContentID:   content.ID,
		ContentType: req.ContentType,
		Step:        pubsub.StepDone,
	})

	return &dto.GenerateContentResponse{
		ContentID:        content.ID,
		GeneratedText:    text,
		WordCountOption:  content.WordCountOption,
		CreditsRemaining: remaining,
	}, nil
}

// buildPrompts 组装提示词，知识库条目通用在前、科目在后
func (s *GenerationService) buildPrompts(req *dto.GenerateContentRequest, subjectName string) (string, string, error) {
	contentType := strings.ReplaceAll(req.ContentType, "_", " ")

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"You are an expert at writing %s. Create content that is approximately %d words.",
		contentType, req.WordCount,
	))

	entries, err := s.knowledgeRepo.ListForGeneration(req.SubjectID)
	if err != nil {
		return "", "", err
	}
	if len(entries) > 0 {
		sb.WriteString("\n\nUse the following reference material where relevant:\n")
		for _, entry := range entries {
			if strings.TrimSpace(entry.Content) == "" {
				continue
			}
			sb.WriteString("\n---\n")
			sb.WriteString(entry.Content)
		}
	}

	userPrompt := fmt.Sprintf("Subject: %s\nTopic: %s", subjectName, req.Topic)
	return sb.String(), userPrompt, nil
}

func (s *GenerationService) publish(ctx context.Context, event *pubsub.GenerationEvent) {
	if s.publisher == nil {
		return
	}
	// 发布失败不影响主流程
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.publisher.PublishEvent(pubCtx, event); err != nil {
		log.Printf("Failed to publish generation event: %v", err)
	}
}
