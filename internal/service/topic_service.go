package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pepab0t/labs/internal/dto"
	"github.com/pepab0t/labs/internal/model"
	"github.com/pepab0t/labs/internal/repository"
)

// ── Topic module errors ──

var (
	ErrTopicNotFound   = errors.New("topic does not exist")
	ErrTopicTitleEmpty = errors.New("topic title must contain at least one word")
	ErrTopicTitleTaken = errors.New("topic title already exists")
)

// TopicService is the lab topic business interface.
type TopicService interface {
	Create(ctx context.Context, req *dto.CreateTopicRequest, callerID string) (*dto.TopicResponse, error)
	Rename(ctx context.Context, id string, req *dto.RenameTopicRequest) (*dto.TopicResponse, error)
	// Delete removes the topic and every ledger slot referencing it.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]dto.TopicResponse, error)
}

type topicService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTopicService creates a TopicService instance.
func NewTopicService(repo *repository.Repository, logger *zap.Logger) TopicService {
	return &topicService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *topicService) Create(ctx context.Context, req *dto.CreateTopicRequest, callerID string) (*dto.TopicResponse, error) {
	title, err := s.validateTitle(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	topic := &model.Topic{
		Title:       title,
		CreatedByID: &callerID,
	}
	if err := s.repo.Topic.Create(ctx, topic); err != nil {
		s.logger.Error("create topic failed", zap.Error(err))
		return nil, err
	}

	// reload to pick up the creator association
	created, err := s.repo.Topic.GetByID(ctx, topic.TopicID)
	if err != nil {
		return nil, err
	}

	return s.toTopicResponse(created), nil
}

// ────────────────────── Rename ──────────────────────

func (s *topicService) Rename(ctx context.Context, id string, req *dto.RenameTopicRequest) (*dto.TopicResponse, error) {
	topic, err := s.repo.Topic.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("load topic failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if strings.TrimSpace(req.Title) == topic.Title {
		return s.toTopicResponse(topic), nil
	}
	title, err := s.validateTitle(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	topic.Title = title
	if err := s.repo.Topic.Update(ctx, topic); err != nil {
		s.logger.Error("rename topic failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toTopicResponse(topic), nil
}

// ────────────────────── Delete ──────────────────────

func (s *topicService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Topic.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTopicNotFound
		}
		s.logger.Error("load topic failed", zap.String("id", id), zap.Error(err))
		return err
	}

	// cascade to ledger slots in one transaction so a partial delete cannot
	// leave orphaned rows
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Slot.DeleteByTopic(ctx, id); err != nil {
			return fmt.Errorf("delete topic slots: %w", err)
		}
		if err := txRepo.Topic.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete topic: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("delete topic failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── List ──────────────────────

func (s *topicService) List(ctx context.Context) ([]dto.TopicResponse, error) {
	topics, err := s.repo.Topic.List(ctx)
	if err != nil {
		s.logger.Error("list topics failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TopicResponse, 0, len(topics))
	for i := range topics {
		result = append(result, *s.toTopicResponse(&topics[i]))
	}
	return result, nil
}

// ── internal helpers ──

// validateTitle trims the title, requires at least one word and a free title.
func (s *topicService) validateTitle(ctx context.Context, raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if len(strings.Fields(title)) == 0 {
		return "", ErrTopicTitleEmpty
	}

	_, err := s.repo.Topic.GetByTitle(ctx, title)
	if err == nil {
		return "", ErrTopicTitleTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return title, nil
}

func (s *topicService) toTopicResponse(topic *model.Topic) *dto.TopicResponse {
	resp := &dto.TopicResponse{
		ID:    topic.TopicID,
		Title: topic.Title,
	}
	if topic.CreatedBy != nil {
		resp.CreatedBy = topic.CreatedBy.Email
	}
	return resp
}
