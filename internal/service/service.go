package service

import (
	"go.uber.org/zap"

	"github.com/pepab0t/labs/config"
	"github.com/pepab0t/labs/internal/repository"
)

// Service aggregates all services. This is the boundary the presentation
// layer consumes; identity is always passed in explicitly, no authentication
// happens here.
type Service struct {
	Topic       TopicService
	Event       EventService
	Application ApplicationService
	User        UserService
	Export      ExportService
}

// NewService creates the Service aggregate.
func NewService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *Service {
	return &Service{
		Topic:       NewTopicService(repo, logger),
		Event:       NewEventService(repo, logger),
		Application: NewApplicationService(cfg, repo, logger),
		User:        NewUserService(cfg, repo, logger),
		Export:      NewExportService(repo, logger),
	}
}
