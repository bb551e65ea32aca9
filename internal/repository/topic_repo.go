package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/pepab0t/labs/internal/model"
)

// TopicRepository is the lab topic data access interface.
type TopicRepository interface {
	Create(ctx context.Context, topic *model.Topic) error
	GetByID(ctx context.Context, id string) (*model.Topic, error)
	// GetByTitle does a case-sensitive exact match, mirroring the unique index.
	GetByTitle(ctx context.Context, title string) (*model.Topic, error)
	List(ctx context.Context) ([]model.Topic, error)
	Update(ctx context.Context, topic *model.Topic) error
	Delete(ctx context.Context, id string) error
}

type topicRepo struct {
	db *gorm.DB
}

// NewTopicRepo creates a TopicRepository instance.
func NewTopicRepo(db *gorm.DB) TopicRepository {
	return &topicRepo{db: db}
}

func (r *topicRepo) Create(ctx context.Context, topic *model.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepo) GetByID(ctx context.Context, id string) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Where("topic_id = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) GetByTitle(ctx context.Context, title string) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).
		Where("title = ?", title).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) List(ctx context.Context) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Order("title ASC").
		Find(&topics).Error
	return topics, err
}

func (r *topicRepo) Update(ctx context.Context, topic *model.Topic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

func (r *topicRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("topic_id = ?", id).
		Delete(&model.Topic{}).Error
}
