package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates all repositories.
type Repository struct {
	User  UserRepository
	Topic TopicRepository
	Event EventRepository
	Slot  SlotRepository

	db *gorm.DB
}

// NewRepository creates the Repository aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:  NewUserRepo(db),
		Topic: NewTopicRepo(db),
		Event: NewEventRepo(db),
		Slot:  NewSlotRepo(db),
		db:    db,
	}
}

// BeginTx opens a transaction. The caller must Commit or Rollback it.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns a Repository whose repositories run on the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction runs fn inside a store transaction and commits when it returns
// nil. A Repository assembled without a database (in-memory fakes in tests)
// runs fn on itself.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
