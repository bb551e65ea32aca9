package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pepab0t/labs/config"
	"github.com/pepab0t/labs/internal/dto"
	"github.com/pepab0t/labs/internal/model"
	"github.com/pepab0t/labs/internal/repository"
	"github.com/pepab0t/labs/pkg/timefmt"
)

// ── User module errors ──

var (
	ErrUserNotFound       = errors.New("user does not exist")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserCancelled      = errors.New("registration was already rejected")
	ErrUserApproved       = errors.New("registration was already approved")
	ErrInvalidCredentials = errors.New("wrong email or password")
)

// UserService manages portal accounts. Accounts start unapproved; staff
// approves or cancels them and both decisions are terminal. Sessions and
// authorization live entirely outside this module.
type UserService interface {
	Register(ctx context.Context, req *dto.RegisterUserRequest) (*dto.UserResponse, error)
	Approve(ctx context.Context, userID string) (*dto.UserResponse, error)
	Cancel(ctx context.Context, userID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, userID string) (*dto.UserResponse, error)
	// ListPending returns the oldest unapproved registrations, limited by
	// the configured page size.
	ListPending(ctx context.Context) ([]dto.UserResponse, error)
	// VerifyPassword checks credentials for the presentation layer and
	// returns the account, approved or not.
	VerifyPassword(ctx context.Context, email, password string) (*dto.UserResponse, error)
}

type userService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates a UserService instance.
func NewUserService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── Register ──────────────────────

func (s *userService) Register(ctx context.Context, req *dto.RegisterUserRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("load user failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hash),
		Approved:     false,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("create user failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.UserID))
	return s.toUserResponse(user), nil
}

// ────────────────────── Approve / Cancel ──────────────────────

func (s *userService) Approve(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Cancelled {
		return nil, ErrUserCancelled
	}
	if user.Approved {
		return s.toUserResponse(user), nil
	}

	user.Approved = true
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("approve user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user approved", zap.String("user_id", userID))
	return s.toUserResponse(user), nil
}

func (s *userService) Cancel(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Approved {
		return nil, ErrUserApproved
	}
	if user.Cancelled {
		return s.toUserResponse(user), nil
	}

	user.Cancelled = true
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("cancel user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user registration rejected", zap.String("user_id", userID))
	return s.toUserResponse(user), nil
}

// ────────────────────── GetByID / ListPending ──────────────────────

func (s *userService) GetByID(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toUserResponse(user), nil
}

func (s *userService) ListPending(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.ListPending(ctx, s.cfg.Labs.PendingPageSize)
	if err != nil {
		s.logger.Error("list pending users failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *s.toUserResponse(&users[i]))
	}
	return result, nil
}

// ────────────────────── VerifyPassword ──────────────────────

func (s *userService) VerifyPassword(ctx context.Context, email, password string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.toUserResponse(user), nil
}

// ── internal helpers ──

func (s *userService) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *userService) toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:         user.UserID,
		Email:      user.Email,
		FullName:   user.FullName,
		Approved:   user.Approved,
		Cancelled:  user.Cancelled,
		IsStaff:    user.IsStaff,
		DateJoined: timefmt.Display(user.CreatedAt),
	}
}
