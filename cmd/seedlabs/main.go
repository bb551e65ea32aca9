package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/pepab0t/labs/config"
	"github.com/pepab0t/labs/internal/dto"
	"github.com/pepab0t/labs/internal/repository"
	"github.com/pepab0t/labs/internal/service"
	"github.com/pepab0t/labs/pkg/database"
	applogger "github.com/pepab0t/labs/pkg/logger"
)

// seedlabs provisions a staff account, a set of demo topics and a weekly run
// of lab events so a fresh deployment has something to sign up for.
func main() {
	var (
		configPath    = pflag.String("config", "", "path to the config file")
		weeks         = pflag.Int("weeks", 10, "number of weekly events to create")
		capacity      = pflag.Int("capacity", 5, "capacity of each created event")
		staffEmail    = pflag.String("staff-email", "staff@labs.local", "email of the seeded staff account")
		staffPassword = pflag.String("staff-password", "changeme", "password of the seeded staff account")
		topicTitles   = pflag.StringSlice("topics", []string{"Osciloskop", "Spektrometr", "Mikroskop"}, "topic titles to create")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("obtain sql.DB failed", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, logger)
	ctx := context.Background()

	staffID, err := seedStaff(ctx, repo, svc, *staffEmail, *staffPassword)
	if err != nil {
		logger.Fatal("seed staff account failed", zap.Error(err))
	}
	logger.Info("staff account ready", zap.String("email", *staffEmail))

	topicIDs, err := seedTopics(ctx, svc, staffID, *topicTitles)
	if err != nil {
		logger.Fatal("seed topics failed", zap.Error(err))
	}
	logger.Info("topics ready", zap.Int("count", len(topicIDs)))

	created, err := seedEvents(ctx, svc, staffID, topicIDs, *weeks, *capacity)
	if err != nil {
		logger.Fatal("seed events failed", zap.Error(err))
	}
	logger.Info("seeding complete", zap.Int("events_created", created))
}

func seedStaff(ctx context.Context, repo *repository.Repository, svc *service.Service, email, password string) (string, error) {
	resp, err := svc.User.Register(ctx, &dto.RegisterUserRequest{
		Email:    email,
		FullName: "Labs Staff",
		Password: password,
	})
	if errors.Is(err, service.ErrEmailTaken) {
		existing, verr := svc.User.VerifyPassword(ctx, email, password)
		if verr != nil {
			return "", fmt.Errorf("staff account exists but password does not match: %w", verr)
		}
		return existing.ID, nil
	}
	if err != nil {
		return "", err
	}

	if _, err := svc.User.Approve(ctx, resp.ID); err != nil {
		return "", err
	}
	// the service layer has no staff promotion; flip the flag directly
	user, err := repo.User.GetByID(ctx, resp.ID)
	if err != nil {
		return "", err
	}
	user.IsStaff = true
	if err := repo.User.Update(ctx, user); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func seedTopics(ctx context.Context, svc *service.Service, staffID string, titles []string) ([]string, error) {
	ids := make([]string, 0, len(titles))
	for _, title := range titles {
		resp, err := svc.Topic.Create(ctx, &dto.CreateTopicRequest{Title: title}, staffID)
		if errors.Is(err, service.ErrTopicTitleTaken) {
			topics, lerr := svc.Topic.List(ctx)
			if lerr != nil {
				return nil, lerr
			}
			for _, t := range topics {
				if t.Title == title {
					ids = append(ids, t.ID)
					break
				}
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, resp.ID)
	}
	return ids, nil
}

func seedEvents(ctx context.Context, svc *service.Service, staffID string, topicIDs []string, weeks, capacity int) (int, error) {
	// next Monday 10:00 local time, then weekly
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, now.Location())
	for first.Weekday() != time.Monday || !first.After(now) {
		first = first.Add(24 * time.Hour)
	}

	created := 0
	for i := 0; i < weeks; i++ {
		labTime := first.Add(time.Duration(i) * 7 * 24 * time.Hour)
		_, err := svc.Event.Create(ctx, &dto.CreateEventRequest{
			LabTime:     labTime,
			CloseLogin:  labTime.Add(-24 * time.Hour),
			CloseLogout: labTime.Add(-12 * time.Hour),
			Capacity:    capacity,
			TopicIDs:    topicIDs,
		}, staffID)
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
