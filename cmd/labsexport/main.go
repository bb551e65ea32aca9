package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/pepab0t/labs/config"
	"github.com/pepab0t/labs/internal/dto"
	"github.com/pepab0t/labs/internal/repository"
	"github.com/pepab0t/labs/internal/service"
	"github.com/pepab0t/labs/pkg/database"
	applogger "github.com/pepab0t/labs/pkg/logger"
)

// labsexport renders an attendance export for the teaching staff, either as
// semicolon-delimited text or as an .xlsx workbook.
func main() {
	var (
		configPath = pflag.String("config", "", "path to the config file")
		filterName = pflag.String("filter", "closed", "event selection: closed (recently closed) or history (last 30 weeks)")
		format     = pflag.String("format", "csv", "output format: csv or xlsx")
		outPath    = pflag.String("out", "", "output file; csv defaults to stdout, xlsx to the suggested name")
	)
	pflag.Parse()

	var filter dto.ExportFilter
	switch *filterName {
	case "closed":
		filter = dto.ExportClosedRecently
	case "history":
		filter = dto.ExportHistoryWindow
	default:
		fmt.Fprintf(os.Stderr, "unknown filter %q (want closed or history)\n", *filterName)
		os.Exit(2)
	}
	if *format != "csv" && *format != "xlsx" {
		fmt.Fprintf(os.Stderr, "unknown format %q (want csv or xlsx)\n", *format)
		os.Exit(2)
	}

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

	switch *format {
	case "csv":
		text, err := svc.Export.DelimitedText(ctx, filter)
		if err != nil {
			logger.Fatal("export failed", zap.Error(err))
		}
		if *outPath == "" {
			fmt.Println(text)
			return
		}
		if err := os.WriteFile(*outPath, []byte(text+"\n"), 0o644); err != nil {
			logger.Fatal("write export failed", zap.String("path", *outPath), zap.Error(err))
		}
		logger.Info("export written", zap.String("path", *outPath))

	case "xlsx":
		buf, suggested, err := svc.Export.Workbook(ctx, filter)
		if err != nil {
			logger.Fatal("export failed", zap.Error(err))
		}
		path := *outPath
		if path == "" {
			path = suggested
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			logger.Fatal("write export failed", zap.String("path", path), zap.Error(err))
		}
		logger.Info("export written", zap.String("path", path))
	}
}
