package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pepab0t/labs/internal/dto"
	"github.com/pepab0t/labs/internal/model"
	"github.com/pepab0t/labs/internal/repository"
	"github.com/pepab0t/labs/pkg/timefmt"
)

// ── Export module errors ──

var (
	ErrUnknownExportFilter = errors.New("unknown export filter")
	ErrExportNoEvents      = errors.New("no events in the selected window")
)

// The delimited text header is a fixed external contract; reporting consumers
// parse it verbatim.
const exportHeader = "datum a čas hodiny;uzávěr přihlášení;uzávěr odhlášení;téma;jméno studenta;email studenta"

// export window bounds
const (
	closedRecentlyMaxAge = 2 * 24 * time.Hour
	historyWindowLength  = 30 * 7 * 24 * time.Hour
)

// ExportService projects ledger entries into flat attendance records.
//
// Records are sorted by lab time ascending. The ordering is a convenience for
// humans reading the file, not part of the external contract.
type ExportService interface {
	Records(ctx context.Context, filter dto.ExportFilter) ([]dto.ExportRecord, error)
	// DelimitedText renders the records as the fixed semicolon-delimited
	// UTF-8 text, header line first.
	DelimitedText(ctx context.Context, filter dto.ExportFilter) (string, error)
	// Workbook renders the records as an .xlsx workbook and suggests a
	// file name.
	Workbook(ctx context.Context, filter dto.ExportFilter) (*bytes.Buffer, string, error)
	// UserCalendar renders the user's upcoming labs as an iCalendar feed.
	UserCalendar(ctx context.Context, userID string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService instance.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ────────────────────── Records ──────────────────────

func (s *exportService) Records(ctx context.Context, filter dto.ExportFilter) ([]dto.ExportRecord, error) {
	now := time.Now()

	var (
		events []model.Event
		err    error
	)
	switch filter {
	case dto.ExportClosedRecently:
		events, err = s.repo.Event.ListClosedSince(ctx, now.Add(-closedRecentlyMaxAge), now)
	case dto.ExportHistoryWindow:
		events, err = s.repo.Event.ListBetween(ctx, now.Add(-historyWindowLength), now)
	default:
		return nil, ErrUnknownExportFilter
	}
	if err != nil {
		s.logger.Error("list events for export failed", zap.String("filter", string(filter)), zap.Error(err))
		return nil, err
	}

	var records []dto.ExportRecord
	for i := range events {
		event := &events[i]
		slots, err := s.repo.Slot.ListByEvent(ctx, event.EventID)
		if err != nil {
			s.logger.Error("list event slots failed", zap.String("event_id", event.EventID), zap.Error(err))
			return nil, err
		}
		for j := range slots {
			records = append(records, s.toExportRecord(event, &slots[j]))
		}
	}
	return records, nil
}

// ────────────────────── DelimitedText ──────────────────────

func (s *exportService) DelimitedText(ctx context.Context, filter dto.ExportFilter) (string, error) {
	records, err := s.Records(ctx, filter)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(exportHeader)
	for _, rec := range records {
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			rec.LabTime,
			rec.CloseLogin,
			rec.CloseLogout,
			rec.TopicTitle,
			rec.FullName,
			rec.Email,
		}, ";"))
	}
	return b.String(), nil
}

// ────────────────────── Workbook ──────────────────────

func (s *exportService) Workbook(ctx context.Context, filter dto.ExportFilter) (*bytes.Buffer, string, error) {
	records, err := s.Records(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoEvents
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for col, title := range strings.Split(exportHeader, ";") {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, "", err
		}
	}

	for row, rec := range records {
		values := []string{rec.LabTime, rec.CloseLogin, rec.CloseLogout, rec.TopicTitle, rec.FullName, rec.Email}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("write export workbook failed", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("labs_export_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf, filename, nil
}

// ── internal helpers ──

func (s *exportService) toExportRecord(event *model.Event, slot *model.Slot) dto.ExportRecord {
	rec := dto.ExportRecord{
		LabTime:     timefmt.Official(event.LabTime),
		CloseLogin:  timefmt.Official(event.CloseLogin),
		CloseLogout: timefmt.Official(event.CloseLogout),
	}
	if slot.Topic != nil {
		rec.TopicTitle = slot.Topic.Title
	}
	if slot.Applicant != nil {
		rec.FullName = slot.Applicant.FullName
		rec.Email = slot.Applicant.Email
	}
	return rec
}
