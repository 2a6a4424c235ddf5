package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/studyhive/studyhub-service/internal/repositories"
)

// exportService renders a user's study data as xlsx workbooks.
type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

const exportPageSize = 500

func (s *exportService) ExportExamResults(ctx context.Context, ownerID string) ([]byte, string, error) {
	s.logger.Info("Exporting exam results", "owner_id", ownerID)

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Exam Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Subject", "Score", "Max Score", "Percentage", "Taken At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	offset := 0
	for {
		results, _, err := s.repo.ExamResult().GetByOwner(ctx, nil, ownerID, repositories.ExamResultFilters{
			Limit:  exportPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, "", NewPersistenceError("list exam results for export", err)
		}
		if len(results) == 0 {
			break
		}

		for _, r := range results {
			values := []interface{}{r.ID, r.Subject, r.Score, r.MaxScore, r.Percentage, r.TakenAt.Format(time.RFC3339)}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}

		if len(results) < exportPageSize {
			break
		}
		offset += exportPageSize
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	fileName := fmt.Sprintf("exam_results_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), fileName, nil
}

func (s *exportService) ExportMaterials(ctx context.Context, ownerID string) ([]byte, string, error) {
	s.logger.Info("Exporting study materials", "owner_id", ownerID)

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Study Materials"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Type", "Subject", "Public", "Created At", "Updated At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	offset := 0
	for {
		materials, _, err := s.repo.Material().GetByOwner(ctx, nil, ownerID, repositories.MaterialFilters{
			Limit:  exportPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, "", NewPersistenceError("list materials for export", err)
		}
		if len(materials) == 0 {
			break
		}

		for _, m := range materials {
			values := []interface{}{
				m.ID, m.Title, string(m.Type), m.Subject, m.IsPublic,
				m.CreatedAt.Format(time.RFC3339), m.UpdatedAt.Format(time.RFC3339),
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}

		if len(materials) < exportPageSize {
			break
		}
		offset += exportPageSize
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	fileName := fmt.Sprintf("study_materials_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), fileName, nil
}
