package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

const reportSheet = "Progress"

var reportColumns = []string{"Name", "Email", "Completed Chapters", "Total Chapters", "Progress (%)", "Certified At"}

type reportService struct {
	repo     repositories.Repository
	db       *gorm.DB
	logger   *slog.Logger
	identity IdentityService
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, identity IdentityService) ReportService {
	return &reportService{
		repo:     repo,
		db:       db,
		logger:   logger,
		identity: identity,
	}
}

// CourseProgressRows lists every grantee's progress on a course; course owner only
func (s *reportService) CourseProgressRows(ctx context.Context, courseID string, identity models.Identity) ([]models.StudentProgressRow, error) {
	if _, err := s.identity.Resolve(ctx, identity); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if !course.IsOwnedBy(identity) {
		return nil, NewPermissionError("course", "view_report", "only the course owner can view this report")
	}

	chapterIDs, err := s.repo.Chapter().ListPublishedIDs(ctx, s.db, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list published chapters: %w", err)
	}
	total := int64(len(chapterIDs))

	students, err := s.repo.Dashboard().StudentCompletion(ctx, s.db, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student completion: %w", err)
	}

	rows := make([]models.StudentProgressRow, 0, len(students))
	for _, student := range students {
		name := (&models.User{Name: student.Name, Email: student.Email}).DisplayName()
		rows = append(rows, models.StudentProgressRow{
			UserID:            student.UserID,
			Name:              name,
			Email:             student.Email,
			CompletedChapters: student.CompletedChapters,
			TotalChapters:     total,
			Percentage:        models.ProgressPercentage(student.CompletedChapters, total),
			CertifiedAt:       student.CertifiedAt,
		})
	}

	return rows, nil
}

func (s *reportService) CourseProgressReport(ctx context.Context, courseID string, identity models.Identity) ([]byte, error) {
	rows, err := s.CourseProgressRows(ctx, courseID, identity)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("failed to prepare report sheet: %w", err)
	}

	header := make([]interface{}, len(reportColumns))
	for i, column := range reportColumns {
		header[i] = column
	}
	if err := writeReportRow(f, 1, header); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	endCell, err := excelize.CoordinatesToCellName(len(reportColumns), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to style report header: %w", err)
	}
	if err := f.SetCellStyle(reportSheet, "A1", endCell, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style report header: %w", err)
	}

	for rowIdx, row := range rows {
		certifiedAt := ""
		if row.CertifiedAt != nil {
			certifiedAt = row.CertifiedAt.UTC().Format("2006-01-02 15:04")
		}
		values := []interface{}{
			row.Name,
			row.Email,
			row.CompletedChapters,
			row.TotalChapters,
			fmt.Sprintf("%.1f", row.Percentage),
			certifiedAt,
		}
		if err := writeReportRow(f, rowIdx+2, values); err != nil {
			return nil, err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(reportColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to size report columns: %w", err)
	}
	if err := f.SetColWidth(reportSheet, "A", lastCol, 22); err != nil {
		return nil, fmt.Errorf("failed to size report columns: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	s.logger.Info("Course progress report generated", "course_id", courseID, "rows", len(rows))
	return buf.Bytes(), nil
}

func writeReportRow(f *excelize.File, rowNum int, values []interface{}) error {
	for colIdx, value := range values {
		cell, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to write report row %d: %w", rowNum, err)
		}
		if err := f.SetCellValue(reportSheet, cell, value); err != nil {
			return fmt.Errorf("failed to write report row %d: %w", rowNum, err)
		}
	}
	return nil
}
