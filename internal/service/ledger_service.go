package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
	"github.com/noah-isme/guru-admin-api/pkg/export"
)

// Ledger CSV columns, in output order.
const (
	ledgerColStudentID         = "student_id"
	ledgerColStudentIdentifier = "student_identifier"
	ledgerColStudentName       = "student_name"
	ledgerColClassName         = "class_name"
	ledgerColAttendance        = "attendance_percentage"
	ledgerColFormative         = "formative_score"
	ledgerColMidTerm           = "mid_term_score"
	ledgerColFinalTerm         = "final_term_score"
	ledgerColFinalScore        = "final_score"
	ledgerColGradeLetter       = "grade_letter"
)

var ledgerHeaders = []string{
	ledgerColStudentID,
	ledgerColStudentIdentifier,
	ledgerColStudentName,
	ledgerColClassName,
	ledgerColAttendance,
	ledgerColFormative,
	ledgerColMidTerm,
	ledgerColFinalTerm,
	ledgerColFinalScore,
	ledgerColGradeLetter,
}

type ledgerClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type ledgerSemesterReader interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

type rosterProvider interface {
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

type attendanceSummaryProvider interface {
	SummaryByClass(ctx context.Context, classID, semesterID string) (map[string]float64, error)
}

type categoryScoreProvider interface {
	ScoresByCategory(ctx context.Context, classID, semesterID string, category models.ScoreCategory) (map[string]float64, error)
}

type weightProvider interface {
	Get(ctx context.Context) (*models.WeightConfig, error)
}

type ledgerSnapshotStore interface {
	UpsertSnapshots(ctx context.Context, snapshots []models.LedgerSnapshot) error
	ListSnapshots(ctx context.Context, classID, semesterID string) ([]models.LedgerSnapshot, error)
}

type ledgerCSVCodec interface {
	Render(data export.Dataset) ([]byte, error)
	Parse(r io.Reader) (export.Dataset, error)
}

type ledgerPDFRenderer interface {
	Render(doc export.PDFDocument) ([]byte, error)
}

// LedgerDeps groups the collaborators of the ledger builder.
type LedgerDeps struct {
	Classes    ledgerClassReader
	Semesters  ledgerSemesterReader
	Roster     rosterProvider
	Attendance attendanceSummaryProvider
	Scores     categoryScoreProvider
	Weights    weightProvider
	Snapshots  ledgerSnapshotStore
}

// LedgerFile is a rendered ledger export.
type LedgerFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// LedgerService builds the grade ledger for a class and semester.
type LedgerService struct {
	deps      LedgerDeps
	csv       ledgerCSVCodec
	pdf       ledgerPDFRenderer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(deps LedgerDeps, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		deps:      deps,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// BuildLedger fetches roster, attendance, scores and weights in sequence and assembles the report.
// Any fetch failure aborts the build; no partial report is returned.
func (s *LedgerService) BuildLedger(ctx context.Context, classID, semesterID string) (*models.LedgerReport, error) {
	start := time.Now()
	report, err := s.build(ctx, classID, semesterID)
	students := 0
	if report != nil {
		students = report.Summary.StudentCount
	}
	s.metrics.ObserveLedgerBuild(students, time.Since(start), err)
	if err != nil {
		s.logger.Warn("ledger build failed", zap.String("class_id", classID), zap.String("semester_id", semesterID), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("ledger built",
		zap.String("class_id", classID),
		zap.String("semester_id", semesterID),
		zap.Int("students", students),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

func (s *LedgerService) build(ctx context.Context, classID, semesterID string) (*models.LedgerReport, error) {
	if err := s.validator.Struct(models.LedgerQuery{ClassID: classID, SemesterID: semesterID}); err != nil {
		return nil, appErrors.Validation(err, "classId and semesterId are required")
	}

	class, err := s.deps.Classes.FindByID(ctx, classID)
	if err != nil {
		return nil, lookupError(err, "class not found", "failed to load class")
	}
	semester, err := s.deps.Semesters.FindByID(ctx, semesterID)
	if err != nil {
		return nil, lookupError(err, "semester not found", "failed to load semester")
	}

	roster, err := s.deps.Roster.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Transport(err, "failed to fetch class roster")
	}
	attendance, err := s.deps.Attendance.SummaryByClass(ctx, classID, semesterID)
	if err != nil {
		return nil, appErrors.Transport(err, "failed to fetch attendance summary")
	}
	formative, err := s.deps.Scores.ScoresByCategory(ctx, classID, semesterID, models.ScoreFormative)
	if err != nil {
		return nil, appErrors.Transport(err, "failed to fetch formative scores")
	}
	midTerm, err := s.deps.Scores.ScoresByCategory(ctx, classID, semesterID, models.ScoreMidTerm)
	if err != nil {
		return nil, appErrors.Transport(err, "failed to fetch mid-term scores")
	}
	finalTerm, err := s.deps.Scores.ScoresByCategory(ctx, classID, semesterID, models.ScoreFinalTerm)
	if err != nil {
		return nil, appErrors.Transport(err, "failed to fetch final-term scores")
	}
	weights, err := s.deps.Weights.Get(ctx)
	if err != nil {
		return nil, appErrors.Transport(err, "failed to fetch grade weights")
	}

	entries := make([]models.LedgerEntry, 0, len(roster))
	for _, student := range roster {
		scores := models.ScoreSet{
			Formative: formative[student.ID],
			MidTerm:   midTerm[student.ID],
			FinalTerm: finalTerm[student.ID],
		}
		final := ComputeFinalScore(scores, *weights)
		className := student.ClassName
		if className == "" {
			className = class.Name
		}
		entries = append(entries, models.LedgerEntry{
			StudentID:            student.ID,
			StudentName:          student.FullName,
			StudentIdentifier:    student.NISN,
			ClassName:            className,
			AttendancePercentage: attendance[student.ID],
			FormativeScore:       scores.Formative,
			MidTermScore:         scores.MidTerm,
			FinalTermScore:       scores.FinalTerm,
			FinalScore:           final,
			GradeLetter:          GradeLetter(final),
		})
	}

	return &models.LedgerReport{
		ClassID:       class.ID,
		ClassName:     class.Name,
		SemesterID:    semester.ID,
		SemesterLabel: semester.Label(),
		Weights:       *weights,
		Entries:       entries,
		Summary:       SummarizeLedger(entries),
		GeneratedAt:   s.now(),
	}, nil
}

// SummarizeLedger computes count, mean, max and min of the final scores. Average, max and min stay
// nil for an empty slice.
func SummarizeLedger(entries []models.LedgerEntry) models.LedgerSummary {
	summary := models.LedgerSummary{StudentCount: len(entries)}
	if len(entries) == 0 {
		return summary
	}
	sum := 0.0
	maxScore := entries[0].FinalScore
	minScore := entries[0].FinalScore
	for _, entry := range entries {
		sum += entry.FinalScore
		if entry.FinalScore > maxScore {
			maxScore = entry.FinalScore
		}
		if entry.FinalScore < minScore {
			minScore = entry.FinalScore
		}
	}
	avg := sum / float64(len(entries))
	summary.AverageFinalScore = &avg
	summary.MaxFinalScore = &maxScore
	summary.MinFinalScore = &minScore
	return summary
}

// Generate builds the ledger and archives one snapshot row per student.
func (s *LedgerService) Generate(ctx context.Context, classID, semesterID string) (*models.GenerateLedgerResult, error) {
	report, err := s.BuildLedger(ctx, classID, semesterID)
	if err != nil {
		return nil, err
	}
	snapshots := make([]models.LedgerSnapshot, 0, len(report.Entries))
	for _, entry := range report.Entries {
		snapshots = append(snapshots, models.LedgerSnapshot{
			StudentID:            entry.StudentID,
			ClassID:              report.ClassID,
			SemesterID:           report.SemesterID,
			AttendancePercentage: entry.AttendancePercentage,
			FormativeScore:       entry.FormativeScore,
			MidTermScore:         entry.MidTermScore,
			FinalTermScore:       entry.FinalTermScore,
			FinalScore:           entry.FinalScore,
			GradeLetter:          entry.GradeLetter,
			GeneratedAt:          report.GeneratedAt,
		})
	}
	if err := s.deps.Snapshots.UpsertSnapshots(ctx, snapshots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save ledger snapshots")
	}
	s.logger.Info("ledger generated", zap.String("class_id", classID), zap.String("semester_id", semesterID), zap.Int("students", len(snapshots)))
	return &models.GenerateLedgerResult{
		ClassID:     report.ClassID,
		SemesterID:  report.SemesterID,
		Generated:   len(snapshots),
		GeneratedAt: report.GeneratedAt,
	}, nil
}

// Snapshots returns the archived ledger rows for a class and semester.
func (s *LedgerService) Snapshots(ctx context.Context, classID, semesterID string) ([]models.LedgerSnapshot, error) {
	if err := s.validator.Struct(models.LedgerQuery{ClassID: classID, SemesterID: semesterID}); err != nil {
		return nil, appErrors.Validation(err, "classId and semesterId are required")
	}
	snapshots, err := s.deps.Snapshots.ListSnapshots(ctx, classID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ledger snapshots")
	}
	return snapshots, nil
}

// ExportCSV renders the ledger as comma-separated text with a header row of field names.
func (s *LedgerService) ExportCSV(ctx context.Context, classID, semesterID string) (*LedgerFile, error) {
	report, err := s.BuildLedger(ctx, classID, semesterID)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(LedgerDataset(report.Entries))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ledger csv")
	}
	return &LedgerFile{Filename: ledgerFilename(report, "csv"), ContentType: "text/csv; charset=utf-8", Data: data}, nil
}

// ExportPDF renders the ledger as a landscape table with a summary footer.
func (s *LedgerService) ExportPDF(ctx context.Context, classID, semesterID string) (*LedgerFile, error) {
	report, err := s.BuildLedger(ctx, classID, semesterID)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(export.PDFDocument{
		Title:    "Legger Nilai " + report.ClassName,
		Subtitle: fmt.Sprintf("Semester %s | Bobot Formatif %d%%, UTS %d%%, UAS %d%%, Kehadiran %d%%", report.SemesterLabel, report.Weights.Formative, report.Weights.MidTerm, report.Weights.FinalTerm, report.Weights.Attendance),
		Data:     ledgerPDFDataset(report.Entries),
		ColumnWidths: map[string]float64{
			"No":         12,
			"NISN":       32,
			"Nama Siswa": 65,
			"Predikat":   22,
		},
		Footer: ledgerFooter(report.Summary),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ledger pdf")
	}
	return &LedgerFile{Filename: ledgerFilename(report, "pdf"), ContentType: "application/pdf", Data: data}, nil
}

// ParseLedgerCSV reads text produced by ExportCSV back into entries, preserving row order.
func (s *LedgerService) ParseLedgerCSV(r io.Reader) ([]models.LedgerEntry, error) {
	dataset, err := s.csv.Parse(r)
	if err != nil {
		return nil, appErrors.Validation(err, "invalid ledger csv")
	}
	present := make(map[string]bool, len(dataset.Headers))
	for _, h := range dataset.Headers {
		present[h] = true
	}
	for _, h := range ledgerHeaders {
		if !present[h] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("ledger csv is missing column %q", h))
		}
	}

	entries := make([]models.LedgerEntry, 0, len(dataset.Rows))
	for i, row := range dataset.Rows {
		var values [5]float64
		for j, col := range []string{ledgerColAttendance, ledgerColFormative, ledgerColMidTerm, ledgerColFinalTerm, ledgerColFinalScore} {
			v, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				return nil, appErrors.Validation(err, fmt.Sprintf("row %d: invalid %s", i+1, col))
			}
			values[j] = v
		}
		entries = append(entries, models.LedgerEntry{
			StudentID:            row[ledgerColStudentID],
			StudentIdentifier:    row[ledgerColStudentIdentifier],
			StudentName:          row[ledgerColStudentName],
			ClassName:            row[ledgerColClassName],
			AttendancePercentage: values[0],
			FormativeScore:       values[1],
			MidTermScore:         values[2],
			FinalTermScore:       values[3],
			FinalScore:           values[4],
			GradeLetter:          row[ledgerColGradeLetter],
		})
	}
	return entries, nil
}

// LedgerDataset flattens entries into export rows. Numbers use the shortest representation that
// parses back to the same float64.
func LedgerDataset(entries []models.LedgerEntry) export.Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]string{
			ledgerColStudentID:         e.StudentID,
			ledgerColStudentIdentifier: e.StudentIdentifier,
			ledgerColStudentName:       e.StudentName,
			ledgerColClassName:         e.ClassName,
			ledgerColAttendance:        formatScore(e.AttendancePercentage),
			ledgerColFormative:         formatScore(e.FormativeScore),
			ledgerColMidTerm:           formatScore(e.MidTermScore),
			ledgerColFinalTerm:         formatScore(e.FinalTermScore),
			ledgerColFinalScore:        formatScore(e.FinalScore),
			ledgerColGradeLetter:       e.GradeLetter,
		})
	}
	return export.Dataset{Headers: append([]string(nil), ledgerHeaders...), Rows: rows}
}

func ledgerPDFDataset(entries []models.LedgerEntry) export.Dataset {
	headers := []string{"No", "NISN", "Nama Siswa", "Kehadiran (%)", "Formatif", "UTS", "UAS", "Nilai Akhir", "Predikat"}
	rows := make([]map[string]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, map[string]string{
			"No":            strconv.Itoa(i + 1),
			"NISN":          e.StudentIdentifier,
			"Nama Siswa":    e.StudentName,
			"Kehadiran (%)": strconv.FormatFloat(e.AttendancePercentage, 'f', 2, 64),
			"Formatif":      strconv.FormatFloat(e.FormativeScore, 'f', 2, 64),
			"UTS":           strconv.FormatFloat(e.MidTermScore, 'f', 2, 64),
			"UAS":           strconv.FormatFloat(e.FinalTermScore, 'f', 2, 64),
			"Nilai Akhir":   strconv.FormatFloat(e.FinalScore, 'f', 2, 64),
			"Predikat":      e.GradeLetter,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ledgerFooter(summary models.LedgerSummary) []string {
	lines := []string{fmt.Sprintf("Jumlah siswa: %d", summary.StudentCount)}
	if summary.AverageFinalScore == nil {
		return lines
	}
	return append(lines,
		fmt.Sprintf("Rata-rata nilai akhir: %.2f", *summary.AverageFinalScore),
		fmt.Sprintf("Nilai tertinggi: %.2f", *summary.MaxFinalScore),
		fmt.Sprintf("Nilai terendah: %.2f", *summary.MinFinalScore),
	)
}

func ledgerFilename(report *models.LedgerReport, ext string) string {
	return fmt.Sprintf("legger_%s_%s.%s", slugify(report.ClassName), slugify(report.SemesterLabel), ext)
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// lookupError maps a FindByID failure to NOT_FOUND or TRANSPORT_ERROR.
func lookupError(err error, notFound, failed string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Transport(err, failed)
}
