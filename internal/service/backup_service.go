package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/guru-admin-api/internal/models"
	"github.com/noah-isme/guru-admin-api/internal/repository"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
	"github.com/noah-isme/guru-admin-api/pkg/jobs"
	"github.com/noah-isme/guru-admin-api/pkg/storage"
)

const (
	backupJobType    = "database_backup"
	backupFileSuffix = ".json"
	maxRestoreBytes  = 64 << 20
)

type maintenanceRepository interface {
	TableCounts(ctx context.Context, tables []string) ([]models.TableCount, error)
	DatabaseSize(ctx context.Context) (string, error)
	DumpTable(ctx context.Context, table string) ([]map[string]interface{}, error)
	Vacuum(ctx context.Context, tables []string) error
	Truncate(ctx context.Context, tables []string) error
	Restore(ctx context.Context, tables []string, rows map[string][]map[string]interface{}) error
}

type backupStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (io.ReadCloser, storage.FileInfo, error)
	List(suffix string) ([]storage.FileInfo, error)
}

type linkSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ResetRequest must carry the literal confirmation word before school data is wiped.
type ResetRequest struct {
	Confirm string `json:"confirm" validate:"required,eq=RESET"`
}

// RestoreRequest names a stored backup to restore.
type RestoreRequest struct {
	Name string `json:"name" validate:"required"`
}

// BackupDownload is an opened backup file ready to be streamed.
type BackupDownload struct {
	Reader   io.ReadCloser
	Filename string
	Size     int64
}

// BackupJobStore keeps the status of backup jobs requested since the process started.
type BackupJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.BackupJob
}

// NewBackupJobStore returns an empty job store.
func NewBackupJobStore() *BackupJobStore {
	return &BackupJobStore{jobs: make(map[string]*models.BackupJob)}
}

func (s *BackupJobStore) put(job *models.BackupJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
}

func (s *BackupJobStore) get(id string) (*models.BackupJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	copied := *job
	return &copied, true
}

func (s *BackupJobStore) update(id string, fn func(job *models.BackupJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

// BackupServiceParams groups the collaborators of BackupService.
type BackupServiceParams struct {
	Repo      maintenanceRepository
	Storage   backupStorage
	Signer    linkSigner
	Queue     jobDispatcher
	Jobs      *BackupJobStore
	Cache     cacheInvalidator
	APIPrefix string
	Validator *validator.Validate
	Logger    *zap.Logger
}

// BackupService serves the database maintenance endpoints.
type BackupService struct {
	repo      maintenanceRepository
	storage   backupStorage
	signer    linkSigner
	queue     jobDispatcher
	jobs      *BackupJobStore
	cache     cacheInvalidator
	apiPrefix string
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewBackupService constructs the maintenance service.
func NewBackupService(params BackupServiceParams) *BackupService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Jobs == nil {
		params.Jobs = NewBackupJobStore()
	}
	return &BackupService{
		repo:      params.Repo,
		storage:   params.Storage,
		signer:    params.Signer,
		queue:     params.Queue,
		jobs:      params.Jobs,
		cache:     params.Cache,
		apiPrefix: strings.TrimRight(params.APIPrefix, "/"),
		validator: params.Validator,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// Info reports per-table row counts, database size and the latest backup.
func (s *BackupService) Info(ctx context.Context) (*models.DatabaseInfo, error) {
	counts, err := s.repo.TableCounts(ctx, repository.BackupTables)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count table rows")
	}
	size, err := s.repo.DatabaseSize(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to read database size")
	}
	info := &models.DatabaseInfo{Tables: counts, DatabaseSize: size}
	for _, c := range counts {
		info.TotalRows += c.Rows
	}
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return nil, err
	}
	if len(backups) > 0 {
		latest := backups[0]
		info.LastBackup = &latest
	}
	return info, nil
}

// RequestBackup queues a backup and returns the job in QUEUED state.
func (s *BackupService) RequestBackup(ctx context.Context, requestedBy string) (*models.BackupJob, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "backup queue is not running")
	}
	job := &models.BackupJob{
		ID:          uuid.NewString(),
		Status:      models.BackupQueued,
		RequestedBy: requestedBy,
		CreatedAt:   s.now().UTC(),
	}
	s.jobs.put(job)

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: backupJobType, Payload: job.ID}); err != nil {
		s.markFailed(job.ID, err)
		return nil, appErrors.Internal(err, "failed to enqueue backup")
	}
	s.logger.Info("backup queued", zap.String("job_id", job.ID), zap.String("requested_by", requestedBy))
	return job, nil
}

// Job returns the tracked state of a backup job.
func (s *BackupService) Job(ctx context.Context, id string) (*models.BackupJob, error) {
	job, ok := s.jobs.get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "backup job not found")
	}
	return job, nil
}

// ListBackups lists stored backup files, newest first.
func (s *BackupService) ListBackups(ctx context.Context) ([]models.BackupFile, error) {
	files, err := s.storage.List(backupFileSuffix)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list backups")
	}
	result := make([]models.BackupFile, 0, len(files))
	for _, f := range files {
		result = append(result, models.BackupFile{Name: f.Name, Size: f.Size, CreatedAt: f.ModifiedAt})
	}
	return result, nil
}

// Link issues a signed, expiring download URL for a stored backup.
func (s *BackupService) Link(ctx context.Context, name string) (*models.BackupLink, error) {
	if !isBackupName(name) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid backup name")
	}
	files, err := s.storage.List(backupFileSuffix)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list backups")
	}
	found := false
	for _, f := range files {
		if f.Name == name {
			found = true
			break
		}
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "backup not found")
	}

	token, expiresAt, err := s.signer.Generate(strings.ReplaceAll(uuid.NewString(), "-", ""), name)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download link")
	}
	return &models.BackupLink{
		URL:       fmt.Sprintf("%s/database/download/%s", s.apiPrefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Download resolves a signed token to an opened backup file.
func (s *BackupService) Download(ctx context.Context, token string) (*BackupDownload, error) {
	_, name, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download link")
	}
	if !isBackupName(name) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	reader, info, err := s.storage.Open(name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "backup not found")
	}
	return &BackupDownload{Reader: reader, Filename: name, Size: info.Size}, nil
}

// Optimize runs VACUUM ANALYZE over every application table.
func (s *BackupService) Optimize(ctx context.Context) (*models.MaintenanceResult, error) {
	if err := s.repo.Vacuum(ctx, repository.BackupTables); err != nil {
		return nil, appErrors.Internal(err, "failed to optimize database")
	}
	s.logger.Info("database optimized", zap.Int("tables", len(repository.BackupTables)))
	return &models.MaintenanceResult{Operation: "optimize", Tables: repository.BackupTables, Completed: s.now().UTC()}, nil
}

// Reset truncates school data. Accounts and grade weights are kept.
func (s *BackupService) Reset(ctx context.Context, req ResetRequest) (*models.MaintenanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "confirm must be RESET")
	}
	if err := s.repo.Truncate(ctx, repository.SchoolDataTables); err != nil {
		return nil, appErrors.Internal(err, "failed to reset school data")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
	s.logger.Warn("school data reset", zap.Strings("tables", repository.SchoolDataTables))
	return &models.MaintenanceResult{Operation: "reset", Tables: repository.SchoolDataTables, Completed: s.now().UTC()}, nil
}

// Restore replaces school data and grade weights with a stored backup.
func (s *BackupService) Restore(ctx context.Context, req RestoreRequest) (*models.MaintenanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "backup name is required")
	}
	if !isBackupName(req.Name) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid backup name")
	}
	reader, _, err := s.storage.Open(req.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "backup not found")
	}
	defer reader.Close()
	return s.restore(ctx, req.Name, reader)
}

// RestoreUpload replaces school data and grade weights with an uploaded backup document.
func (s *BackupService) RestoreUpload(ctx context.Context, filename string, r io.Reader) (*models.MaintenanceResult, error) {
	if !strings.HasSuffix(strings.ToLower(filename), backupFileSuffix) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "backup file must be a .json dump")
	}
	return s.restore(ctx, filename, r)
}

// restore validates the dump, saves a safety backup of the current data, then swaps the tables in one transaction.
// Accounts are never overwritten.
func (s *BackupService) restore(ctx context.Context, source string, r io.Reader) (*models.MaintenanceResult, error) {
	dump, err := decodeDump(r)
	if err != nil {
		return nil, err
	}
	if _, ok := dump.Tables["users"]; ok {
		s.logger.Info("restore skips user accounts", zap.String("source", source))
	}

	safety, _, err := writeDump(ctx, s.repo, s.storage, "pre_restore", s.now().UTC())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to back up current data")
	}
	if err := s.repo.Restore(ctx, repository.RestoreTables, dump.Tables); err != nil {
		return nil, appErrors.Internal(err, "failed to restore backup")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
	s.logger.Warn("database restored", zap.String("source", source), zap.String("safety_backup", safety))
	return &models.MaintenanceResult{
		Operation:    "restore",
		Tables:       repository.RestoreTables,
		Source:       source,
		SafetyBackup: safety,
		Completed:    s.now().UTC(),
	}, nil
}

func decodeDump(r io.Reader) (*models.BackupDump, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxRestoreBytes+1))
	if err != nil {
		return nil, appErrors.Validation(err, "failed to read backup file")
	}
	if len(data) > maxRestoreBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "backup file is too large")
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var dump models.BackupDump
	if err := decoder.Decode(&dump); err != nil {
		return nil, appErrors.Validation(err, "backup file is not a valid dump")
	}

	restorable := 0
	for table := range dump.Tables {
		if !containsTable(repository.BackupTables, table) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("backup contains unknown table %q", table))
		}
		if containsTable(repository.RestoreTables, table) {
			restorable++
		}
	}
	if restorable == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "backup contains no school data")
	}
	return &dump, nil
}

func containsTable(tables []string, name string) bool {
	for _, t := range tables {
		if t == name {
			return true
		}
	}
	return false
}

func (s *BackupService) markFailed(id string, err error) {
	finished := s.now().UTC()
	s.jobs.update(id, func(job *models.BackupJob) {
		job.Status = models.BackupFailed
		job.Error = err.Error()
		job.FinishedAt = &finished
	})
}

func isBackupName(name string) bool {
	return name != "" && strings.HasSuffix(name, backupFileSuffix) && !strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".")
}

// BackupWorker dumps the database for queued backup jobs.
type BackupWorker struct {
	repo    maintenanceRepository
	storage backupStorage
	jobs    *BackupJobStore
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewBackupWorker constructs the queue handler for backups.
func NewBackupWorker(repo maintenanceRepository, store backupStorage, jobStore *BackupJobStore, metrics *MetricsService, logger *zap.Logger) *BackupWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupWorker{repo: repo, storage: store, jobs: jobStore, metrics: metrics, logger: logger, now: time.Now}
}

// Handle executes a backup job. It is registered as the queue handler.
func (w *BackupWorker) Handle(ctx context.Context, job jobs.Job) error {
	if job.Type != backupJobType {
		return fmt.Errorf("unsupported job type %q", job.Type)
	}
	w.jobs.update(job.ID, func(j *models.BackupJob) {
		j.Status = models.BackupRunning
		j.Error = ""
	})

	name, size, err := writeDump(ctx, w.repo, w.storage, "backup", w.now().UTC())
	if err != nil {
		return err
	}

	finished := w.now().UTC()
	w.jobs.update(job.ID, func(j *models.BackupJob) {
		j.Status = models.BackupCompleted
		j.FileName = name
		j.FinishedAt = &finished
	})
	w.metrics.RecordBackupJob(models.BackupCompleted)
	w.logger.Info("backup completed", zap.String("job_id", job.ID), zap.String("file", name), zap.Int("bytes", size))
	return nil
}

// writeDump dumps every backup table and stores the document as <prefix>_<timestamp>.json.
func writeDump(ctx context.Context, repo maintenanceRepository, store backupStorage, prefix string, at time.Time) (string, int, error) {
	dump := models.BackupDump{GeneratedAt: at, Tables: make(map[string][]map[string]interface{}, len(repository.BackupTables))}
	for _, table := range repository.BackupTables {
		rows, err := repo.DumpTable(ctx, table)
		if err != nil {
			return "", 0, fmt.Errorf("dump %s: %w", table, err)
		}
		dump.Tables[table] = rows
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("encode backup: %w", err)
	}
	name := fmt.Sprintf("%s_%s%s", prefix, at.Format("20060102_150405"), backupFileSuffix)
	if _, err := store.Save(name, data); err != nil {
		return "", 0, fmt.Errorf("save backup: %w", err)
	}
	return name, len(data), nil
}

// MarkFailed records a job that exhausted its retries. It is registered as the queue failure hook.
func (w *BackupWorker) MarkFailed(job jobs.Job, err error) {
	if err == nil {
		err = errors.New("backup failed")
	}
	finished := w.now().UTC()
	w.jobs.update(job.ID, func(j *models.BackupJob) {
		j.Status = models.BackupFailed
		j.Error = err.Error()
		j.FinishedAt = &finished
	})
	w.metrics.RecordBackupJob(models.BackupFailed)
	w.logger.Error("backup failed", zap.String("job_id", job.ID), zap.Error(err))
}
