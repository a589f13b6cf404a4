package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/export"
	"github.com/noah-isme/edu-admin-gateway/pkg/jobs"
	"github.com/noah-isme/edu-admin-gateway/pkg/storage"
)

// ExportConfig tunes the export pipeline.
type ExportConfig struct {
	Workers         int
	DownloadPath    string
	FileTTL         time.Duration
	CleanupInterval time.Duration
}

type exportRecord struct {
	job     models.ExportJob
	ownerID string
}

type exportPayload struct {
	token  string
	admin  bool
	filter models.ResultFilter
	format models.ExportFormat
}

// ExportService renders result reports to files in the background and hands
// out signed download links. Job state lives in memory; a restart forgets
// unfinished jobs, which matches the throwaway nature of report files.
type ExportService struct {
	results resultClient
	files   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	queue   *jobs.Queue
	logger  *zap.Logger

	downloadPath    string
	fileTTL         time.Duration
	cleanupInterval time.Duration
	maxRetries      int

	mu      sync.RWMutex
	records map[string]*exportRecord
}

// NewExportService constructs an ExportService with its own worker queue.
func NewExportService(results resultClient, files *storage.LocalStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/results/exports/download"
	}
	if cfg.FileTTL <= 0 {
		cfg.FileTTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	s := &ExportService{
		results:         results,
		files:           files,
		signer:          signer,
		csv:             export.NewCSVExporter(),
		pdf:             export.NewPDFExporter(),
		logger:          logger,
		downloadPath:    cfg.DownloadPath,
		fileTTL:         cfg.FileTTL,
		cleanupInterval: cfg.CleanupInterval,
		maxRetries:      1,
		records:         make(map[string]*exportRecord),
	}
	s.queue = jobs.NewQueue("report-export", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: s.maxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool and the file cleanup loop.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.cleanupLoop(ctx)
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Request queues a report export and returns the job in its queued state.
func (s *ExportService) Request(ctx context.Context, sess *models.Session, admin bool, filter models.ResultFilter, format models.ExportFormat) (*models.ExportJob, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	job := models.ExportJob{
		ID:        uuid.NewString(),
		Format:    format,
		Status:    models.ExportQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.records[job.ID] = &exportRecord{job: job, ownerID: sess.UserID}
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Job{
		ID:   job.ID,
		Type: "result-export",
		Payload: exportPayload{
			token:  sess.Token,
			admin:  admin,
			filter: filter,
			format: format,
		},
	})
	if err != nil {
		s.fail(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "queue export")
	}
	return &job, nil
}

// Job returns the state of one export owned by the caller.
func (s *ExportService) Job(sess *models.Session, id string) (*models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok || rec.ownerID != sess.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	job := rec.job
	return &job, nil
}

// Download resolves a signed token to the stored file. The token is the only
// credential; no session is required.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, path.Base(relPath), nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportPayload)
	if !ok {
		s.fail(job.ID, fmt.Errorf("bad payload type %T", job.Payload))
		return nil
	}
	s.setStatus(job.ID, models.ExportRunning)

	var rows []models.ResultRow
	var err error
	if payload.admin {
		rows, err = s.results.AdminRows(ctx, payload.token, payload.filter)
	} else {
		rows, err = s.results.Rows(ctx, payload.token, payload.filter)
	}
	if err != nil {
		return s.retryable(job, err)
	}

	dataset := resultDataset(rows)
	var rendered []byte
	switch payload.format {
	case models.ExportPDF:
		rendered, err = s.pdf.Render(dataset)
	default:
		rendered, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.fail(job.ID, err)
		return nil
	}

	relPath := fmt.Sprintf("results/%s.%s", job.ID, payload.format)
	if _, err := s.files.Save(relPath, rendered); err != nil {
		return s.retryable(job, err)
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.fail(job.ID, err)
		return nil
	}

	s.mu.Lock()
	if rec, ok := s.records[job.ID]; ok {
		rec.job.Status = models.ExportDone
		rec.job.DownloadURL = s.downloadPath + "?token=" + token
		rec.job.ExpiresAt = &expiresAt
	}
	s.mu.Unlock()
	s.logger.Info("export rendered",
		zap.String("job_id", job.ID),
		zap.String("format", string(payload.format)),
		zap.Int("rows", len(rows)))
	return nil
}

func resultDataset(rows []models.ResultRow) export.Dataset {
	data := export.Dataset{
		Title:   "Result Report",
		Headers: []string{"Student", "Paper", "Score", "Attempt", "Taken At"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, []string{
			row.StudentName,
			row.PaperTitle,
			strconv.FormatFloat(row.Score, 'f', 2, 64),
			strconv.Itoa(row.Attempt),
			row.TakenAt,
		})
	}
	return data
}

// retryable surfaces a transient error to the queue. The failed state is
// only recorded once retries are exhausted, so a retry that succeeds can
// still complete the job.
func (s *ExportService) retryable(job jobs.Job, err error) error {
	if job.Attempt >= s.maxRetries {
		s.fail(job.ID, err)
	}
	return err
}

func (s *ExportService) setStatus(id string, status models.ExportStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.job.Status = status
	}
}

func (s *ExportService) fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.job.Status = models.ExportFailed
		rec.job.Error = err.Error()
	}
}

func (s *ExportService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.files.CleanupOlderThan(s.fileTTL)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("export files cleaned", zap.Int("count", len(deleted)))
			}
		}
	}
}
