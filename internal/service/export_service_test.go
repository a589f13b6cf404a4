package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/pkg/jobs"
	"github.com/noah-isme/edu-admin-gateway/pkg/storage"
)

type fakeResultClient struct {
	rows     []models.ResultRow
	failures int
	calls    int
}

func (f *fakeResultClient) Rows(ctx context.Context, token string, filter models.ResultFilter) ([]models.ResultRow, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("backend hiccup")
	}
	return f.rows, nil
}

func (f *fakeResultClient) AdminRows(ctx context.Context, token string, filter models.ResultFilter) ([]models.ResultRow, error) {
	return f.Rows(ctx, token, filter)
}

func newExportFixture(t *testing.T, client *fakeResultClient) *ExportService {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", 0)
	return NewExportService(client, files, signer, ExportConfig{DownloadPath: "/results/exports/download"}, nil)
}

func seedExportJob(svc *ExportService, id string) {
	svc.records[id] = &exportRecord{
		job:     models.ExportJob{ID: id, Format: models.ExportCSV, Status: models.ExportQueued},
		ownerID: "admin-1",
	}
}

func exportJobStatus(svc *ExportService, id string) models.ExportStatus {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.records[id].job.Status
}

func TestProcessRendersAndSignsDownload(t *testing.T) {
	client := &fakeResultClient{rows: []models.ResultRow{
		{StudentName: "Nimal Perera", PaperTitle: "Term Test 1", Score: 82.5, Attempt: 1, TakenAt: "2025-03-10"},
	}}
	svc := newExportFixture(t, client)
	seedExportJob(svc, "job-1")

	err := svc.process(context.Background(), jobs.Job{
		ID:      "job-1",
		Payload: exportPayload{token: "t", format: models.ExportCSV},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExportDone, exportJobStatus(svc, "job-1"))
	svc.mu.RLock()
	url := svc.records["job-1"].job.DownloadURL
	svc.mu.RUnlock()
	assert.Contains(t, url, "/results/exports/download?token=")
}

func TestProcessRetryCanStillComplete(t *testing.T) {
	client := &fakeResultClient{failures: 1}
	svc := newExportFixture(t, client)
	seedExportJob(svc, "job-1")
	payload := exportPayload{token: "t", format: models.ExportCSV}

	err := svc.process(context.Background(), jobs.Job{ID: "job-1", Payload: payload, Attempt: 0})
	require.Error(t, err)
	assert.NotEqual(t, models.ExportFailed, exportJobStatus(svc, "job-1"),
		"a job with retries left must not be marked failed yet")

	err = svc.process(context.Background(), jobs.Job{ID: "job-1", Payload: payload, Attempt: 1})
	require.NoError(t, err)
	assert.Equal(t, models.ExportDone, exportJobStatus(svc, "job-1"))
}

func TestProcessFailsAfterLastAttempt(t *testing.T) {
	client := &fakeResultClient{failures: 10}
	svc := newExportFixture(t, client)
	seedExportJob(svc, "job-1")
	payload := exportPayload{token: "t", format: models.ExportCSV}

	err := svc.process(context.Background(), jobs.Job{ID: "job-1", Payload: payload, Attempt: 1})
	require.Error(t, err)
	assert.Equal(t, models.ExportFailed, exportJobStatus(svc, "job-1"))
}
