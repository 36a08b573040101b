package services

import (
	"context"
	"sync"

	"biteclub/gateway"
	"biteclub/models"
	"biteclub/utils"
)

// ReviewSaver is the write side of the persistence gateway used by imports.
type ReviewSaver interface {
	SaveReview(ctx context.Context, r models.Review) (gateway.SyncStatus, error)
}

// ImportResult counts what happened to each imported row.
type ImportResult struct {
	Saved        int
	Failed       int
	RemoteFailed int
}

// Importer saves review drafts through the gateway on a worker pool.
type Importer struct {
	form   *ReviewForm
	pool   *utils.WorkerPool
	logger *utils.Logger
}

func NewImporter(form *ReviewForm, pool *utils.WorkerPool, logger *utils.Logger) *Importer {
	return &Importer{form: form, pool: pool, logger: logger}
}

// Import builds and saves every draft. Rows that fail to parse or validate
// are logged and counted, never fatal. Row numbers in log lines are 1-based
// and exclude the header.
func (im *Importer) Import(ctx context.Context, saver ReviewSaver, drafts []models.ReviewDraft) ImportResult {
	var (
		mu     sync.Mutex
		result ImportResult
	)
	for i, d := range drafts {
		row, d := i+1, d
		im.pool.Submit(func() {
			if ctx.Err() != nil {
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return
			}

			review, err := im.form.Build(d)
			var status gateway.SyncStatus
			if err == nil {
				status, err = saver.SaveReview(ctx, review)
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				im.logger.Warn("[import] Row %d skipped: %v", row, err)
			case status.State == gateway.SyncFailed:
				result.Saved++
				result.RemoteFailed++
			default:
				result.Saved++
			}
		})
	}
	im.pool.Wait()

	im.logger.Info("[import] %d saved, %d skipped, %d not synced to remote",
		result.Saved, result.Failed, result.RemoteFailed)
	return result
}
