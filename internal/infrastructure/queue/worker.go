package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/outbox"
	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/tenant"
	"github.com/pms/backend/internal/infrastructure/directory"
)

// WorkerConfig holds configuration for the background worker
type WorkerConfig struct {
	// Interval is the process-wide poll interval between passes
	Interval time.Duration
	// MaxAttempts is the attempts ceiling after which a failed item is
	// abandoned
	MaxAttempts int
	// Defaults are the process-wide queue settings tenant overrides merge
	// over
	Defaults tenant.QueueSettings
	// Dedup enables the duplicate-suppression guard when a store is wired
	Dedup shared.DedupConfig
}

// Worker drains tenant queues in the background. A single goroutine walks
// every registered tenant each pass and processes that tenant's batch
// sequentially, so two executions never race on one tenant's items.
type Worker struct {
	dir      tenant.Directory
	pool     *directory.ConnectionPool
	registry *Registry
	dedup    shared.DedupStore
	config   WorkerConfig
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a worker. dedup may be nil when suppression is disabled.
func NewWorker(dir tenant.Directory, pool *directory.ConnectionPool, registry *Registry, dedup shared.DedupStore, config WorkerConfig, logger *zap.Logger) *Worker {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = outbox.DefaultMaxAttempts
	}
	if config.Interval < tenant.MinWorkerInterval {
		config.Interval = tenant.MinWorkerInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		dir:      dir,
		pool:     pool,
		registry: registry,
		dedup:    dedup,
		config:   config,
		logger:   logger,
	}
}

// Start starts the background processing loop. When the process default
// disables the worker and no tenant in the directory opts in, the worker
// exits without polling at all.
func (w *Worker) Start(ctx context.Context) error {
	if !w.shouldRun(ctx) {
		w.logger.Info("Sync worker disabled and no tenant opted in, not polling")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.runLoop(ctx)

	w.logger.Info("Sync worker started",
		zap.Duration("interval", w.config.Interval),
		zap.Int("max_attempts", w.config.MaxAttempts))
	return nil
}

// shouldRun reports whether any tenant can ever be drained. A directory
// read failure errs on the side of polling.
func (w *Worker) shouldRun(ctx context.Context) bool {
	if w.config.Defaults.EnableBackgroundWorker {
		return true
	}

	tenants, err := w.dir.All(ctx)
	if err != nil {
		w.logger.Warn("Failed to list tenants for worker opt-out check, polling anyway", zap.Error(err))
		return true
	}
	for _, t := range tenants {
		if w.config.Defaults.Merge(t).EnableBackgroundWorker {
			return true
		}
	}
	return false
}

// Stop gracefully stops the worker, waiting for an in-flight pass to finish
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Sync worker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) runLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

// pass walks every tenant once. Tenants that opted out of queue mode or the
// background worker are skipped; a broken tenant is logged and skipped so it
// cannot stall the others.
func (w *Worker) pass(ctx context.Context) {
	tenants, err := w.dir.All(ctx)
	if err != nil {
		w.logger.Error("Failed to list tenants for worker pass", zap.Error(err))
		return
	}

	for _, t := range tenants {
		if ctx.Err() != nil {
			return
		}
		settings := w.config.Defaults.Merge(t)
		if !settings.EnableQueueMode || !settings.EnableBackgroundWorker {
			continue
		}
		w.processTenant(ctx, t, settings)
	}
}

func (w *Worker) processTenant(ctx context.Context, t *tenant.Tenant, settings tenant.QueueSettings) {
	log := w.logger.With(zap.String("tenant", t.Code))

	db, err := w.pool.Get(ctx, t)
	if err != nil {
		log.Error("Failed to open tenant database", zap.Error(err))
		return
	}
	store := NewGormStore(db)

	items, err := store.FindEligible(ctx, settings.BatchSize(), w.config.MaxAttempts)
	if err != nil {
		log.Error("Failed to select queue batch", zap.Error(err))
		return
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		w.processItem(ctx, store, db, t.Code, item, log)
	}
}

// processItem drives one item through a single attempt. The Processing
// transition is persisted before the handler runs so a crash mid-handler
// leaves a counted attempt behind. A failed status write aborts the attempt
// without running the handler; executing work that cannot be accounted for
// is the one outcome this loop must never produce.
func (w *Worker) processItem(ctx context.Context, store *GormStore, db *gorm.DB, tenantCode string, item *outbox.QueueItem, log *zap.Logger) {
	log = log.With(
		zap.String("request_ref", item.RequestRef),
		zap.String("operation_key", item.OperationKey))

	if w.suppressDuplicate(ctx, store, tenantCode, item, log) {
		return
	}

	if err := item.MarkProcessing(); err != nil {
		log.Warn("Skipping item in unexpected state", zap.Error(err))
		return
	}
	if err := store.Update(ctx, item); err != nil {
		log.Error("Failed to persist processing transition, attempt aborted",
			zap.String("code", shared.CodePersistenceFailure),
			zap.Error(err))
		return
	}

	handler, ok := w.registry.Resolve(item.OperationKey)
	if !ok {
		unknownErr := shared.NewUnknownOperationKeyError(item.OperationKey)
		w.finishAttempt(ctx, store, tenantCode, item, unknownErr, log)
		return
	}

	w.finishAttempt(ctx, store, tenantCode, item, handler.Handle(ctx, db, item), log)
}

// finishAttempt records the outcome of one executed attempt
func (w *Worker) finishAttempt(ctx context.Context, store *GormStore, tenantCode string, item *outbox.QueueItem, handlerErr error, log *zap.Logger) {
	var entry *outbox.LogEntry

	if handlerErr != nil {
		item.MarkFailed(handlerErr.Error())
		entry = outbox.NewLogEntry(item, outbox.StatusFailed, handlerErr.Error())
		if item.Exhausted(w.config.MaxAttempts) {
			log.Warn("Item abandoned after exhausting attempts",
				zap.Int("attempts", item.Attempts),
				zap.String("last_error", item.LastError))
		} else {
			log.Info("Attempt failed, item stays eligible",
				zap.Int("attempts", item.Attempts),
				zap.Error(handlerErr))
		}
	} else {
		item.MarkSucceeded()
		entry = outbox.NewLogEntry(item, outbox.StatusSucceeded, "")
		log.Debug("Item processed", zap.Int("attempts", item.Attempts))
	}

	if err := store.Update(ctx, item); err != nil {
		log.Error("Failed to persist attempt outcome",
			zap.String("code", shared.CodePersistenceFailure),
			zap.Error(err))
		return
	}
	if err := store.AppendLog(ctx, entry); err != nil {
		log.Error("Failed to append audit log entry",
			zap.String("code", shared.CodePersistenceFailure),
			zap.Error(err))
	}

	if handlerErr == nil && w.dedup != nil {
		if _, err := w.dedup.MarkProcessed(ctx, tenantCode, item.RequestRef, w.config.Dedup.TTL); err != nil {
			log.Warn("Failed to record processed reference", zap.Error(err))
		}
	}
}

// suppressDuplicate consults the optional dedup guard. A recorded reference
// means a previous attempt completed but its success was lost mid-crash; the
// item is marked succeeded without re-running the handler. Guard errors fail
// open so an unavailable guard never blocks delivery.
func (w *Worker) suppressDuplicate(ctx context.Context, store *GormStore, tenantCode string, item *outbox.QueueItem, log *zap.Logger) bool {
	if w.dedup == nil {
		return false
	}

	processed, err := w.dedup.IsProcessed(ctx, tenantCode, item.RequestRef)
	if err != nil {
		log.Warn("Dedup guard unavailable, proceeding", zap.Error(err))
		return false
	}
	if !processed {
		return false
	}

	item.MarkSucceeded()
	if err := store.Update(ctx, item); err != nil {
		log.Error("Failed to persist suppressed duplicate",
			zap.String("code", shared.CodePersistenceFailure),
			zap.Error(err))
		return true
	}
	if err := store.AppendLog(ctx, outbox.NewLogEntry(item, outbox.StatusSucceeded, "duplicate delivery suppressed")); err != nil {
		log.Error("Failed to append audit log entry", zap.Error(err))
	}
	log.Info("Duplicate delivery suppressed")
	return true
}
