package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/repositories"
)

// Worker backfills the vector index: documents uploaded without an embedding
// get embedded and upserted in the background. The analysis path itself is
// synchronous; this only services the best-effort search cache.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueDocument(docID uuid.UUID)
}

type worker struct {
	docRepo      repositories.DocumentRepository
	matcher      MatcherService
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	logger       *zap.Logger
}

func NewWorker(
	docRepo repositories.DocumentRepository,
	matcher MatcherService,
	concurrency int,
	pollInterval time.Duration,
	logger *zap.Logger,
) Worker {
	return &worker{
		docRepo:      docRepo,
		matcher:      matcher,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		logger:       logger,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting embedding backfill worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollUnembeddedDocuments()
}

// Stop implements Worker.
func (w *worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("embedding backfill worker stopped")
}

// EnqueueDocument implements Worker.
func (w *worker) EnqueueDocument(docID uuid.UUID) {
	select {
	case w.jobQueue <- docID:
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue document", zap.String("document_id", docID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case docID := <-w.jobQueue:
			if err := w.processDocument(ctx, docID); err != nil {
				w.logger.Warn("failed to backfill document embedding",
					zap.Int("worker_id", workerID),
					zap.String("document_id", docID.String()),
					zap.Error(err),
				)
			}
		}
	}
}

func (w *worker) processDocument(ctx context.Context, docID uuid.UUID) error {
	doc, err := w.docRepo.FindByID(docID)
	if err != nil {
		return err
	}

	// Already embedded via the analysis path.
	if doc.HasEmbedding {
		return nil
	}

	return w.matcher.IndexDocument(ctx, doc)
}

func (w *worker) pollUnembeddedDocuments() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			docs, err := w.docRepo.FindWithoutEmbeddings(10)
			if err != nil {
				w.logger.Warn("failed to fetch documents without embeddings", zap.Error(err))
				continue
			}

			for _, doc := range docs {
				w.EnqueueDocument(doc.ID)
			}
		}
	}
}
