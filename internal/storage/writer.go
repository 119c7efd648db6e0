package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

// WriterService owns the hit log file; it is the only goroutine writing
// to it, so producers just send on the channel.
type WriterService struct {
	FilePath string
	Logger   *slog.Logger
}

// Start appends every hit received on input to the file as NDJSON until
// input is closed.
func (w *WriterService) Start(wg *sync.WaitGroup, input <-chan domain.Hit) {
	defer wg.Done()
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(w.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("Hit log unavailable", "path", w.FilePath, "err", err)
			drain(input)
			return
		}
	}
	f, err := os.OpenFile(w.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger.Error("Hit log unavailable", "path", w.FilePath, "err", err)
		drain(input)
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)

	for hit := range input {
		// Write as NDJSON
		if err := enc.Encode(hit); err != nil {
			logger.Warn("Hit log write failed", "id", hit.ID, "err", err)
		}
	}
}

// drain keeps producers from blocking when the file cannot be opened.
func drain(input <-chan domain.Hit) {
	for range input {
	}
}
