package limiter

import (
	"context"
	"fmt"

	"github.com/qlimitd/qlimitd/internal/rules"
	"github.com/qlimitd/qlimitd/pkg/logger"
)

// Applied records one successful limit application in the downloader's
// native unit, with the human-readable rendering used for notifications.
type Applied struct {
	UploadKBps    int64
	DownloadKBps  int64
	UploadText    string
	DownloadText  string
}

// Applier converts a rule's limits and pushes them to a SpeedLimiter.
// It performs no retries: a failed apply is reported and left to the next
// evaluation cycle.
type Applier struct {
	backend SpeedLimiter
	log     logger.Logger
}

// NewApplier creates an Applier for the given backend.
func NewApplier(backend SpeedLimiter, log logger.Logger) *Applier {
	return &Applier{backend: backend, log: log}
}

// Apply checks the backend, converts r's limits to KB/s and sets them.
// No state is mutated on failure.
func (a *Applier) Apply(ctx context.Context, r rules.Rule) (*Applied, error) {
	if a.backend == nil {
		return nil, ErrNoDownloader
	}
	if err := a.backend.Check(ctx); err != nil {
		return nil, fmt.Errorf("downloader unavailable: %w", err)
	}

	up := ToKBps(r.UploadLimit)
	dl := ToKBps(r.DownloadLimit)
	if err := a.backend.SetSpeedLimit(ctx, up, dl); err != nil {
		return nil, fmt.Errorf("setting speed limit: %w", err)
	}

	applied := &Applied{
		UploadKBps:   up,
		DownloadKBps: dl,
		UploadText:   FormatKBps(up),
		DownloadText: FormatKBps(dl),
	}
	a.log.Info("speed limit applied - upload: %s, download: %s", applied.UploadText, applied.DownloadText)
	return applied, nil
}
