package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/muskan-shah-02/dokydoc/internal/pkg/timeutil"
	"github.com/muskan-shah-02/dokydoc/internal/repo"
)

// AnalysisReaperJob fails documents stuck in processing, typically after a
// crash mid-pipeline. The in-memory running guard dies with the process, so
// without the reaper such documents would report processing forever.
type AnalysisReaperJob struct {
	docs   *repo.DocumentRepo
	maxAge time.Duration
}

func NewAnalysisReaperJob(docs *repo.DocumentRepo, maxAge time.Duration) *AnalysisReaperJob {
	return &AnalysisReaperJob{docs: docs, maxAge: maxAge}
}

func (j *AnalysisReaperJob) Name() string {
	return "analysis_reaper"
}

func (j *AnalysisReaperJob) Run(ctx context.Context) error {
	if j.docs == nil || j.maxAge <= 0 {
		return nil
	}
	now := timeutil.NowMilli()
	cutoff := now - j.maxAge.Milliseconds()
	reaped, err := j.docs.FailStale(ctx, cutoff, now)
	if err != nil {
		return err
	}
	if reaped > 0 {
		logutil.GetLogger(ctx).Warn("reaped stale analysis runs", zap.Int64("count", reaped))
	}
	return nil
}
