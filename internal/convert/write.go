package convert

import (
	"context"
	"path/filepath"

	"cdlconvert/internal/fileutil"
	"cdlconvert/internal/logging"
	"cdlconvert/internal/services"
)

const stageWrite = "write"

// Write stores every rendered output of report under dir while holding the
// directory lock. A name already written in this run is not overwritten;
// that output fails with a conflict instead. Jobs whose outputs were all
// written move to done.
func (c *Converter) Write(ctx context.Context, dir string, report *Report) error {
	lock, err := fileutil.LockDir(dir)
	if err != nil {
		return services.Wrap(services.ErrConflict, stageWrite, "lock destination", dir, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn("failed to release destination lock", logging.Error(err))
		}
	}()

	ctx = services.WithStage(ctx, stageWrite)
	seen := make(map[string]struct{})
	for _, job := range report.all() {
		if job.State != StateSerialized {
			continue
		}
		for _, out := range job.Outputs {
			if out.Err != nil {
				continue
			}
			if _, dup := seen[out.Name]; dup {
				out.Err = services.Wrap(services.ErrConflict, stageWrite, "write output", out.Name+" was already written in this run", nil)
				continue
			}
			seen[out.Name] = struct{}{}
			path := filepath.Join(dir, out.Name)
			if err := fileutil.WriteFileAtomic(path, []byte(out.Content), 0o644); err != nil {
				out.Err = services.Wrap(services.ErrIO, stageWrite, "write output", path, err)
				c.logFailure(services.WithFile(ctx, job.Source), stageWrite, out.Err)
				continue
			}
			out.Path = path
			logging.WithContext(services.WithFile(ctx, job.Source), c.logger).Debug("output written",
				logging.String(logging.FieldFormat, string(out.Format)),
				logging.String("path", path),
			)
		}
		if job.Failed() {
			job.State = StateFailed
		} else {
			job.State = StateDone
		}
	}
	return nil
}
