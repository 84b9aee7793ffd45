package project

import (
	"context"
	"runtime"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/frederic-klein/dustpkg/internal/config"
	"github.com/frederic-klein/dustpkg/internal/validate"
)

// CheckResult is the outcome of verifying one project directory.
type CheckResult struct {
	Dir string
	Err error
}

// OK reports whether the project's lock file matched its manifest.
func (r CheckResult) OK() bool { return r.Err == nil }

// ConfigFunc returns the configuration for the project in dir.
type ConfigFunc func(dir string) (config.Config, error)

// CheckAll verifies each directory in dirs, running up to jobs checks at a
// time. Each project is verified under the configuration loadCfg returns for
// its directory. Results are returned in the order of dirs. A cancelled
// context stops scheduling further checks; unscheduled directories report
// ctx.Err().
func CheckAll(ctx context.Context, fsys afero.Fs, dirs []string, loadCfg ConfigFunc, log *zap.SugaredLogger, jobs int, opts validate.Options) []CheckResult {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]CheckResult, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, dir := range dirs {
		results[i].Dir = dir
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			cfg, err := loadCfg(dir)
			if err != nil {
				results[i].Err = err
				return nil
			}
			p := New(fsys, dir, cfg, log.With("dir", dir))
			results[i].Err = p.Verify(opts)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Err != nil {
			log.Debugw("check failed", "dir", r.Dir, "error", r.Err)
		}
	}
	return results
}
