// Package runner turns script files into finished runs: read, preprocess,
// parse, execute against a fresh browser session, and persist the report
// artifacts.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/terrier-cli/internal/browser"
	"github.com/xkilldash9x/terrier-cli/internal/config"
	"github.com/xkilldash9x/terrier-cli/internal/datatable"
	"github.com/xkilldash9x/terrier-cli/internal/interpreter"
	"github.com/xkilldash9x/terrier-cli/internal/script"
)

// SessionFactory creates browser sessions. Each script run gets its own.
type SessionFactory interface {
	NewSession(ctx context.Context) (browser.Browser, error)
}

// Result describes one finished script run.
type Result struct {
	Script string
	// Failed reports a script-level failure: an unrecovered error or a
	// fatal one. The run still produces its log and screenshots.
	Failed bool
	// LogPath is where the execution report was written.
	LogPath string
	// Screenshots are the paths of the captured images, in order.
	Screenshots []string
}

// Runner executes script files.
type Runner struct {
	sessions SessionFactory
	cfg      config.RunnerConfig
	logger   *zap.Logger
}

func New(sessions SessionFactory, cfg config.RunnerConfig, logger *zap.Logger) *Runner {
	return &Runner{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.Named("runner"),
	}
}

// RunAll executes the given script files, at most cfg.Concurrency at a time,
// each with its own browser session. The returned error covers
// infrastructure failures only; script-level failures are reported per
// result.
func (r *Runner) RunAll(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for n, path := range paths {
		g.Go(func() error {
			res, err := r.RunFile(gctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[n] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunFile executes one script file end to end and persists its artifacts.
func (r *Runner) RunFile(ctx context.Context, path string) (Result, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res := Result{Script: path}
	logger := r.logger.With(zap.String("script", name))

	raw, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("could not read script: %w", err)
	}
	src := string(raw)

	if r.cfg.Datatable != "" {
		rows, err := datatable.Load(r.cfg.Datatable)
		if err != nil {
			return res, fmt.Errorf("could not load datatable: %w", err)
		}
		src = datatable.Preprocess(src, rows)
		logger.Info("Expanded script from datatable.", zap.Int("rows", len(rows)))
	}

	// Parse before any browser work so a bad script never costs a tab.
	stmts, err := script.Parse(src)
	if err != nil {
		return res, fmt.Errorf("script did not parse: %w", err)
	}

	sess, err := r.sessions.NewSession(ctx)
	if err != nil {
		return res, fmt.Errorf("could not create browser session: %w", err)
	}

	interp := interpreter.New(sess, stmts, interpreter.Options{
		Demo:   r.cfg.Demo,
		Pacing: r.cfg.Pacing,
		Logger: logger,
	})

	logger.Info("Executing script.")
	failed, runErr := interp.Interpret(ctx, true)
	res.Failed = failed

	// The report is written even when the run died mid-way; a partial
	// log is exactly what the author needs to see.
	if err := r.persist(name, interp, &res); err != nil {
		return res, err
	}
	if runErr != nil {
		return res, fmt.Errorf("run aborted: %w", runErr)
	}

	if failed {
		logger.Warn("Script finished with errors.", zap.String("log", res.LogPath))
	} else {
		logger.Info("Script finished.", zap.String("log", res.LogPath))
	}
	return res, nil
}

func (r *Runner) persist(name string, interp *interpreter.Interpreter, res *Result) error {
	outDir := r.cfg.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	res.LogPath = filepath.Join(outDir, name+".log")
	if err := os.WriteFile(res.LogPath, []byte(interp.Log()), 0o644); err != nil {
		return fmt.Errorf("could not write log: %w", err)
	}

	shots := interp.Screenshots()
	if len(shots) == 0 {
		return nil
	}
	shotDir := filepath.Join(outDir, "screenshots")
	if err := os.MkdirAll(shotDir, 0o755); err != nil {
		return fmt.Errorf("could not create screenshots directory: %w", err)
	}
	for n, png := range shots {
		p := filepath.Join(shotDir, fmt.Sprintf("%s_screenshot_%d.png", name, n))
		if err := os.WriteFile(p, png, 0o644); err != nil {
			return fmt.Errorf("could not write screenshot: %w", err)
		}
		res.Screenshots = append(res.Screenshots, p)
	}
	return nil
}
