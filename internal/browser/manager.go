package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/terrier-cli/internal/config"
)

const shutdownGracePeriod = 15 * time.Second

// Manager owns the headless browser process. Every script run gets its own
// session (tab) derived from the manager's allocator context.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc

	// wg tracks open sessions for a graceful shutdown.
	wg sync.WaitGroup
}

// NewManager launches the browser process and verifies it responds.
func NewManager(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
	}

	opts := m.buildAllocatorOptions()
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	m.allocatorCtx = allocCtx
	m.allocatorCancel = cancel

	// Confirm the browser starts and responds before accepting work.
	testCtx, cancelTest := context.WithTimeout(allocCtx, 30*time.Second)
	testCtx, cancelTestCtx := chromedp.NewContext(testCtx)
	defer cancelTestCtx()
	defer cancelTest()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		m.allocatorCancel()
		return nil, fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.logger.Info("Browser launched and responsive.")
	return m, nil
}

// buildAllocatorOptions assembles the launch flags for the browser process.
func (m *Manager) buildAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		chromedp.Flag("headless", m.cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", m.cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", m.cfg.Headless),
	)

	// Custom arguments from configuration, "--flag" or "--flag=value".
	for _, arg := range m.cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		flagName := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(flagName, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(flagName, true))
		}
	}

	// Flags required when running inside containers.
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	return opts
}

// NewSession opens a fresh tab and returns it as the interpreter-facing
// capability.
func (m *Manager) NewSession(ctx context.Context) (Browser, error) {
	sessCtx, cancel := chromedp.NewContext(m.allocatorCtx)

	// Materialize the tab so the session is usable immediately.
	if err := chromedp.Run(sessCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("could not open browser tab: %w", err)
	}

	m.wg.Add(1)
	sess := newSession(sessCtx, cancel, m.cfg, m.logger, m.wg.Done)
	m.logger.Debug("Session opened.", zap.String("session_id", sess.id))
	return sess, nil
}

// Shutdown waits for open sessions to close, then terminates the browser
// process.
func (m *Manager) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	grace, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer cancel()

	select {
	case <-done:
	case <-grace.Done():
		m.logger.Warn("Shutdown grace period exceeded; terminating browser with sessions still open.")
	}

	if m.allocatorCancel != nil {
		m.allocatorCancel()
		<-m.allocatorCtx.Done()
	}
	return nil
}
