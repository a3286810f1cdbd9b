package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/angeloszaimis/saucedemo-e2e/config"
	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
	"github.com/angeloszaimis/saucedemo-e2e/internal/pages"
	"github.com/angeloszaimis/saucedemo-e2e/internal/report"
	"github.com/angeloszaimis/saucedemo-e2e/internal/uiutil"
	"github.com/angeloszaimis/saucedemo-e2e/pkg/logger"
)

const authenticatedSession = "Authenticated Session"

type Env struct {
	Config *config.Config
	Page   browser.Page
	Log    *logger.Logger
	Utils  *uiutil.Utils

	Login     *pages.LoginPage
	Inventory *pages.InventoryPage
	Cart      *pages.CartPage
	Checkout  *pages.CheckoutPage
	Overview  *pages.CheckoutOverviewPage
	Complete  *pages.CheckoutCompletePage

	testName  string
	collector *report.Collector
	now       func() time.Time
}

type settings struct {
	fs        afero.Fs
	console   io.Writer
	collector *report.Collector
	now       func() time.Time
}

type Option func(*settings)

func WithFs(fs afero.Fs) Option {
	return func(s *settings) { s.fs = fs }
}

// WithConsole sets where log lines are echoed; nil silences the echo.
func WithConsole(w io.Writer) Option {
	return func(s *settings) { s.console = w }
}

func WithCollector(c *report.Collector) Option {
	return func(s *settings) { s.collector = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// New builds the environment of one test on page.
func New(cfg *config.Config, page browser.Page, testName string, opts ...Option) (*Env, error) {
	s := settings{
		fs:      afero.NewOsFs(),
		console: os.Stdout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}

	log, err := logger.Create(testName,
		logger.WithDir(cfg.Paths.Logs),
		logger.WithFs(s.fs),
		logger.WithConsole(s.console),
		logger.WithClock(s.now),
	)
	if err != nil {
		return nil, err
	}

	env := &Env{
		Config:    cfg,
		Page:      page,
		Log:       log,
		testName:  log.TestName(),
		collector: s.collector,
		now:       s.now,
	}

	env.Utils, err = uiutil.New(page,
		uiutil.WithPolicy(RetryPolicy(cfg)),
		uiutil.WithFs(s.fs),
		uiutil.WithScreenshotDir(cfg.Paths.Screenshots),
		uiutil.WithRetryHook(env.onRetry),
	)
	if err != nil {
		return nil, err
	}

	base := cfg.App.BaseURL
	env.Login = pages.NewLoginPage(env.Utils, base)
	env.Inventory = pages.NewInventoryPage(env.Utils, base)
	env.Cart = pages.NewCartPage(env.Utils, base)
	env.Checkout = pages.NewCheckoutPage(env.Utils, base)
	env.Overview = pages.NewCheckoutOverviewPage(env.Utils, base)
	env.Complete = pages.NewCheckoutCompletePage(env.Utils, base)

	for _, name := range []string{"LoginPage", "InventoryPage", "CartPage", "CheckoutPage", "CheckoutOverviewPage", "CheckoutCompletePage"} {
		if err := log.Info(name + " initialized"); err != nil {
			return nil, err
		}
	}

	return env, nil
}

// RetryPolicy converts the retry section of cfg.
func RetryPolicy(cfg *config.Config) uiutil.RetryPolicy {
	return uiutil.RetryPolicy{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		VisibleTimeout: cfg.Retry.VisibleTimeoutDuration(),
		Backoff:        cfg.Retry.BackoffDuration(),
	}
}

func (e *Env) TestName() string {
	return e.testName
}

func (e *Env) emit(event report.Event) {
	if e.collector == nil {
		return
	}
	event.Test = e.testName
	event.Timestamp = e.now()
	e.collector.Emit(event)
}

func (e *Env) onRetry(selector string, attempt int, err error) {
	// The retry hook has no way to fail the interaction it reports on.
	_ = e.Log.Warn("Retrying "+selector, map[string]any{
		"selector": selector,
		"attempt":  attempt,
		"error":    err.Error(),
	})
	e.emit(report.Event{Type: report.EventRetryAttempted, Selector: selector})
}

// Start opens the test banner with a human readable title.
func (e *Env) Start(title string) error {
	e.emit(report.Event{Type: report.EventTestStarted})
	return e.Log.TestStart(title)
}

func (e *Env) Step(n int, description string) error {
	e.emit(report.Event{Type: report.EventStepLogged, Step: n})
	return e.Log.Step(n, description)
}

// Finish closes the test banner. With a failure it logs the cause and saves
// a best-effort screenshot; the result is failure itself, joined with any
// error from writing those log lines. Without a failure it returns the
// logging error, if any.
func (e *Env) Finish(ctx context.Context, failure error) error {
	if failure == nil {
		e.emit(report.Event{Type: report.EventTestFinished, Passed: true})
		return e.Log.TestEnd(e.testName, logger.StatusPassed)
	}

	logErrs := []error{e.Log.Error("Test failed", failure)}

	name := fmt.Sprintf("%s-failure-%d", fileSafe(e.testName), e.now().UnixMilli())
	if path, err := e.Utils.TakeScreenshot(ctx, name); err != nil {
		logErrs = append(logErrs, e.Log.Warn("Failure screenshot not captured", err))
	} else {
		logErrs = append(logErrs, e.Log.Info("Failure screenshot saved", map[string]string{"path": path}))
	}

	logErrs = append(logErrs, e.Log.TestEnd(e.testName, logger.StatusFailed))
	e.emit(report.Event{Type: report.EventTestFinished, Passed: false, Failure: failure.Error()})

	if err := errors.Join(logErrs...); err != nil {
		return errors.Join(failure, fmt.Errorf("log failure: %w", err))
	}
	return failure
}

// Authenticate logs in with the configured valid user and lands on the
// inventory.
func (e *Env) Authenticate(ctx context.Context) error {
	err := e.authenticate(ctx)
	if err != nil {
		return errors.Join(
			fmt.Errorf("authenticate: %w", err),
			e.Log.Error("Authentication failed", err),
		)
	}
	return e.Log.Success("Authentication successful")
}

func (e *Env) authenticate(ctx context.Context) error {
	if err := e.Log.TestStart(authenticatedSession); err != nil {
		return err
	}

	if err := e.Step(1, "Navigating to login page"); err != nil {
		return err
	}
	if err := e.Login.Goto(ctx); err != nil {
		return err
	}

	if err := e.Step(2, "Logging in with valid credentials"); err != nil {
		return err
	}
	if err := e.Login.Login(ctx, e.Config.Users.ValidUsername, e.Config.Users.ValidPassword); err != nil {
		return err
	}

	if err := e.Step(3, "Verifying authentication success"); err != nil {
		return err
	}
	return e.Inventory.Goto(ctx)
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
}
