package uiutil

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
)

const (
	DefaultScreenshotDir = "screenshots"
	DefaultWaitTimeout   = 10 * time.Second
)

// RetryHook observes every failed attempt that is followed by another one.
type RetryHook func(selector string, attempt int, err error)

type Utils struct {
	page          browser.Page
	policy        RetryPolicy
	fs            afero.Fs
	screenshotDir string
	onRetry       RetryHook
}

type Option func(*Utils)

func WithPolicy(p RetryPolicy) Option {
	return func(u *Utils) { u.policy = p }
}

func WithFs(fs afero.Fs) Option {
	return func(u *Utils) { u.fs = fs }
}

func WithScreenshotDir(dir string) Option {
	return func(u *Utils) { u.screenshotDir = dir }
}

func WithRetryHook(h RetryHook) Option {
	return func(u *Utils) { u.onRetry = h }
}

func New(page browser.Page, opts ...Option) (*Utils, error) {
	u := &Utils{
		page:          page,
		policy:        DefaultRetryPolicy(),
		fs:            afero.NewOsFs(),
		screenshotDir: DefaultScreenshotDir,
	}
	for _, opt := range opts {
		opt(u)
	}

	if err := u.policy.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Utils) Page() browser.Page {
	return u.page
}

func (u *Utils) Policy() RetryPolicy {
	return u.policy
}

// WaitForElement waits for selector to become visible. A zero timeout means
// DefaultWaitTimeout.
func (u *Utils) WaitForElement(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	return u.page.Locator(selector).WaitVisible(ctx, timeout)
}

func (u *Utils) GetAllTextContent(ctx context.Context, selector string) ([]string, error) {
	return u.page.Locator(selector).AllTextContents(ctx)
}

func (u *Utils) ScrollIntoView(ctx context.Context, selector string) error {
	return u.page.Locator(selector).ScrollIntoView(ctx)
}

// TakeScreenshot captures the viewport to <dir>/<name>.png and returns the
// path.
func (u *Utils) TakeScreenshot(ctx context.Context, name string) (string, error) {
	shot, err := u.page.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("capture screenshot %s: %w", name, err)
	}

	if exists, _ := afero.DirExists(u.fs, u.screenshotDir); !exists {
		if err := u.fs.MkdirAll(u.screenshotDir, 0o755); err != nil {
			return "", fmt.Errorf("create screenshot directory %s: %w", u.screenshotDir, err)
		}
	}

	path := filepath.Join(u.screenshotDir, name+".png")
	if err := afero.WriteFile(u.fs, path, shot, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot %s: %w", path, err)
	}
	return path, nil
}

func (u *Utils) HandleDialog(accept bool) {
	u.page.OnDialog(accept)
}

// WaitForAPIResponse waits for a response whose URL contains urlPattern and,
// when v is not nil, decodes its JSON body into v. A zero timeout means
// DefaultWaitTimeout.
func (u *Utils) WaitForAPIResponse(ctx context.Context, urlPattern string, timeout time.Duration, v any) (*browser.Response, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}

	resp, err := u.page.WaitForResponse(ctx, urlPattern, timeout)
	if err != nil {
		return nil, err
	}

	if v != nil {
		if err := resp.JSON(v); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func (u *Utils) GetCookie(ctx context.Context, name string) (string, bool, error) {
	cookies, err := u.page.Cookies(ctx)
	if err != nil {
		return "", false, err
	}

	for _, c := range cookies {
		if c.Name == name {
			return c.Value, true, nil
		}
	}
	return "", false, nil
}

func (u *Utils) ClearCookies(ctx context.Context) error {
	return u.page.ClearCookies(ctx)
}
