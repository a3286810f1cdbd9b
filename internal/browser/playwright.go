package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

type playwrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

func openPlaywright(opts Options) (Browser, error) {
	if opts.Install {
		opts.Logger.Info("installing playwright driver and chromium")
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(millis(opts.SlowMo)),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	opts.Logger.Info("browser launched",
		slog.String("driver", DriverPlaywright),
		slog.Bool("headless", opts.Headless),
		slog.String("version", b.Version()))

	return &playwrightBrowser{pw: pw, browser: b, opts: opts}, nil
}

func (b *playwrightBrowser) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: b.opts.Width, Height: b.opts.Height},
	})
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	page.SetDefaultTimeout(millis(b.opts.ActionTimeout))
	page.SetDefaultNavigationTimeout(millis(b.opts.NavigationTimeout))

	return &playwrightPage{
		bctx:   bctx,
		page:   page,
		action: b.opts.ActionTimeout,
		logger: b.opts.Logger,
	}, nil
}

func (b *playwrightBrowser) Close() error {
	return errors.Join(b.browser.Close(), b.pw.Stop())
}

type playwrightPage struct {
	bctx   playwright.BrowserContext
	page   playwright.Page
	action time.Duration
	logger *slog.Logger
}

func (p *playwrightPage) Locator(selector string) Locator {
	return &playwrightLocator{
		loc:      p.page.Locator(selector),
		selector: selector,
		action:   p.action,
	}
}

func (p *playwrightPage) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.page.Goto(url); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.page.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

func (p *playwrightPage) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.URL(), nil
}

func (p *playwrightPage) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.page.Screenshot()
}

func (p *playwrightPage) Cookies(ctx context.Context) ([]Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := p.bctx.Cookies()
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		})
	}
	return cookies, nil
}

func (p *playwrightPage) ClearCookies(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.bctx.ClearCookies()
}

func (p *playwrightPage) WaitForResponse(ctx context.Context, urlPattern string, timeout time.Duration) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := p.page.ExpectResponse(
		func(r playwright.Response) bool { return strings.Contains(r.URL(), urlPattern) },
		func() error { return nil },
		playwright.PageExpectResponseOptions{Timeout: playwright.Float(millis(remaining(ctx, timeout)))},
	)
	if err != nil {
		return nil, fmt.Errorf("wait for response matching %q: %w", urlPattern, err)
	}

	body, err := resp.Body()
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", resp.URL(), err)
	}

	return &Response{URL: resp.URL(), Status: resp.Status(), Body: body}, nil
}

func (p *playwrightPage) OnDialog(accept bool) {
	p.page.OnDialog(func(d playwright.Dialog) {
		var err error
		if accept {
			err = d.Accept()
		} else {
			err = d.Dismiss()
		}
		if err != nil {
			p.logger.Warn("dialog handling failed",
				slog.String("type", d.Type()),
				slog.Bool("accept", accept),
				slog.Any("err", err))
		}
	})
}

func (p *playwrightPage) Close() error {
	return p.bctx.Close()
}

type playwrightLocator struct {
	loc      playwright.Locator
	selector string
	action   time.Duration
}

func (l *playwrightLocator) derive(loc playwright.Locator, selector string) *playwrightLocator {
	return &playwrightLocator{loc: loc, selector: selector, action: l.action}
}

func (l *playwrightLocator) Locator(selector string) Locator {
	return l.derive(l.loc.Locator(selector), l.selector+" "+selector)
}

func (l *playwrightLocator) Nth(i int) Locator {
	return l.derive(l.loc.Nth(i), fmt.Sprintf("%s >> nth=%d", l.selector, i))
}

func (l *playwrightLocator) First() Locator {
	return l.derive(l.loc.First(), l.selector+" >> nth=0")
}

func (l *playwrightLocator) timeout(ctx context.Context) *float64 {
	return playwright.Float(millis(remaining(ctx, l.action)))
}

func (l *playwrightLocator) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return l.loc.Count()
}

func (l *playwrightLocator) WaitVisible(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := l.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(millis(remaining(ctx, timeout))),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s within %s: %v", ErrNotVisible, l.selector, timeout, err)
	}
	return err
}

func (l *playwrightLocator) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.loc.Click(playwright.LocatorClickOptions{Timeout: l.timeout(ctx)})
}

func (l *playwrightLocator) Fill(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.loc.Fill(value, playwright.LocatorFillOptions{Timeout: l.timeout(ctx)})
}

func (l *playwrightLocator) TextContent(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return l.loc.TextContent(playwright.LocatorTextContentOptions{Timeout: l.timeout(ctx)})
}

func (l *playwrightLocator) AllTextContents(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.loc.AllTextContents()
}

func (l *playwrightLocator) InputValue(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return l.loc.InputValue(playwright.LocatorInputValueOptions{Timeout: l.timeout(ctx)})
}

func (l *playwrightLocator) SelectOption(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	values := []string{value}
	_, err := l.loc.SelectOption(
		playwright.SelectOptionValues{Values: &values},
		playwright.LocatorSelectOptionOptions{Timeout: l.timeout(ctx)},
	)
	return err
}

func (l *playwrightLocator) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return l.loc.IsVisible()
}

func (l *playwrightLocator) IsEnabled(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return l.loc.IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: l.timeout(ctx)})
}

func (l *playwrightLocator) CSS(ctx context.Context, property string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	v, err := l.loc.Evaluate(`(el, prop) => getComputedStyle(el).getPropertyValue(prop)`, property)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func (l *playwrightLocator) ScrollIntoView(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: l.timeout(ctx)})
}

func (l *playwrightLocator) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.loc.Screenshot(playwright.LocatorScreenshotOptions{Timeout: l.timeout(ctx)})
}

func millis(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}

// remaining caps d by the time left on ctx.
func remaining(ctx context.Context, d time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			if left < time.Millisecond {
				return time.Millisecond
			}
			return left
		}
	}
	return d
}
