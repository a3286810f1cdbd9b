package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/goccy/go-json"
)

const pollInterval = 100 * time.Millisecond

var errNotAttached = errors.New("element not attached")

// refs numbers the elements actions are dispatched to. The driver tags the
// resolved node with the number and targets it through a data attribute.
var refs atomic.Uint64

// resolveJS evaluates a locator chain against the document and returns the
// matching elements in document order.
const resolveJS = `(function(parts) {
	let nodes = [document];
	for (const p of parts) {
		if (p.s !== undefined) {
			const next = [];
			for (const n of nodes) next.push(...n.querySelectorAll(p.s));
			nodes = next;
		} else {
			nodes = nodes[p.n] ? [nodes[p.n]] : [];
		}
	}
	return nodes.filter(n => n !== document);
})`

type chromedpBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opts        Options
}

func openChromedp(ctx context.Context, opts Options) (Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			opts.Logger.Debug(fmt.Sprintf(format, args...), slog.String("driver", DriverChromedp))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			opts.Logger.Error(fmt.Sprintf(format, args...), slog.String("driver", DriverChromedp))
		}),
	)

	// The first Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	opts.Logger.Info("browser launched",
		slog.String("driver", DriverChromedp),
		slog.Bool("headless", opts.Headless))

	return &chromedpBrowser{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		opts:        opts,
	}, nil
}

func (b *chromedpBrowser) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tab, cancel := chromedp.NewContext(b.ctx, chromedp.WithNewBrowserContext())
	p := &chromedpPage{
		tab:        tab,
		cancel:     cancel,
		navigation: b.opts.NavigationTimeout,
		action:     b.opts.ActionTimeout,
		slowMo:     b.opts.SlowMo,
		logger:     b.opts.Logger,
	}

	if err := p.run(ctx, p.navigation,
		network.Enable(),
		chromedp.EmulateViewport(int64(b.opts.Width), int64(b.opts.Height)),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("new page: %w", err)
	}

	return p, nil
}

func (b *chromedpBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	return err
}

type chromedpPage struct {
	tab        context.Context
	cancel     context.CancelFunc
	navigation time.Duration
	action     time.Duration
	slowMo     time.Duration
	logger     *slog.Logger
}

// run executes actions on the tab, bounded by timeout and by ctx.
func (p *chromedpPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.slowMo > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.slowMo):
		}
	}

	runCtx, cancel := context.WithTimeout(p.tab, remaining(ctx, timeout))
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *chromedpPage) Locator(selector string) Locator {
	return &chromedpLocator{page: p, parts: []locatorPart{{Selector: &selector}}}
}

func (p *chromedpPage) Goto(ctx context.Context, url string) error {
	if err := p.run(ctx, p.navigation,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *chromedpPage) Reload(ctx context.Context) error {
	if err := p.run(ctx, p.navigation,
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

func (p *chromedpPage) URL(ctx context.Context) (string, error) {
	var url string
	if err := p.run(ctx, p.action, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (p *chromedpPage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, p.action, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Cookies returns the cookies visible to the current URL.
func (p *chromedpPage) Cookies(ctx context.Context) ([]Cookie, error) {
	var raw []*network.Cookie
	err := p.run(ctx, p.action, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = network.GetCookies().Do(ctx)
		return err
	}))
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
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	return cookies, nil
}

func (p *chromedpPage) ClearCookies(ctx context.Context) error {
	return p.run(ctx, p.action, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.ClearBrowserCookies().Do(ctx)
	}))
}

func (p *chromedpPage) WaitForResponse(ctx context.Context, urlPattern string, timeout time.Duration) (*Response, error) {
	type hit struct {
		id   network.RequestID
		resp *network.Response
	}

	listenCtx, cancel := context.WithCancel(p.tab)
	defer cancel()

	var (
		mu      sync.Mutex
		pending = map[network.RequestID]*network.Response{}
		done    = make(chan hit, 1)
	)

	chromedp.ListenTarget(listenCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventResponseReceived:
			if strings.Contains(e.Response.URL, urlPattern) {
				mu.Lock()
				pending[e.RequestID] = e.Response
				mu.Unlock()
			}
		case *network.EventLoadingFinished:
			mu.Lock()
			resp, ok := pending[e.RequestID]
			mu.Unlock()
			if ok {
				select {
				case done <- hit{id: e.RequestID, resp: resp}:
				default:
				}
			}
		}
	})

	timer := time.NewTimer(remaining(ctx, timeout))
	defer timer.Stop()

	var h hit
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("wait for response matching %q: timed out after %s", urlPattern, timeout)
	case h = <-done:
	}

	var body []byte
	err := p.run(ctx, p.action, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		body, err = network.GetResponseBody(h.id).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", h.resp.URL, err)
	}

	return &Response{URL: h.resp.URL, Status: int(h.resp.Status), Body: body}, nil
}

func (p *chromedpPage) OnDialog(accept bool) {
	chromedp.ListenTarget(p.tab, func(ev any) {
		e, ok := ev.(*cdppage.EventJavascriptDialogOpening)
		if !ok {
			return
		}
		// Listeners must not block the event loop.
		go func() {
			if err := chromedp.Run(p.tab, cdppage.HandleJavaScriptDialog(accept)); err != nil {
				p.logger.Warn("dialog handling failed",
					slog.String("type", e.Type.String()),
					slog.Bool("accept", accept),
					slog.Any("err", err))
			}
		}()
	})
}

func (p *chromedpPage) Close() error {
	err := chromedp.Cancel(p.tab)
	p.cancel()
	return err
}

// locatorPart is either a CSS selector applied to every current match or
// an index picking one of them.
type locatorPart struct {
	Selector *string `json:"s,omitempty"`
	Nth      *int    `json:"n,omitempty"`
}

type chromedpLocator struct {
	page  *chromedpPage
	parts []locatorPart
}

func (l *chromedpLocator) with(part locatorPart) *chromedpLocator {
	parts := make([]locatorPart, len(l.parts), len(l.parts)+1)
	copy(parts, l.parts)
	return &chromedpLocator{page: l.page, parts: append(parts, part)}
}

func (l *chromedpLocator) Locator(selector string) Locator {
	return l.with(locatorPart{Selector: &selector})
}

func (l *chromedpLocator) Nth(i int) Locator {
	return l.with(locatorPart{Nth: &i})
}

func (l *chromedpLocator) First() Locator {
	return l.Nth(0)
}

func (l *chromedpLocator) String() string {
	var b strings.Builder
	for i, part := range l.parts {
		switch {
		case part.Selector != nil:
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(*part.Selector)
		case part.Nth != nil:
			b.WriteString(" >> nth=" + strconv.Itoa(*part.Nth))
		}
	}
	return b.String()
}

// nodes returns a JS expression evaluating to the matched elements.
func (l *chromedpLocator) nodes() string {
	parts, _ := json.Marshal(l.parts)
	return fmt.Sprintf("%s(%s)", resolveJS, parts)
}

// onFirst returns a JS expression running body with el bound to the first
// match, or yielding fallback when nothing matches.
func (l *chromedpLocator) onFirst(body, fallback string) string {
	return fmt.Sprintf("(() => { const el = %s[0]; if (!el) return %s; %s })()", l.nodes(), fallback, body)
}

func (l *chromedpLocator) eval(ctx context.Context, expr string, out any) error {
	return l.page.run(ctx, l.page.action, chromedp.Evaluate(expr, out))
}

func (l *chromedpLocator) poll(ctx context.Context, timeout time.Duration, expr string, sentinel error) error {
	deadline := time.Now().Add(remaining(ctx, timeout))
	for {
		var ok bool
		if err := l.eval(ctx, expr, &ok); err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s within %s", sentinel, l, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (l *chromedpLocator) visibleExpr() string {
	return l.onFirst(`const s = getComputedStyle(el);
		const r = el.getBoundingClientRect();
		return s.visibility !== 'hidden' && s.display !== 'none' && r.width > 0 && r.height > 0;`, "false")
}

func (l *chromedpLocator) waitAttached(ctx context.Context) error {
	return l.poll(ctx, l.page.action, l.nodes()+".length > 0", errNotAttached)
}

// target waits for the first match to be visible and returns a selector
// addressing exactly that node.
func (l *chromedpLocator) target(ctx context.Context) (string, error) {
	if err := l.poll(ctx, l.page.action, l.visibleExpr(), ErrNotVisible); err != nil {
		return "", err
	}

	ref := strconv.FormatUint(refs.Add(1), 10)
	var got string
	expr := l.onFirst(fmt.Sprintf(`if (!el.hasAttribute('data-e2e-ref')) el.setAttribute('data-e2e-ref', %q);
		return el.getAttribute('data-e2e-ref');`, ref), `""`)
	if err := l.eval(ctx, expr, &got); err != nil {
		return "", err
	}
	if got == "" {
		return "", fmt.Errorf("%w: %s", errNotAttached, l)
	}
	return fmt.Sprintf(`[data-e2e-ref="%s"]`, got), nil
}

func (l *chromedpLocator) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.eval(ctx, l.nodes()+".length", &n); err != nil {
		return 0, err
	}
	return n, nil
}

func (l *chromedpLocator) WaitVisible(ctx context.Context, timeout time.Duration) error {
	return l.poll(ctx, timeout, l.visibleExpr(), ErrNotVisible)
}

func (l *chromedpLocator) Click(ctx context.Context) error {
	sel, err := l.target(ctx)
	if err != nil {
		return err
	}
	return l.page.run(ctx, l.page.action, chromedp.Click(sel, chromedp.ByQuery))
}

func (l *chromedpLocator) Fill(ctx context.Context, value string) error {
	sel, err := l.target(ctx)
	if err != nil {
		return err
	}
	return l.page.run(ctx, l.page.action,
		chromedp.Clear(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	)
}

func (l *chromedpLocator) TextContent(ctx context.Context) (string, error) {
	if err := l.waitAttached(ctx); err != nil {
		return "", err
	}
	var text string
	if err := l.eval(ctx, l.onFirst(`return el.textContent || "";`, `""`), &text); err != nil {
		return "", err
	}
	return text, nil
}

func (l *chromedpLocator) AllTextContents(ctx context.Context) ([]string, error) {
	var texts []string
	if err := l.eval(ctx, l.nodes()+`.map(el => el.textContent || "")`, &texts); err != nil {
		return nil, err
	}
	return texts, nil
}

func (l *chromedpLocator) InputValue(ctx context.Context) (string, error) {
	if err := l.waitAttached(ctx); err != nil {
		return "", err
	}
	var value string
	if err := l.eval(ctx, l.onFirst(`return el.value ?? "";`, `""`), &value); err != nil {
		return "", err
	}
	return value, nil
}

// SelectOption goes through the native value setter so frameworks tracking
// the previous value see the change event.
func (l *chromedpLocator) SelectOption(ctx context.Context, value string) error {
	if _, err := l.target(ctx); err != nil {
		return err
	}

	arg, _ := json.Marshal(value)
	var ok bool
	expr := l.onFirst(fmt.Sprintf(`const v = %s;
		if (![...el.options].some(o => o.value === v)) return false;
		Object.getOwnPropertyDescriptor(HTMLSelectElement.prototype, 'value').set.call(el, v);
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;`, arg), "false")
	if err := l.eval(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("select %s: no option with value %q", l, value)
	}
	return nil
}

func (l *chromedpLocator) IsVisible(ctx context.Context) (bool, error) {
	var ok bool
	if err := l.eval(ctx, l.visibleExpr(), &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (l *chromedpLocator) IsEnabled(ctx context.Context) (bool, error) {
	if err := l.waitAttached(ctx); err != nil {
		return false, err
	}
	var ok bool
	if err := l.eval(ctx, l.onFirst(`return !el.disabled;`, "false"), &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (l *chromedpLocator) CSS(ctx context.Context, property string) (string, error) {
	if err := l.waitAttached(ctx); err != nil {
		return "", err
	}
	arg, _ := json.Marshal(property)
	var value string
	expr := l.onFirst(fmt.Sprintf(`return getComputedStyle(el).getPropertyValue(%s);`, arg), `""`)
	if err := l.eval(ctx, expr, &value); err != nil {
		return "", err
	}
	return value, nil
}

func (l *chromedpLocator) ScrollIntoView(ctx context.Context) error {
	sel, err := l.target(ctx)
	if err != nil {
		return err
	}
	return l.page.run(ctx, l.page.action, chromedp.ScrollIntoView(sel, chromedp.ByQuery))
}

func (l *chromedpLocator) Screenshot(ctx context.Context) ([]byte, error) {
	sel, err := l.target(ctx)
	if err != nil {
		return nil, err
	}
	var buf []byte
	if err := l.page.run(ctx, l.page.action, chromedp.Screenshot(sel, &buf, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	return buf, nil
}
