// Package browsertest provides scriptable in-memory implementations of the
// browser interfaces for unit tests.
//
// Elements are registered under the selector chain a locator produces:
// chained selectors are joined by a space and indexes are appended as
// " >> nth=i". A chain with an index that has no element of its own falls
// back to the chain without its last index, so First() on a registered
// selector addresses the same element.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
)

// Element is the scripted state behind one selector chain.
type Element struct {
	Visible  bool
	Disabled bool
	Text     string
	// Texts backs AllTextContents and Count. When nil a single element with
	// Text is assumed.
	Texts  []string
	Value  string
	Styles map[string]string
	Shot   []byte

	// WaitErrs, ClickErrs and FillErrs are consumed one per call; a nil
	// entry or an exhausted list means success.
	WaitErrs  []error
	ClickErrs []error
	FillErrs  []error

	OnClick func()

	Waits    int
	Clicks   int
	Fills    []string
	Selected []string
	Scrolls  int
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

type Page struct {
	mu       sync.Mutex
	elements map[string]*Element

	CurrentURL string
	Visits     []string
	OnGoto     func(url string)
	GotoErr    error
	Reloads    int

	Shot          []byte
	ScreenshotErr error

	Jar          []browser.Cookie
	CookiesErr   error
	ClearedTimes int

	Responses []*browser.Response
	Dialogs   []bool
	Closed    bool
}

func NewPage() *Page {
	return &Page{
		elements: map[string]*Element{},
		Shot:     []byte("page-png"),
	}
}

// Add registers a visible element under selector and returns it for further
// scripting.
func (p *Page) Add(selector string) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()

	el := &Element{Visible: true}
	p.elements[selector] = el
	return el
}

// Element returns the element registered under selector, or nil.
func (p *Page) Element(selector string) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elements[selector]
}

func (p *Page) lookup(key string) *Element {
	if el, ok := p.elements[key]; ok {
		return el
	}
	const marker = " >> nth="
	i := strings.LastIndex(key, marker)
	if i < 0 {
		return nil
	}
	rest := key[i+len(marker):]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		return p.lookup(key[:i] + rest[j:])
	}
	return p.lookup(key[:i])
}

func (p *Page) Locator(selector string) browser.Locator {
	return &locator{page: p, key: selector}
}

func (p *Page) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.GotoErr != nil {
		p.mu.Unlock()
		return p.GotoErr
	}
	p.CurrentURL = url
	p.Visits = append(p.Visits, url)
	hook := p.OnGoto
	p.mu.Unlock()

	if hook != nil {
		hook(url)
	}
	return nil
}

func (p *Page) Reload(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Reloads++
	return ctx.Err()
}

func (p *Page) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CurrentURL, ctx.Err()
}

func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CurrentURL = url
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return p.Shot, ctx.Err()
}

func (p *Page) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CookiesErr != nil {
		return nil, p.CookiesErr
	}
	return append([]browser.Cookie(nil), p.Jar...), ctx.Err()
}

func (p *Page) ClearCookies(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Jar = nil
	p.ClearedTimes++
	return ctx.Err()
}

// WaitForResponse returns the first scripted response whose URL contains
// urlPattern.
func (p *Page) WaitForResponse(ctx context.Context, urlPattern string, timeout time.Duration) (*browser.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.Responses {
		if strings.Contains(r.URL, urlPattern) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("wait for response matching %q: timed out after %s", urlPattern, timeout)
}

func (p *Page) OnDialog(accept bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Dialogs = append(p.Dialogs, accept)
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

type locator struct {
	page *Page
	key  string
}

func (l *locator) Locator(selector string) browser.Locator {
	return &locator{page: l.page, key: l.key + " " + selector}
}

func (l *locator) Nth(i int) browser.Locator {
	return &locator{page: l.page, key: fmt.Sprintf("%s >> nth=%d", l.key, i)}
}

func (l *locator) First() browser.Locator {
	return l.Nth(0)
}

// with runs fn on the resolved element under the page lock.
func (l *locator) with(ctx context.Context, fn func(el *Element) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.page.mu.Lock()
	defer l.page.mu.Unlock()

	el := l.page.lookup(l.key)
	if el == nil {
		return fmt.Errorf("%w: %s", browser.ErrNotVisible, l.key)
	}
	return fn(el)
}

func (l *locator) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.page.mu.Lock()
	defer l.page.mu.Unlock()

	el := l.page.lookup(l.key)
	switch {
	case el == nil:
		return 0, nil
	case el.Texts != nil:
		return len(el.Texts), nil
	default:
		return 1, nil
	}
}

func (l *locator) WaitVisible(ctx context.Context, timeout time.Duration) error {
	return l.with(ctx, func(el *Element) error {
		el.Waits++
		if err := pop(&el.WaitErrs); err != nil {
			return err
		}
		if !el.Visible {
			return fmt.Errorf("%w: %s within %s", browser.ErrNotVisible, l.key, timeout)
		}
		return nil
	})
}

func (l *locator) Click(ctx context.Context) error {
	var hook func()
	err := l.with(ctx, func(el *Element) error {
		el.Clicks++
		if err := pop(&el.ClickErrs); err != nil {
			return err
		}
		hook = el.OnClick
		return nil
	})
	if err == nil && hook != nil {
		hook()
	}
	return err
}

func (l *locator) Fill(ctx context.Context, value string) error {
	return l.with(ctx, func(el *Element) error {
		el.Fills = append(el.Fills, value)
		if err := pop(&el.FillErrs); err != nil {
			return err
		}
		el.Value = value
		return nil
	})
}

func (l *locator) TextContent(ctx context.Context) (string, error) {
	var text string
	err := l.with(ctx, func(el *Element) error {
		text = el.Text
		return nil
	})
	return text, err
}

func (l *locator) AllTextContents(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.page.mu.Lock()
	defer l.page.mu.Unlock()

	el := l.page.lookup(l.key)
	switch {
	case el == nil:
		return []string{}, nil
	case el.Texts != nil:
		return append([]string(nil), el.Texts...), nil
	default:
		return []string{el.Text}, nil
	}
}

func (l *locator) InputValue(ctx context.Context) (string, error) {
	var value string
	err := l.with(ctx, func(el *Element) error {
		value = el.Value
		return nil
	})
	return value, err
}

func (l *locator) SelectOption(ctx context.Context, value string) error {
	return l.with(ctx, func(el *Element) error {
		el.Selected = append(el.Selected, value)
		el.Value = value
		return nil
	})
}

func (l *locator) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	l.page.mu.Lock()
	defer l.page.mu.Unlock()

	el := l.page.lookup(l.key)
	return el != nil && el.Visible, nil
}

func (l *locator) IsEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := l.with(ctx, func(el *Element) error {
		enabled = !el.Disabled
		return nil
	})
	return enabled, err
}

func (l *locator) CSS(ctx context.Context, property string) (string, error) {
	var value string
	err := l.with(ctx, func(el *Element) error {
		value = el.Styles[property]
		return nil
	})
	return value, err
}

func (l *locator) ScrollIntoView(ctx context.Context) error {
	return l.with(ctx, func(el *Element) error {
		el.Scrolls++
		return nil
	})
}

func (l *locator) Screenshot(ctx context.Context) ([]byte, error) {
	var shot []byte
	err := l.with(ctx, func(el *Element) error {
		shot = el.Shot
		if shot == nil {
			shot = []byte("element-png:" + l.key)
		}
		return nil
	})
	return shot, err
}

// Browser hands out fresh Pages, or the ones queued in Pages first.
type Browser struct {
	mu     sync.Mutex
	Pages  []*Page
	Opened []*Page
	Closed bool
}

func (b *Browser) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var p *Page
	if len(b.Pages) > 0 {
		p, b.Pages = b.Pages[0], b.Pages[1:]
	} else {
		p = NewPage()
	}
	b.Opened = append(b.Opened, p)
	return p, nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closed = true
	return nil
}

var (
	_ browser.Page    = (*Page)(nil)
	_ browser.Browser = (*Browser)(nil)
)
