package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
)

// ErrNotVisible marks an element that did not become visible in time.
// Both drivers wrap their timeout errors with it.
var ErrNotVisible = errors.New("element not visible")

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown browser driver")

// Locator is a lazy reference to zero or more elements matched by a CSS
// selector. Nothing is resolved until an action runs.
type Locator interface {
	Locator(selector string) Locator
	Nth(i int) Locator
	First() Locator

	Count(ctx context.Context) (int, error)
	WaitVisible(ctx context.Context, timeout time.Duration) error
	Click(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	TextContent(ctx context.Context) (string, error)
	AllTextContents(ctx context.Context) ([]string, error)
	InputValue(ctx context.Context) (string, error)
	SelectOption(ctx context.Context, value string) error
	IsVisible(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	CSS(ctx context.Context, property string) (string, error)
	ScrollIntoView(ctx context.Context) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// Page is one isolated tab: its own cookies and storage.
type Page interface {
	Locator(selector string) Locator

	Goto(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	URL(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)

	Cookies(ctx context.Context) ([]Cookie, error)
	ClearCookies(ctx context.Context) error

	// WaitForResponse blocks until a response whose URL contains urlPattern
	// has been received completely.
	WaitForResponse(ctx context.Context, urlPattern string, timeout time.Duration) (*Response, error)

	// OnDialog registers a handler that accepts or dismisses every alert,
	// confirm and prompt the page opens from now on.
	OnDialog(accept bool)

	Close() error
}

type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  float64
	HTTPOnly bool
	Secure   bool
}

type Response struct {
	URL    string
	Status int
	Body   []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", r.URL, err)
	}
	return nil
}

type Options struct {
	Driver            string
	Headless          bool
	SlowMo            time.Duration
	Width             int
	Height            int
	NavigationTimeout time.Duration
	ActionTimeout     time.Duration
	// Install downloads the driver and browser binaries before launch
	// (playwright only).
	Install bool
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = 1280
	}
	if o.Height == 0 {
		o.Height = 720
	}
	if o.NavigationTimeout == 0 {
		o.NavigationTimeout = 30 * time.Second
	}
	if o.ActionTimeout == 0 {
		o.ActionTimeout = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Open launches a browser with the requested driver.
func Open(ctx context.Context, opts Options) (Browser, error) {
	opts = opts.withDefaults()

	switch opts.Driver {
	case "", DriverPlaywright:
		return openPlaywright(opts)
	case DriverChromedp:
		return openChromedp(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
)
