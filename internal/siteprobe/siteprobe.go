package siteprobe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	maxBody = 4 << 20

	// MinInterval is the shortest wait WaitReachable keeps between probes.
	MinInterval = 100 * time.Millisecond
)

var ErrUnreachable = errors.New("site unreachable")

type Result struct {
	URL     string
	Status  int
	Body    []byte
	Elapsed time.Duration
}

// OK reports a 2xx or 3xx answer.
func (r *Result) OK() bool {
	return r.Status >= 200 && r.Status < 400
}

func NewClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
	}
}

// Probe sends one GET to url and reads up to 4 MiB of the body. A nil client
// means NewClient.
func Probe(ctx context.Context, client *http.Client, url string) (*Result, error) {
	if client == nil {
		client = NewClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}

	start := time.Now()
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}

	return &Result{
		URL:     url,
		Status:  res.StatusCode,
		Body:    body,
		Elapsed: time.Since(start),
	}, nil
}

// WaitReachable probes url right away and then every interval until it gets
// an OK answer or attempts probes have failed. Intervals shorter than
// MinInterval are raised to it.
func WaitReachable(
	ctx context.Context,
	client *http.Client,
	url string,
	interval time.Duration,
	attempts int,
	logger *slog.Logger,
) (*Result, error) {
	if attempts < 1 {
		attempts = 1
	}
	if interval < MinInterval {
		interval = MinInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for attempt := 1; ; attempt++ {
		res, err := Probe(ctx, client, url)
		switch {
		case err != nil:
			lastErr = err
		case !res.OK():
			lastErr = fmt.Errorf("status %d", res.Status)
		default:
			logger.Info("Site is up",
				slog.String("url", url),
				slog.Int("status", res.Status),
				slog.Duration("elapsed", res.Elapsed),
				slog.Int("attempt", attempt))
			return res, nil
		}

		logger.Warn("Site is down",
			slog.String("url", url),
			slog.Int("attempt", attempt),
			slog.Any("err", lastErr))

		if attempt >= attempts {
			return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrUnreachable, url, attempts, lastErr)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
