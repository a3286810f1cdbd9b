package uiutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
)

var ErrInvalidPolicy = errors.New("invalid retry policy")

// RetryPolicy bounds the retry loop. MaxAttempts counts the first try.
type RetryPolicy struct {
	MaxAttempts    int
	VisibleTimeout time.Duration
	Backoff        time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		VisibleTimeout: 5 * time.Second,
		Backoff:        500 * time.Millisecond,
	}
}

func (p RetryPolicy) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.MaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&p.VisibleTimeout, validation.Required, validation.Min(time.Duration(0)).Exclusive()),
		validation.Field(&p.Backoff, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	return nil
}

// ClickWithRetry clicks selector once it is visible. maxRetries <= 0 uses
// the policy's MaxAttempts.
func (u *Utils) ClickWithRetry(ctx context.Context, selector string, maxRetries int) error {
	return u.retry(ctx, selector, maxRetries, func(loc browser.Locator) error {
		return loc.Click(ctx)
	})
}

// FillWithRetry replaces the value of selector once it is visible.
// maxRetries <= 0 uses the policy's MaxAttempts.
func (u *Utils) FillWithRetry(ctx context.Context, selector, value string, maxRetries int) error {
	return u.retry(ctx, selector, maxRetries, func(loc browser.Locator) error {
		return loc.Fill(ctx, value)
	})
}

func (u *Utils) retry(ctx context.Context, selector string, maxRetries int, act func(browser.Locator) error) error {
	attempts := maxRetries
	if attempts <= 0 {
		attempts = u.policy.MaxAttempts
	}

	loc := u.page.Locator(selector)
	attempt := 0
	op := func() error {
		attempt++
		if err := loc.WaitVisible(ctx, u.policy.VisibleTimeout); err != nil {
			return err
		}
		return act(loc)
	}

	// WithMaxRetries(b, 0) never stops, so a single attempt bypasses backoff.
	if attempts == 1 {
		return op()
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(u.policy.Backoff), uint64(attempts-1)),
		ctx,
	)

	return backoff.RetryNotify(op, b, func(err error, _ time.Duration) {
		if u.onRetry != nil {
			u.onRetry(selector, attempt, err)
		}
	})
}
