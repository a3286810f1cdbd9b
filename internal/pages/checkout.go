package pages

import (
	"context"
	"strings"

	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
	"github.com/angeloszaimis/saucedemo-e2e/internal/uiutil"
)

type CheckoutPage struct {
	base
}

func NewCheckoutPage(u *uiutil.Utils, baseURL string) *CheckoutPage {
	return &CheckoutPage{base{u: u, baseURL: baseURL}}
}

func (p *CheckoutPage) Goto(ctx context.Context) error {
	return p.open(ctx, PathCheckoutStepOne)
}

func (p *CheckoutPage) Form() browser.Locator {
	return p.locator(selCheckoutInfo)
}

func (p *CheckoutPage) FillFirstName(ctx context.Context, firstName string) error {
	return p.locator(selFirstName).Fill(ctx, firstName)
}

func (p *CheckoutPage) FillLastName(ctx context.Context, lastName string) error {
	return p.locator(selLastName).Fill(ctx, lastName)
}

func (p *CheckoutPage) FillZipCode(ctx context.Context, zip string) error {
	return p.locator(selPostalCode).Fill(ctx, zip)
}

func (p *CheckoutPage) FillInfo(ctx context.Context, firstName, lastName, zip string) error {
	if err := p.FillFirstName(ctx, firstName); err != nil {
		return err
	}
	if err := p.FillLastName(ctx, lastName); err != nil {
		return err
	}
	return p.FillZipCode(ctx, zip)
}

func (p *CheckoutPage) Continue(ctx context.Context) error {
	return p.locator(selContinue).Click(ctx)
}

func (p *CheckoutPage) ErrorMessage(ctx context.Context) (string, error) {
	return p.text(ctx, selError)
}

func (p *CheckoutPage) ErrorBanner() browser.Locator {
	return p.locator(selError)
}

type CheckoutOverviewPage struct {
	base
}

func NewCheckoutOverviewPage(u *uiutil.Utils, baseURL string) *CheckoutOverviewPage {
	return &CheckoutOverviewPage{base{u: u, baseURL: baseURL}}
}

func (p *CheckoutOverviewPage) Summary() browser.Locator {
	return p.locator(selSummary)
}

func (p *CheckoutOverviewPage) amount(ctx context.Context, selector string) (float64, error) {
	text, err := p.text(ctx, selector)
	if err != nil {
		return 0, err
	}
	return uiutil.ExtractNumber(text), nil
}

func (p *CheckoutOverviewPage) Subtotal(ctx context.Context) (float64, error) {
	return p.amount(ctx, selSubtotal)
}

func (p *CheckoutOverviewPage) Tax(ctx context.Context) (float64, error) {
	return p.amount(ctx, selTax)
}

func (p *CheckoutOverviewPage) Total(ctx context.Context) (float64, error) {
	return p.amount(ctx, selTotal)
}

func (p *CheckoutOverviewPage) Finish(ctx context.Context) error {
	return p.locator(selFinish).Click(ctx)
}

type CheckoutCompletePage struct {
	base
}

func NewCheckoutCompletePage(u *uiutil.Utils, baseURL string) *CheckoutCompletePage {
	return &CheckoutCompletePage{base{u: u, baseURL: baseURL}}
}

func (p *CheckoutCompletePage) Header() browser.Locator {
	return p.locator(selCompleteHeader)
}

func (p *CheckoutCompletePage) SuccessMessage(ctx context.Context) (string, error) {
	return p.text(ctx, selCompleteHeader)
}

// IsOrderComplete reports whether the confirmation header is shown and
// thanks the customer for the order.
func (p *CheckoutCompletePage) IsOrderComplete(ctx context.Context) (bool, error) {
	header := p.Header()

	visible, err := header.IsVisible(ctx)
	if err != nil || !visible {
		return false, err
	}

	text, err := header.TextContent(ctx)
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(orderCompletePhrase)), nil
}
