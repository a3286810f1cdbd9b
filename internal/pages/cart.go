package pages

import (
	"context"

	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
	"github.com/angeloszaimis/saucedemo-e2e/internal/uiutil"
)

type CartPage struct {
	base
}

func NewCartPage(u *uiutil.Utils, baseURL string) *CartPage {
	return &CartPage{base{u: u, baseURL: baseURL}}
}

func (p *CartPage) Goto(ctx context.Context) error {
	return p.open(ctx, PathCart)
}

func (p *CartPage) List() browser.Locator {
	return p.locator(selCartList)
}

func (p *CartPage) Item(i int) browser.Locator {
	return p.locator(selCartItem).Nth(i)
}

func (p *CartPage) ItemName(i int) browser.Locator {
	return p.Item(i).Locator(selItemName)
}

func (p *CartPage) ItemPrice(i int) browser.Locator {
	return p.Item(i).Locator(selItemPrice)
}

// ItemPrices returns the prices of the cart lines in page order.
func (p *CartPage) ItemPrices(ctx context.Context) ([]float64, error) {
	texts, err := p.locator(selCartItem + " " + selItemPrice).AllTextContents(ctx)
	if err != nil {
		return nil, err
	}
	return parsePrices(texts)
}

func (p *CartPage) ItemCount(ctx context.Context) (int, error) {
	return p.locator(selCartItem).Count(ctx)
}

func (p *CartPage) RemoveItem(ctx context.Context, i int) error {
	return p.locator(selRemove).Nth(i).Click(ctx)
}

func (p *CartPage) ContinueShopping(ctx context.Context) error {
	return p.locator(selContinueShop).Click(ctx)
}

func (p *CartPage) Checkout(ctx context.Context) error {
	return p.locator(selCheckoutButton).Click(ctx)
}
