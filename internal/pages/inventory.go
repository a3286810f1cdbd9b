package pages

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
	"github.com/angeloszaimis/saucedemo-e2e/internal/uiutil"
)

// Sort options of the product list.
const (
	SortNameAsc      = "az"
	SortNameDesc     = "za"
	SortPriceLowHigh = "lohi"
	SortPriceHighLow = "hilo"
)

var ErrUnknownSort = errors.New("unknown sort option")

var sortOptions = []string{SortNameAsc, SortNameDesc, SortPriceLowHigh, SortPriceHighLow}

type InventoryPage struct {
	base
}

func NewInventoryPage(u *uiutil.Utils, baseURL string) *InventoryPage {
	return &InventoryPage{base{u: u, baseURL: baseURL}}
}

func (p *InventoryPage) Goto(ctx context.Context) error {
	return p.open(ctx, PathInventory)
}

func (p *InventoryPage) List() browser.Locator {
	return p.locator(selInventoryList)
}

func (p *InventoryPage) Item(i int) browser.Locator {
	return p.locator(selInventoryItem).Nth(i)
}

func (p *InventoryPage) ItemName(i int) browser.Locator {
	return p.Item(i).Locator(selItemName)
}

func (p *InventoryPage) ItemPrice(i int) browser.Locator {
	return p.Item(i).Locator(selItemPrice)
}

func (p *InventoryPage) ItemImage(i int) browser.Locator {
	return p.Item(i).Locator("img")
}

func (p *InventoryPage) Images() browser.Locator {
	return p.locator(selItemImage)
}

func (p *InventoryPage) CartBadge() browser.Locator {
	return p.locator(selCartBadge)
}

func (p *InventoryPage) ProductCount(ctx context.Context) (int, error) {
	return p.locator(selInventoryItem).Count(ctx)
}

// AddButton returns the i-th "Add to cart" button still on the page.
func (p *InventoryPage) AddButton(i int) browser.Locator {
	return p.locator(selAddToCart).Nth(i)
}

// AddProductToCart clicks the i-th "Add to cart" button still on the page.
// Added products switch to "Remove", so index 0 always adds the next one.
func (p *InventoryPage) AddProductToCart(ctx context.Context, i int) error {
	return p.AddButton(i).Click(ctx)
}

func (p *InventoryPage) RemoveProductFromCart(ctx context.Context, i int) error {
	return p.locator(selRemove).Nth(i).Click(ctx)
}

// CartBadgeCount returns the number on the cart badge, 0 when there is no
// badge.
func (p *InventoryPage) CartBadgeCount(ctx context.Context) (int, error) {
	badge := p.CartBadge()

	n, err := badge.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	text, err := badge.TextContent(ctx)
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("parse cart badge %q: %w", text, err)
	}
	return count, nil
}

func (p *InventoryPage) GoToCart(ctx context.Context) error {
	return p.locator(selCartLink).Click(ctx)
}

func (p *InventoryPage) SortBy(ctx context.Context, option string) error {
	if !slices.Contains(sortOptions, option) {
		return fmt.Errorf("%w: %q", ErrUnknownSort, option)
	}
	return p.locator(selSort).SelectOption(ctx, option)
}

func (p *InventoryPage) SelectedSort(ctx context.Context) (string, error) {
	return p.locator(selSort).InputValue(ctx)
}

// ProductPrices returns the listed prices in page order.
func (p *InventoryPage) ProductPrices(ctx context.Context) ([]float64, error) {
	texts, err := p.locator(selItemPrice).AllTextContents(ctx)
	if err != nil {
		return nil, err
	}
	return parsePrices(texts)
}

func parsePrices(texts []string) ([]float64, error) {
	prices := make([]float64, 0, len(texts))
	for _, t := range texts {
		price, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(t), "$"), 64)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", t, err)
		}
		prices = append(prices, price)
	}
	return prices, nil
}

func (p *InventoryPage) ProductNames(ctx context.Context) ([]string, error) {
	return p.u.GetAllTextContent(ctx, selItemName)
}

func (p *InventoryPage) OpenMenu(ctx context.Context) error {
	return p.locator(selMenuButton).Click(ctx)
}

// Logout opens the side menu and clicks its logout link through the retry
// helper; the menu slides in, so the link may not be clickable at once.
func (p *InventoryPage) Logout(ctx context.Context) error {
	if err := p.OpenMenu(ctx); err != nil {
		return err
	}
	return p.u.ClickWithRetry(ctx, selLogoutLink, 0)
}
