package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
	"github.com/angeloszaimis/saucedemo-e2e/internal/uiutil"
)

type base struct {
	u       *uiutil.Utils
	baseURL string
}

func (b base) locator(selector string) browser.Locator {
	return b.u.Page().Locator(selector)
}

func (b base) open(ctx context.Context, path string) error {
	return b.u.Page().Goto(ctx, JoinURL(b.baseURL, path))
}

func (b base) text(ctx context.Context, selector string) (string, error) {
	text, err := b.locator(selector).TextContent(ctx)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", selector, err)
	}
	return text, nil
}

// JoinURL appends path to baseURL with exactly one slash between them.
func JoinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
