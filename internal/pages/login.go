package pages

import (
	"context"

	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
	"github.com/angeloszaimis/saucedemo-e2e/internal/uiutil"
)

type LoginPage struct {
	base
}

func NewLoginPage(u *uiutil.Utils, baseURL string) *LoginPage {
	return &LoginPage{base{u: u, baseURL: baseURL}}
}

func (p *LoginPage) Goto(ctx context.Context) error {
	return p.open(ctx, PathLogin)
}

func (p *LoginPage) FillUsername(ctx context.Context, username string) error {
	return p.locator(selUsername).Fill(ctx, username)
}

func (p *LoginPage) FillPassword(ctx context.Context, password string) error {
	return p.locator(selPassword).Fill(ctx, password)
}

func (p *LoginPage) ClickLogin(ctx context.Context) error {
	return p.locator(selLoginButton).Click(ctx)
}

func (p *LoginPage) Login(ctx context.Context, username, password string) error {
	if err := p.FillUsername(ctx, username); err != nil {
		return err
	}
	if err := p.FillPassword(ctx, password); err != nil {
		return err
	}
	return p.ClickLogin(ctx)
}

func (p *LoginPage) ErrorMessage(ctx context.Context) (string, error) {
	return p.text(ctx, selError)
}

func (p *LoginPage) ErrorBanner() browser.Locator {
	return p.locator(selError)
}

func (p *LoginPage) Logo() browser.Locator {
	return p.locator(selLoginLogo)
}

func (p *LoginPage) Username() browser.Locator {
	return p.locator(selUsername)
}

func (p *LoginPage) Password() browser.Locator {
	return p.locator(selPassword)
}

func (p *LoginPage) LoginButton() browser.Locator {
	return p.locator(selLoginButton)
}
