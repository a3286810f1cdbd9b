package fixture

import (
	"log/slog"

	"github.com/angeloszaimis/saucedemo-e2e/config"
	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
)

// BrowserOptions maps the browser and timeout sections of cfg onto driver
// options.
func BrowserOptions(cfg *config.Config, log *slog.Logger) browser.Options {
	return browser.Options{
		Driver:            cfg.Browser.Driver,
		Headless:          cfg.Browser.Headless,
		SlowMo:            cfg.Browser.SlowMoDuration(),
		Width:             cfg.Browser.Width,
		Height:            cfg.Browser.Height,
		NavigationTimeout: cfg.Timeouts.NavigationTimeout(),
		ActionTimeout:     cfg.Timeouts.DefaultTimeout(),
		Install:           cfg.Browser.Install,
		Logger:            log,
	}
}
