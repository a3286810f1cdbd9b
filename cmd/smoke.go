package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/angeloszaimis/saucedemo-e2e/config"
	"github.com/angeloszaimis/saucedemo-e2e/internal/browser"
	"github.com/angeloszaimis/saucedemo-e2e/internal/fixture"
	"github.com/angeloszaimis/saucedemo-e2e/internal/pages"
	"github.com/angeloszaimis/saucedemo-e2e/internal/report"
)

const smokeTestName = "smoke-login"

func newSmokeCmd(a *app) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Log in through a real browser and check the inventory loads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			b, err := browser.Open(ctx, fixture.BrowserOptions(a.cfg, a.log))
			if err != nil {
				return err
			}
			defer b.Close()

			page, err := b.NewPage(ctx)
			if err != nil {
				return err
			}
			defer page.Close()

			var opts []fixture.Option
			var collector *report.Collector
			stop := func() {}
			if summary {
				collectCtx, cancel := context.WithCancel(context.Background())
				collector = report.NewCollector(64, a.log)
				collector.Start(collectCtx)
				stop = func() {
					cancel()
					<-collector.Done()
				}
				opts = append(opts, fixture.WithCollector(collector))
			}

			runErr := runSmoke(ctx, a.cfg, page, cmd.OutOrStdout(), opts...)

			stop()
			if collector != nil {
				path := filepath.Join(a.cfg.Paths.Logs, "summary-"+smokeTestName+".json")
				if err := collector.WriteJSON(afero.NewOsFs(), path); err != nil {
					a.log.Error("Failed to write run summary", slog.Any("err", err))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "summary: %s\n", path)
				}
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "also write a JSON run summary next to the logs")
	return cmd
}

// runSmoke logs in with the configured user on page and waits for the
// inventory. Every step goes to the test log, whose path is printed to out.
func runSmoke(ctx context.Context, cfg *config.Config, page browser.Page, out io.Writer, opts ...fixture.Option) error {
	env, err := fixture.New(cfg, page, smokeTestName, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "log: %s\n", env.Log.LogFilePath())

	if err := env.Start("Smoke login"); err != nil {
		return err
	}
	return env.Finish(ctx, smoke(ctx, env))
}

func smoke(ctx context.Context, env *fixture.Env) error {
	cfg := env.Config

	if err := env.Step(1, "Navigating to login page"); err != nil {
		return err
	}
	if err := env.Login.Goto(ctx); err != nil {
		return err
	}

	if err := env.Step(2, "Logging in with valid credentials"); err != nil {
		return err
	}
	if err := env.Login.Login(ctx, cfg.Users.ValidUsername, cfg.Users.ValidPassword); err != nil {
		return err
	}

	if err := env.Step(3, "Verifying redirect to inventory page"); err != nil {
		return err
	}
	want := pages.JoinURL(cfg.App.BaseURL, pages.PathInventory)
	if err := waitForURL(ctx, env.Page, want, cfg.Timeouts.NavigationTimeout()); err != nil {
		return err
	}
	if err := env.Inventory.List().WaitVisible(ctx, cfg.Timeouts.ElementTimeout()); err != nil {
		return err
	}

	return env.Log.Success("User successfully logged in and redirected")
}

func waitForURL(ctx context.Context, page browser.Page, want string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var got string
	for {
		var err error
		got, err = page.URL(ctx)
		if err == nil && got == want {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("expected url %s, still at %s after %s", want, got, timeout)
		case <-ticker.C:
		}
	}
}
