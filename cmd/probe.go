package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/saucedemo-e2e/internal/pages"
	"github.com/angeloszaimis/saucedemo-e2e/internal/siteprobe"
)

func newProbeCmd(a *app) *cobra.Command {
	var (
		attempts int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe [path...]",
		Short: "Check that storefront pages answer over plain HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{pages.PathLogin}
			}

			client := siteprobe.NewClient()
			out := cmd.OutOrStdout()

			var errs []error
			for _, path := range args {
				url := pages.JoinURL(a.cfg.App.BaseURL, path)
				res, err := siteprobe.WaitReachable(cmd.Context(), client, url, interval, attempts, a.log)
				if err != nil {
					fmt.Fprintf(out, "%s\tDOWN\n", url)
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(out, "%s\t%d\t%s\n", url, res.Status, res.Elapsed.Round(time.Millisecond))
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().IntVar(&attempts, "attempts", 3, "probes per page before giving up")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "wait between probes")
	return cmd
}
