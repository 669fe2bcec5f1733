package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/joestump/sitekit/internal/pager"
)

// newWindowCmd computes a paginator window offline, handy when tuning
// page_count_limit and approx_button_width for a theme.
func newWindowCmd() *cobra.Command {
	var (
		total, active, size int
		width, buttonWidth  int
	)
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Compute a paginator window",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sizer pager.Sizer = pager.Fixed(size)
			if width > 0 {
				sizer = pager.Auto{ApproxButtonWidth: buttonWidth, Fallback: size}
			}
			win := pager.Compute(total, active, sizer.Size(width))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(win)
		},
	}
	cmd.Flags().IntVar(&total, "total", 0, "total number of pages")
	cmd.Flags().IntVar(&active, "active", 1, "active page (1-based)")
	cmd.Flags().IntVar(&size, "size", 5, "window size when no width is given")
	cmd.Flags().IntVar(&width, "width", 0, "viewport width in pixels; enables automatic sizing")
	cmd.Flags().IntVar(&buttonWidth, "button-width", 90, "approximate button width in pixels")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}
