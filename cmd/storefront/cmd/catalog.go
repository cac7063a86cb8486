package cmd

import (
	"fmt"

	"storefront/internal/model"

	"github.com/spf13/cobra"
)

func newCatalogCmd(opts *options) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the product catalogue",
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reload the first page of the catalogue",
		Long: `Fetch the first page from the remote catalogue and replace the local
cache with it. When offline, or when the fetch fails, the cached products
are shown instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			view, err := a.synchronizer.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}

			printView(cmd.OutOrStdout(), view)
			return nil
		},
	}

	var pages int
	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through the catalogue",
		Long: `Refresh the catalogue and then load further pages the way a scrolling
client would, stopping early once every product has been shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}

			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			view, err := a.synchronizer.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}

			var notices []*model.Notice
			notices = appendNotice(notices, view.Notice)

			for i := 1; i < pages && view.HasMore(); i++ {
				view, err = a.synchronizer.LoadMore(cmd.Context())
				if err != nil {
					return fmt.Errorf("load more failed: %w", err)
				}
				notices = appendNotice(notices, view.Notice)
			}

			view.Notice = nil
			printView(cmd.OutOrStdout(), view)
			for _, n := range notices {
				printNotice(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	browseCmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to load")

	catalogCmd.AddCommand(refreshCmd, browseCmd)
	return catalogCmd
}

func appendNotice(notices []*model.Notice, n *model.Notice) []*model.Notice {
	if n == nil {
		return notices
	}
	for _, seen := range notices {
		if seen.Kind == n.Kind {
			return notices
		}
	}
	return append(notices, n)
}
