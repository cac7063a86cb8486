package cmd

import (
	"fmt"
	"os"

	"storefront/internal/seed"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCacheCmd(opts *options) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the local product cache",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show how many products are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.store.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to count cached products: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Store:    %s\n", a.cfg.Store.Driver)
			fmt.Fprintf(out, "Cached:   %d products\n", n)
			fmt.Fprintf(out, "Network:  %s\n", networkLabel(a.monitor.Online()))
			return nil
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached product",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the cache without --yes")
			}

			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}

			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Cache cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm clearing the cache")

	var outPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the cached catalogue as a seed bundle",
		Long: `Write every cached product to a gzip-compressed JSON-lines seed bundle.
The bundle can be loaded into an empty cache on server start-up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			products, err := a.store.ReadAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read cache: %w", err)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}

			if err := seed.Write(f, products); err != nil {
				f.Close()
				return fmt.Errorf("failed to write seed bundle: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write seed bundle: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", len(products), outPath)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "products.jsonl.gz", "output file")

	cacheCmd.AddCommand(statusCmd, clearCmd, exportCmd)
	return cacheCmd
}
