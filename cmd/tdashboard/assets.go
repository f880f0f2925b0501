package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ets2dash/tdashboard/internal/render"
)

func newAssetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assets <skin-dir>",
		Short: "Report preload images missing from a skin directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("skin directory: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("skin directory: %s is not a directory", args[0])
			}

			missing, err := render.MissingAssets(os.DirFS(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(missing) == 0 {
				fmt.Fprintf(out, "all %d preload images present\n", len(render.PreloadImages))
				return nil
			}
			for _, name := range missing {
				fmt.Fprintln(out, "missing:", name)
			}
			return fmt.Errorf("%d of %d preload images missing", len(missing), len(render.PreloadImages))
		},
	}
}
