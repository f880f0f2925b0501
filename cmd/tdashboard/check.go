package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ets2dash/tdashboard/internal/api"
	"github.com/ets2dash/tdashboard/internal/config"
)

const checkTimeout = 10 * time.Second

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the telemetry server is reachable and list its skins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
			defer cancel()
			return checkServer(ctx, api.New(config.GetSourceConfig().URL), cmd)
		},
	}
}

// checkServer runs the health check, lists the skins and walks the
// SignalR handshake through to a ping.
func checkServer(ctx context.Context, client *api.Client, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	start := time.Now()

	if err := client.Healthcheck(ctx); err != nil {
		return fmt.Errorf("telemetry server %s: %w", client.BaseURL(), err)
	}
	fmt.Fprintf(out, "telemetry server %s is up\n", client.BaseURL())

	skins, err := client.Skins(ctx)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(humanize.Comma(int64(len(skins))) + " skins")
	t.AppendHeader(table.Row{"Name", "Title", "Author", "Size"})
	for _, s := range skins {
		t.AppendRow(table.Row{s.Name, s.Title, s.Author, fmt.Sprintf("%gx%g", s.Width, s.Height)})
	}
	t.Render()

	if _, err := client.Negotiate(ctx); err != nil {
		return err
	}
	if _, err := client.Connect(ctx); err != nil {
		return err
	}
	if err := client.Start(ctx); err != nil {
		return err
	}
	defer func() {
		abortCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = client.Abort(abortCtx)
	}()
	if err := client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "signalr handshake ok in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
