package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ets2dash/tdashboard/internal/formatter"
	"github.com/ets2dash/tdashboard/internal/locale"
	"github.com/ets2dash/tdashboard/internal/render"
	"github.com/ets2dash/tdashboard/pkg/core"
)

// Output formats accepted by --output.
const (
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputTable = "table"
)

type formatResult struct {
	Locale   string         `json:"locale" yaml:"locale"`
	Derived  map[string]any `json:"derived" yaml:"derived"`
	Commands []core.Command `json:"commands,omitempty" yaml:"commands,omitempty"`
}

func newFormatCmd() *cobra.Command {
	var (
		output        string
		withCommands  bool
		width, height float64
	)
	cmd := &cobra.Command{
		Use:   "format <snapshot.json|->",
		Short: "Format one telemetry snapshot and print the derived fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !lo.Contains([]string{outputJSON, outputYAML, outputTable}, output) {
				return fmt.Errorf("unknown output format: %s", output)
			}

			snap, err := readSnapshot(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			l := locale.Resolve(locale.FromEnvironment(viper.GetString("language")))
			res, err := formatSnapshot(snap, l, withCommands)
			if err != nil {
				return err
			}
			if withCommands && width > 0 && height > 0 {
				res.Commands = append(render.Scale(width, height).Commands(), res.Commands...)
			}
			return writeResult(cmd.OutOrStdout(), output, res)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format: json, yaml or table")
	cmd.Flags().BoolVar(&withCommands, "commands", false, "include render commands")
	cmd.Flags().Float64Var(&width, "width", 0, "window width; with --height, prepend viewport scaling to --commands")
	cmd.Flags().Float64Var(&height, "height", 0, "window height in pixels")
	return cmd
}

func readSnapshot(path string, stdin io.Reader) (*core.Snapshot, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func formatSnapshot(snap *core.Snapshot, l locale.Locale, withCommands bool) (formatResult, error) {
	d := formatter.New(nil, l).Format(snap)

	// Round-trip through JSON so every output format uses the wire field names.
	raw, err := json.Marshal(d)
	if err != nil {
		return formatResult{}, fmt.Errorf("encode derived: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return formatResult{}, fmt.Errorf("decode derived: %w", err)
	}

	res := formatResult{Locale: l.String(), Derived: fields}
	if withCommands {
		res.Commands = render.Render(snap, d, l)
	}
	return res, nil
}

func writeResult(w io.Writer, output string, res formatResult) error {
	switch output {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case outputTable:
		writeTables(w, res)
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(res)
	}
}

func writeTables(w io.Writer, res formatResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("locale " + res.Locale)
	t.AppendHeader(table.Row{"Field", "Value"})

	keys := lo.Keys(res.Derived)
	slices.Sort(keys)
	for _, k := range keys {
		t.AppendRow(table.Row{k, displayValue(res.Derived[k])})
	}
	t.Render()

	if len(res.Commands) == 0 {
		return
	}
	ct := table.NewWriter()
	ct.SetOutputMirror(w)
	ct.SetStyle(table.StyleRounded)
	ct.AppendHeader(table.Row{"#", "Kind", "Selector", "Index", "Property", "Value"})
	for i, c := range res.Commands {
		index := ""
		if c.Index != nil {
			index = strconv.Itoa(*c.Index)
		}
		ct.AppendRow(table.Row{i + 1, c.Kind, c.Selector, index, c.Property, c.Value})
	}
	ct.Render()
}

func displayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return strconv.Quote(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
