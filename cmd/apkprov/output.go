package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorRed    = "\033[0;31m"
	colorHeader = "\033[1m\033[4m"
)

func (st *cliState) useColor(cmd *cobra.Command) bool {
	if st.noColor {
		return false
	}

	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	stat, err := out.Stat()
	if err != nil {
		return false
	}

	return (stat.Mode() & os.ModeCharDevice) != 0
}

func colorize(enabled bool, code, value string) string {
	if !enabled {
		return value
	}

	return code + value + "\033[0m"
}

func (st *cliState) println(cmd *cobra.Command, code, msg string) {
	fmt.Fprintln(cmd.OutOrStdout(), colorize(st.useColor(cmd), code, msg))
}

func printRow(w io.Writer, cols ...any) {
	fmt.Fprintf(w, "%-32s %-24s %-14s %s\n", cols...)
}

// outputFormat is a --format flag limited to text and json.
type outputFormat string

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string { return string(*f) }
func (f *outputFormat) Type() string   { return "format" }

func (f *outputFormat) Set(v string) error {
	switch v {
	case "text", "json":
		*f = outputFormat(v)
		return nil
	}
	return fmt.Errorf("unknown format %q, want text or json", v)
}
