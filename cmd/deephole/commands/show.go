package commands

import (
	"os"

	"deephole/internal/snapshot"
	"deephole/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

var showCmd = &cobra.Command{
	Use:   "show [path/to/today.json]",
	Short: "Prints the snapshot as a table.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "today.json"
		if len(args) > 0 {
			path = args[0]
		}

		snap, err := snapshot.Load(path)
		if err != nil {
			serviceutil.Fatal("failed to read snapshot", err)
		}

		t := newTable()
		t.SetTitle("%s (updated %s)", snap.Date, snap.LastUpdated)
		t.AppendHeader(table.Row{"Zone", "Remaining", "Source"})
		for _, e := range snap.DeepHole {
			t.AppendRow(table.Row{e.Zone, remainingText(e), e.Source})
		}
		t.Render()
	},
}
