package history

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/emberjson/runtests/internal/toolchain"
)

// RenderTable writes runs as an ASCII table to w.
func RenderTable(w io.Writer, runs []Run) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{
		"Run", "Started", "Toolchain", "Duration", "Artifacts", "Failed", "Tests", "Status",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Artifacts", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
	})

	for _, r := range runs {
		t.AppendRow(table.Row{
			shortID(r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			toolchain.DisplayName(r.Toolchain),
			r.Duration.Round(time.Millisecond).String(),
			r.Runs,
			r.Failed,
			r.Total,
			status(r),
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", "", "", "", fmt.Sprintf("%d runs", len(runs))})
	t.Render()
}

func status(r Run) string {
	if r.Failed > 0 || r.ExitCode != 0 {
		return "FAIL"
	}
	return "PASS"
}

// shortID trims a UUID to its first group for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
