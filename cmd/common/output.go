package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jonesrussell/north-cloud/search-probe/internal/metrics"
)

// Out is where command output is written.
var Out io.Writer = os.Stdout

// NewTable returns a plain table writer mirrored to Out.
func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(Out)
	t.SetStyle(table.StyleLight)
	return t
}

// PrintJSON writes v as indented JSON.
func PrintJSON(v any) error {
	enc := json.NewEncoder(Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// RenderMetrics prints per-operation counts gathered during the command.
func RenderMetrics(m *metrics.Metrics) error {
	stats, err := m.Summary()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return nil
	}

	t := NewTable()
	t.SetTitle("Operations")
	t.AppendHeader(table.Row{"Operation", "Outcome", "Count"})
	for _, s := range stats {
		t.AppendRow(table.Row{s.Operation, s.Outcome, strconv.FormatUint(s.Count, 10)})
	}
	t.Render()
	return nil
}

// CompactJSON renders v on one line, or "-" when it cannot be encoded.
func CompactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "-"
	}
	return string(data)
}
