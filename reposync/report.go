package reposync

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
)

var titleStyle = lipgloss.NewStyle().Bold(true)

// WriteReport writes res to w as indented JSON. HTML
// characters are kept literal so "a->b" and
// "name <email>" stay readable.
func WriteReport(w io.Writer, res *Result) error {
	const errCtx = "writing report"

	by, err := json.MarshalIndentWithOption(
		res, "", "  ", json.DisableHTMLEscape(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	by = append(by, '\n')

	if _, err := w.Write(by); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// RenderPlan writes a human-readable summary of res to
// w.
func RenderPlan(w io.Writer, res *Result) error {
	const errCtx = "rendering plan"

	title := "Sync plan"
	if res.Applied {
		title = "Sync result"
	}

	if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	author := res.Author
	if author == "" {
		author = "(unchanged)"
	}

	rows := [][]string{
		{"direction", string(res.Direction)},
		{"source", res.Source},
		{"destination", res.Destination},
		{"divergence point", res.Subject},
		{"source base", res.SourceBase},
		{"destination base", res.DestinationBase},
		{"patches", strconv.Itoa(res.Patches)},
		{"author", author},
		{"digest", res.Digest},
		{"bidirectional", strconv.FormatBool(res.Bidirectional)},
		{"applied", strconv.FormatBool(res.Applied)},
	}

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
