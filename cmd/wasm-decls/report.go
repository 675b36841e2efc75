package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-aot/backend"
	"github.com/wippyai/wasm-aot/decls"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	importStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// symbolRow is one declared symbol as shown to the user.
type symbolRow struct {
	kind    string // "func", "table" or "table_len"
	symbol  string
	linkage string
	id      string
	detail  string
	index   uint32
}

func (r symbolRow) matches(filter string) bool {
	if filter == "" {
		return true
	}
	filter = strings.ToLower(filter)
	return strings.Contains(strings.ToLower(r.symbol), filter) ||
		strings.Contains(strings.ToLower(r.detail), filter)
}

// collectRows lists every function and table symbol of d, in index order,
// with the linkage the backend ended up with.
func collectRows(d *decls.Decls, st *backend.SymbolTable) ([]symbolRow, error) {
	var rows []symbolRow

	for i := 0; i < d.NumFunctions(); i++ {
		f, err := d.Function(uint32(i))
		if err != nil {
			return nil, err
		}
		detail := f.Signature.String()
		if f.Imported() {
			detail += " import " + f.ImportName.String()
		}
		if f.Exported() {
			detail += " export " + strings.Join(f.ExportNames, ",")
		}
		rows = append(rows, newRow("func", f.Index, f.Name, st, detail))
	}

	for i := 0; i < d.NumTables(); i++ {
		t, err := d.Table(uint32(i))
		if err != nil {
			return nil, err
		}
		var detail []string
		if t.Imported() {
			detail = append(detail, "import "+t.ImportName.String())
		}
		if t.Exported() {
			detail = append(detail, "export "+strings.Join(t.ExportNames, ","))
		}
		rows = append(rows,
			newRow("table", t.Index, t.ContentsName, st, strings.Join(detail, " ")),
			newRow("table_len", t.Index, t.LenName, st, ""))
	}

	return rows, nil
}

func newRow(kind string, index uint32, name decls.Name, st *backend.SymbolTable, detail string) symbolRow {
	row := symbolRow{
		kind:   kind,
		index:  index,
		symbol: name.Symbol(),
		id:     name.ID().String(),
		detail: detail,
	}
	if decl, ok := st.Lookup(name.Symbol()); ok {
		row.linkage = decl.Linkage.String()
	}
	return row
}

// writeReport prints rows as an aligned table, styled when writing to a
// terminal.
func writeReport(w io.Writer, rows []symbolRow, styled bool) error {
	paint := func(s lipgloss.Style, text string) string {
		if !styled || text == "" {
			return text
		}
		return s.Render(text)
	}

	if styled {
		if _, err := fmt.Fprintln(w, headerStyle.Render("Declared symbols")); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tINDEX\tSYMBOL\tLINKAGE\tID\tDETAIL")
	for _, r := range rows {
		detailStyle := typeStyle
		if strings.Contains(r.detail, "import ") {
			detailStyle = importStyle
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			r.kind, r.index,
			paint(symbolStyle, r.symbol),
			r.linkage, r.id,
			paint(detailStyle, r.detail))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if styled {
		_, err := fmt.Fprintln(w, helpStyle.Render(fmt.Sprintf("%d symbols", len(rows))))
		return err
	}
	return nil
}
