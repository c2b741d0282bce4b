package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/eshaffer321/wooctl/internal/domain/order"
)

// List output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// ErrUnknownFormat is returned for a --format other than table or json
var ErrUnknownFormat = errors.New("unknown output format")

// prunedColumns are dropped from the table view to keep it narrow
var prunedColumns = map[string]bool{
	order.FieldShippingName: true,
	order.FieldPaymentTitle: true,
	order.FieldDate:         true,
}

// ValidateFormat rejects formats the formatter cannot render
func ValidateFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w %q (use %s or %s)", ErrUnknownFormat, format, FormatTable, FormatJSON)
	}
}

// Formatter renders command results on stdout
type Formatter struct {
	w io.Writer
}

// NewFormatter creates a formatter writing to w
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Detail writes a single order as one JSON document
func (f *Formatter) Detail(d *order.Detail) error {
	return f.writeJSON(d)
}

// Rows writes list rows as a JSON array or a table.
// An empty table prints nothing.
func (f *Formatter) Rows(rows []order.SummaryRow, format string) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}

	if format == FormatJSON {
		if rows == nil {
			rows = []order.SummaryRow{}
		}
		return f.writeJSON(rows)
	}

	if len(rows) == 0 {
		return nil
	}

	var headers []string
	for _, field := range rows[0].Fields() {
		if !prunedColumns[field.Name] {
			headers = append(headers, field.Name)
		}
	}

	table := tablewriter.NewWriter(f.w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	for _, row := range rows {
		cells := make([]string, 0, len(headers))
		for _, field := range row.Fields() {
			if !prunedColumns[field.Name] {
				cells = append(cells, field.Value)
			}
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}

func (f *Formatter) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(f.w, string(data))
	return err
}

// PrintSuccess writes a success line on stdout
func PrintSuccess(w io.Writer, msg string) {
	fmt.Fprintf(w, "Success: %s\n", msg)
}

// PrintLegalStatuses lists the status codes an update accepts
func PrintLegalStatuses(w io.Writer, codes []string) {
	var b strings.Builder
	b.WriteString("Possible status codes:\n")
	for _, code := range codes {
		fmt.Fprintf(&b, "- %s\n", code)
	}
	_, _ = io.WriteString(w, b.String())
}
