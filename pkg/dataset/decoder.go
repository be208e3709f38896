/*
Package dataset handles the raw item table: delimited-text decoding, row
normalization and fan-out, the optional JSON stat sidecar, and fetching all
of it from disk or HTTP.

The decoder is deliberately lenient. Malformed numeric or delimiter input
never raises; it degrades to a defined default so a half-broken export still
loads. The only hard failure in this package is a fetch that cannot be
completed at all.
*/
package dataset

import "strings"

// Decode parses delimited text into rows of raw string fields.
//
// Fields are comma separated, rows are LF separated. Double-quoted fields
// may contain commas and newlines; a literal quote inside a quoted field is
// written as two consecutive quotes. CR bytes are dropped unconditionally,
// inside and outside quotes, so a raw carriage return cannot appear in data.
// An unterminated quote consumes the rest of the input into the current
// field rather than erroring. A trailing row without a final newline is
// still emitted when it has content.
func Decode(text string) [][]string {
	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\r' {
			continue
		}
		if inQuotes {
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			field.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inQuotes = true
		case ',':
			row = append(row, field.String())
			field.Reset()
		case '\n':
			row = append(row, field.String())
			field.Reset()
			rows = append(rows, row)
			row = nil
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(row) > 0 {
		row = append(row, field.String())
		rows = append(rows, row)
	}
	return rows
}

// Encode renders rows back into delimited text with the same quoting rules
// Decode accepts, so Decode(Encode(rows)) round-trips.
func Encode(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		for i, f := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(encodeField(f))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func encodeField(f string) string {
	if !strings.ContainsAny(f, ",\"\n") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
