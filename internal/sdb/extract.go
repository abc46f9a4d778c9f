package sdb

import (
	"fmt"
	"strconv"
	"strings"

	"example.com/chandb/internal/xmldoc"
)

// columnTable holds the loop-marked columns of one block: column name to
// ordered cell values, with the declaration order retained.
type columnTable struct {
	names []string
	cols  map[string][]string
}

// extractColumns collects every loop-marked child of parent. The text of a
// loop block is newline-delimited with exactly one trailing newline; a
// block holding a single empty line is an empty column. Unmarked children
// are ignored, and no column-length reconciliation happens here.
func extractColumns(parent *xmldoc.Node) *columnTable {
	t := &columnTable{cols: make(map[string][]string)}
	if parent == nil {
		return t
	}
	for _, child := range parent.Elements() {
		if _, ok := child.Attr(attrLoop); !ok {
			continue
		}
		t.names = append(t.names, child.Name)
		t.cols[child.Name] = splitColumn(child.TextContent())
	}
	return t
}

// splitColumn splits a loop block body into cells, trimming the single
// trailing line break writers always emit.
func splitColumn(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}

// names returns the column names in declaration order.
func (t *columnTable) columnNames() []string { return t.names }

func (t *columnTable) has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// column returns the cells of a column, nil when absent.
func (t *columnTable) column(name string) []string { return t.cols[name] }

// rows returns the length of the named id column, 0 when absent.
func (t *columnTable) rows(name string) int { return len(t.cols[name]) }

// cell returns the value at row i of the named column, "" when the column
// is absent or shorter than i.
func (t *columnTable) cell(name string, i int) string {
	col := t.cols[name]
	if i < 0 || i >= len(col) {
		return ""
	}
	return col[i]
}

// parseCellInt parses a numeric cell strictly (decimal or 0x-prefixed hex).
func parseCellInt(s string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumeric, s)
	}
	return int(v), nil
}

// parseCellIntOrZero tolerates blank or malformed cells and falls back to
// zero. Reserved for fields known to sometimes be empty in the wild.
func parseCellIntOrZero(s string) int {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0
	}
	return int(v)
}

// parseCellUint32 parses an unsigned 32-bit bitfield cell strictly.
func parseCellUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumeric, s)
	}
	return uint32(v), nil
}
