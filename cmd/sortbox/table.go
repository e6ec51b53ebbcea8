package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableView accumulates rows for a rounded go-pretty table. Cells wider than
// the width limit wrap; rows shorter than the header are padded.
type tableView struct {
	tw      table.Writer
	columns int
	width   int
	right   map[int]bool
}

func newTable(width int, headers ...string) *tableView {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	return &tableView{tw: tw, columns: len(headers), width: width, right: map[int]bool{}}
}

// alignRight right-aligns the given zero-based columns.
func (t *tableView) alignRight(cols ...int) *tableView {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *tableView) add(cells ...string) {
	row := make(table.Row, t.columns)
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	t.tw.AppendRow(row)
}

func (t *tableView) String() string {
	if t.columns == 0 {
		return ""
	}
	configs := make([]table.ColumnConfig, t.columns)
	for i := range configs {
		align := text.AlignLeft
		if t.right[i] {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft, WidthMax: t.width}
	}
	t.tw.SetColumnConfigs(configs)
	return t.tw.Render()
}
