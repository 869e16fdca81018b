package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// wrapWidth bounds free-text columns such as descriptions and errors.
const wrapWidth = 48

type tableSpec struct {
	headers []string
	aligns  []columnAlignment
	// wrap lists zero-based columns wrapped at wrapWidth.
	wrap []int
}

func renderTable(spec tableSpec, rows [][]string) string {
	columns := len(spec.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range spec.headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	wrapped := make(map[int]bool, len(spec.wrap))
	for _, i := range spec.wrap {
		wrapped[i] = true
	}
	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(spec.aligns) && spec.aligns[i] == alignRight {
			align = text.AlignRight
		}
		cfg := table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
		if wrapped[i] {
			cfg.WidthMax = wrapWidth
			cfg.WidthMaxEnforcer = text.WrapSoft
		}
		columnConfigs = append(columnConfigs, cfg)
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
