package csvsync

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/laptime"
	"github.com/xuri/excelize/v2"
)

const (
	timesSheet    = "Times"
	rankingsSheet = "Rankings"
)

// EncodeXLSX writes a workbook with the exchange columns on one sheet and
// per-circuit placements on a second.
func EncodeXLSX(w io.Writer, entries []ledger.Entry, profiles ledger.ProfileLookup) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", timesSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	header := make([]any, 0, len(Header)+1)
	for _, h := range Header {
		header = append(header, h)
	}
	header = append(header, "seconds")
	if err := f.SetSheetRow(timesSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		row := make([]any, 0, len(Header)+1)
		for _, v := range Row(e, profiles) {
			row = append(row, v)
		}
		row = append(row, secondsCell(e.Time))
		if err := setRow(f, timesSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(rankingsSheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	if err := setRow(f, rankingsSheet, 1, []any{"track", "rank", "medal", "race_time", "character", "kart", "time_of_entry"}); err != nil {
		return err
	}

	placements := ledger.Placements(entries)
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if c := strings.Compare(entries[a].Circuit, entries[b].Circuit); c != 0 {
			return c
		}
		return placements[a].Rank - placements[b].Rank
	})
	for row, i := range order {
		e, p := entries[i], placements[i]
		cols := Row(e, profiles)
		if err := setRow(f, rankingsSheet, row+2, []any{e.Circuit, p.Rank, p.Medal.Emoji(), e.Time, cols[2], cols[4], e.Date}); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(timesSheet, "A", "A", 26)
	_ = f.SetColWidth(timesSheet, "B", "E", 20)
	_ = f.SetColWidth(rankingsSheet, "A", "A", 24)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolving cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func secondsCell(t string) any {
	d, err := laptime.ToDuration(t)
	if err != nil {
		return ""
	}
	return d.Seconds()
}
