// Package export writes a loaded channel database to spreadsheet form,
// one worksheet per channel list.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"example.com/chandb/internal/model"
)

var xlsxHeaders = []string{
	"No", "Name", "Signal", "SID", "ONID", "TSID",
	"Encrypted", "Hidden", "Favorites", "Frequency (MHz)", "Symbol Rate", "Satellite",
}

// SaveXLSX writes every list of root into out. Deleted channels are
// included with an empty program number so an operator can spot them.
func SaveXLSX(root *model.DataRoot, out string) error {
	if len(root.Lists) == 0 {
		return fmt.Errorf("nothing to export")
	}
	f := excelize.NewFile()
	defer f.Close()

	for _, list := range root.Lists {
		idx, err := f.NewSheet(list.Caption)
		if err != nil {
			return fmt.Errorf("sheet %q: %w", list.Caption, err)
		}
		if err := writeSheet(f, list); err != nil {
			return fmt.Errorf("sheet %q: %w", list.Caption, err)
		}
		if list == root.Lists[0] {
			f.SetActiveSheet(idx)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return f.SaveAs(out)
}

func writeSheet(f *excelize.File, list *model.ChannelList) error {
	for col, h := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(list.Caption, cell, h); err != nil {
			return err
		}
	}
	for row, ch := range list.Channels {
		values := channelCells(ch)
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(list.Caption, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func channelCells(ch *model.Channel) []interface{} {
	var number interface{}
	if !ch.IsDeleted && ch.NewProgramNr >= 0 {
		number = ch.NewProgramNr
	}
	var freq, sym, sat interface{}
	if tp := ch.Transponder; tp != nil {
		freq = tp.FrequencyMHz
		sym = tp.SymbolRate
		if tp.Satellite != nil {
			sat = fmt.Sprintf("%s (%s)", tp.Satellite.Name, tp.Satellite.OrbitalPos)
		}
	}
	return []interface{}{
		number, ch.Name, ch.Signal.String(), ch.ServiceID,
		ch.OriginalNetworkID, ch.TransportStreamID,
		ch.Encrypted, ch.Hidden, int(ch.Favorites), freq, sym, sat,
	}
}
