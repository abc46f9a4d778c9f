package sdb

import (
	"fmt"
	"strings"

	"example.com/chandb/internal/model"
	"example.com/chandb/internal/xmldoc"
)

// Legacy column names.
const (
	colRecID    = "Rec_Id"
	colName     = "Name"
	colPos      = "Pos"
	colOnid     = "Onid"
	colTsid     = "Tsid"
	colFreq     = "Freq"
	colSymRate  = "SymRate"
	colPol      = "Pol"
	colType     = "Type"
	colSid      = "Sid"
	colMuxRowID = "MuxRowId"
	colAttr     = "Attr"
	colNo       = "No"
	colFlag     = "Flag"
)

// E-Format column names.
const (
	colERecID     = "ui2_rec_id"
	colEName      = "ac_name"
	colEOrbPos    = "i2_orb_pos"
	colEFreq      = "ui4_freq"
	colEFreqAlt   = "SysFreq" // sub-dialect naming of the same column
	colESymRate   = "ui4_sym_rate"
	colEFlags     = "ui4_flags"
	colESatRef    = "ui2_satl_rec_id"
	colEOnid      = "ui2_on_id"
	colETsid      = "ui2_ts_id"
	colESvcType   = "ui1_svc_type"
	colETpRef     = "ui2_tsl_rec_id"
	colEProgNo    = "ui4_prog_no"
	colENwMask    = "ui4_nw_mask"
	colEScrambled = "ui1_scrambled"
	colEFreeCA    = "ui1_free_ca_mode"
	colESid       = "ui2_sid"
)

const eFlagVerticalPol = 0x1

// buildTopology constructs the satellites and transponders of one list
// section. Satellites come first so transponder rows can resolve their
// cross-references; a missing Multiplex block is fatal.
func buildTopology(d Dialect, def listSection, section *xmldoc.Node, list *model.ChannelList) error {
	if err := buildSatellites(d, def, section, list); err != nil {
		return err
	}
	mux := section.Child(elemMultiplex)
	if mux == nil {
		return fmt.Errorf("%w: %s/%s", ErrMissingElement, def.element, elemMultiplex)
	}
	if d.IsE() {
		return buildETransponders(def, section, mux, list)
	}
	return buildLegacyTransponders(def, mux, list)
}

// buildSatellites reads the list-local Satellite block. Its absence is
// legal: terrestrial and cable lists never carry one.
func buildSatellites(d Dialect, def listSection, section *xmldoc.Node, list *model.ChannelList) error {
	node := section.Child(elemSatellite)
	if node == nil {
		return nil
	}
	cols := extractColumns(node)
	idCol, nameCol, posCol := colRecID, colName, colPos
	if d.IsE() {
		idCol, nameCol, posCol = colERecID, colEName, colEOrbPos
	}
	n := cols.rows(idCol)
	for i := 0; i < n; i++ {
		tenths, err := parseCellInt(cols.cell(posCol, i))
		if err != nil {
			return fmt.Errorf("%s row %d: %w", elemSatellite, i, err)
		}
		list.AddSatellite(&model.Satellite{
			ID:         def.kind.IDOffset() + i,
			Name:       cols.cell(nameCol, i),
			OrbitalPos: model.FormatOrbitalPos(tenths),
		})
	}
	return nil
}

func buildLegacyTransponders(def listSection, mux *xmldoc.Node, list *model.ChannelList) error {
	cols := extractColumns(mux)
	param := extractColumns(mux.Child(def.paramBlock))
	n := cols.rows(colRecID)
	for i := 0; i < n; i++ {
		// The per-system parameter block stores frequency in kHz.
		freqKHz, err := parseCellInt(param.cell(colFreq, i))
		if err != nil {
			return fmt.Errorf("%s row %d: %w", def.paramBlock, i, err)
		}
		tp := &model.Transponder{
			ID:                def.kind.IDOffset() + i,
			FrequencyMHz:      float64(freqKHz) / 1000,
			SymbolRate:        parseCellIntOrZero(param.cell(colSymRate, i)) / 1000,
			OriginalNetworkID: parseCellIntOrZero(cols.cell(colOnid, i)),
			TransportStreamID: parseCellIntOrZero(cols.cell(colTsid, i)),
		}
		if def.kind.IsSatellite() {
			tp.Polarity = decodePolarityToken(param.cell(colPol, i))
		}
		list.AddTransponder(tp)
	}
	return nil
}

// decodePolarityToken decodes the legacy two-letter polarity token
// ("HZ"/"VT") by its leading letter.
func decodePolarityToken(tok string) model.Polarity {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return model.PolarityNone
	}
	switch tok[0] {
	case 'H':
		return model.PolarityHorizontal
	case 'V':
		return model.PolarityVertical
	}
	return model.PolarityNone
}

func buildETransponders(def listSection, section, mux *xmldoc.Node, list *model.ChannelList) error {
	cols := extractColumns(mux)
	freqCol := colEFreq
	if !cols.has(freqCol) {
		freqCol = colEFreqAlt
	}
	n := cols.rows(colERecID)
	for i := 0; i < n; i++ {
		rawFreq, err := parseCellInt(cols.cell(freqCol, i))
		if err != nil {
			return fmt.Errorf("%s row %d: %w", elemMultiplex, i, err)
		}
		sym := parseCellIntOrZero(cols.cell(colESymRate, i))
		tp := &model.Transponder{ID: def.kind.IDOffset() + i}
		if def.kind.IsSatellite() {
			flags, err := parseCellUint32(cols.cell(colEFlags, i))
			if err != nil {
				return fmt.Errorf("%s row %d: %w", elemMultiplex, i, err)
			}
			if flags&eFlagVerticalPol != 0 {
				tp.Polarity = model.PolarityVertical
			} else {
				tp.Polarity = model.PolarityHorizontal
			}
			satRef, err := parseCellInt(cols.cell(colESatRef, i))
			if err != nil {
				return fmt.Errorf("%s row %d: %w", elemMultiplex, i, err)
			}
			sat := list.SatelliteByID(def.kind.IDOffset() + satRef)
			if sat == nil {
				return fmt.Errorf("%w: satellite %d referenced by %s row %d", ErrMissingElement, satRef, elemMultiplex, i)
			}
			tp.Satellite = sat
			tp.FrequencyMHz = float64(rawFreq)
			tp.SymbolRate = sym
		} else {
			// Non-satellite kinds store base units (Hz, baud).
			tp.FrequencyMHz = float64(rawFreq) / 1_000_000
			tp.SymbolRate = sym / 1000
		}
		list.AddTransponder(tp)
	}
	applyTSDescr(def, section, list, n)
	return nil
}

// applyTSDescr overlays network/transport-stream ids from the TS_Descr
// block. The correlation is purely positional; when the row counts differ
// the block is skipped.
func applyTSDescr(def listSection, section *xmldoc.Node, list *model.ChannelList, muxRows int) {
	ts := extractColumns(section.Child(elemTSDescr))
	if muxRows == 0 || ts.rows(colEOnid) != muxRows {
		return
	}
	for i := 0; i < muxRows; i++ {
		tp := list.TransponderByID(def.kind.IDOffset() + i)
		if tp == nil {
			continue
		}
		tp.OriginalNetworkID = parseCellIntOrZero(ts.cell(colEOnid, i))
		tp.TransportStreamID = parseCellIntOrZero(ts.cell(colETsid, i))
	}
}
