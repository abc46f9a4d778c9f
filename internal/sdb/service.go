package sdb

import (
	"fmt"

	"example.com/chandb/internal/lookup"
	"example.com/chandb/internal/model"
	"example.com/chandb/internal/xmldoc"
)

// Network-mask bit layout of the E-Format dvb_info block. The active bit
// uses inverted logic: set means the service is still in the program list.
const (
	nwActiveBit = 0x00000001
	nwFavMask   = 0x000000F0
	nwFavShift  = 4
	nwHiddenBit = 0x00000100
)

// Program-number bitfield of ui4_prog_no: the number sits above 18 opaque
// low-order bits that must survive a round trip untouched.
const (
	progNoShift   = 18
	progNoLowMask = 0x3FFFF
)

// Legacy Service attribute bitfield.
const legacyAttrEncrypted = 0x1

// assembleServices builds the channels of one list section and returns
// them in record order.
func assembleServices(d Dialect, def listSection, section *xmldoc.Node, list *model.ChannelList) ([]*model.Channel, error) {
	if d.IsE() {
		return assembleEServices(def, section, list)
	}
	return assembleLegacyServices(def, section, list)
}

// captureOverlay copies every column cell of row i into an ordered map so
// write-back can re-render the block without losing unknown columns.
func captureOverlay(cols *columnTable, i int) *model.FieldMap {
	m := model.NewFieldMap()
	for _, name := range cols.columnNames() {
		m.Set(name, cols.cell(name, i))
	}
	return m
}

// assembleLegacyServices joins the Service and Programme blocks on their
// shared Rec_Id column. A service without a programme row is the format's
// way of keeping a deleted channel in the database: it loads as deleted
// with program number -1.
func assembleLegacyServices(def listSection, section *xmldoc.Node, list *model.ChannelList) ([]*model.Channel, error) {
	svc := extractColumns(section.Child(elemService))
	prg := extractColumns(section.Child(elemProgramme))

	prgRowByRecID := make(map[int]int)
	for i := 0; i < prg.rows(colRecID); i++ {
		recID, err := parseCellInt(prg.cell(colRecID, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemProgramme, i, err)
		}
		prgRowByRecID[recID] = i
	}

	var channels []*model.Channel
	for i := 0; i < svc.rows(colRecID); i++ {
		recID, err := parseCellInt(svc.cell(colRecID, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemService, i, err)
		}
		svcType, err := parseCellInt(svc.cell(colType, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemService, i, err)
		}
		sid, err := parseCellInt(svc.cell(colSid, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemService, i, err)
		}
		muxRow, err := parseCellInt(svc.cell(colMuxRowID, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemService, i, err)
		}
		attr, err := parseCellUint32(svc.cell(colAttr, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemService, i, err)
		}

		ch := &model.Channel{
			Kind:              def.kind,
			RecordOrder:       i,
			RecordID:          recID,
			Name:              svc.cell(colName, i),
			ServiceID:         sid,
			ServiceType:       svcType,
			Signal:            lookup.SignalKindForServiceType(svcType),
			OriginalNetworkID: parseCellIntOrZero(svc.cell(colOnid, i)),
			TransportStreamID: parseCellIntOrZero(svc.cell(colTsid, i)),
			Encrypted:         attr&legacyAttrEncrypted != 0,
			Transponder:       list.TransponderByID(def.kind.IDOffset() + muxRow),
			ServiceData:       captureOverlay(svc, i),
		}

		if row, ok := prgRowByRecID[recID]; ok {
			no, err := parseCellInt(prg.cell(colNo, row))
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", elemProgramme, row, err)
			}
			flag, err := parseCellUint32(prg.cell(colFlag, row))
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", elemProgramme, row, err)
			}
			ch.OldProgramNr = no
			ch.NewProgramNr = no
			ch.Favorites = uint8(flag)
			ch.ProgrammeData = captureOverlay(prg, row)
		} else {
			ch.IsDeleted = true
			ch.OldProgramNr = -1
			ch.NewProgramNr = -1
			ch.ProgrammeData = model.NewFieldMap()
		}

		list.AddChannel(ch)
		channels = append(channels, ch)
	}
	return channels, nil
}

// assembleEServices builds channels from the single Service block and its
// row-aligned dvb_info sub-block.
func assembleEServices(def listSection, section *xmldoc.Node, list *model.ChannelList) ([]*model.Channel, error) {
	svcNode := section.Child(elemService)
	svc := extractColumns(svcNode)
	dvb := extractColumns(svcNode.Child(elemDVBInfo))

	var channels []*model.Channel
	for i := 0; i < svc.rows(colERecID); i++ {
		recID, err := parseCellInt(svc.cell(colERecID, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemService, i, err)
		}
		svcType, err := parseCellInt(svc.cell(colESvcType, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemService, i, err)
		}
		tpRef, err := parseCellInt(svc.cell(colETpRef, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemService, i, err)
		}
		sid, err := parseCellInt(dvb.cell(colESid, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemDVBInfo, i, err)
		}
		progRaw, err := parseCellUint32(dvb.cell(colEProgNo, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemDVBInfo, i, err)
		}
		nwMask, err := parseCellUint32(dvb.cell(colENwMask, i))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", elemDVBInfo, i, err)
		}

		progNo := int(progRaw >> progNoShift)
		ch := &model.Channel{
			Kind:          def.kind,
			RecordOrder:   i,
			RecordID:      recID,
			Name:          svc.cell(colEName, i),
			ServiceID:     sid,
			ServiceType:   svcType,
			Signal:        lookup.SignalKindForServiceType(svcType),
			OldProgramNr:  progNo,
			NewProgramNr:  progNo,
			IsDeleted:     nwMask&nwActiveBit == 0,
			Hidden:        nwMask&nwHiddenBit != 0,
			Favorites:     uint8((nwMask & nwFavMask) >> nwFavShift),
			ServiceData:   captureOverlay(svc, i),
			ProgrammeData: captureOverlay(dvb, i),
		}

		// The scrambled flag is assigned first, then overwritten by the
		// free-CA-mode field. The final assignment is authoritative.
		ch.Encrypted = parseCellIntOrZero(dvb.cell(colEScrambled, i)) != 0
		ch.Encrypted = parseCellIntOrZero(dvb.cell(colEFreeCA, i)) != 0

		if tp := list.TransponderByID(def.kind.IDOffset() + tpRef); tp != nil {
			ch.Transponder = tp
			ch.OriginalNetworkID = tp.OriginalNetworkID
			ch.TransportStreamID = tp.TransportStreamID
		} else {
			// Lists without a TS_Descr block carry the ids per service.
			ch.OriginalNetworkID = parseCellIntOrZero(dvb.cell(colEOnid, i))
			ch.TransportStreamID = parseCellIntOrZero(dvb.cell(colETsid, i))
		}

		list.AddChannel(ch)
		channels = append(channels, ch)
	}
	return channels, nil
}
