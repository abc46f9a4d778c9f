package sdb

import (
	"sort"
	"strconv"
	"strings"

	"example.com/chandb/internal/model"
	"example.com/chandb/internal/xmldoc"
)

// renderChannelBlocks re-renders the editable blocks of every list from
// the channel overlays. Topology blocks are never touched; only the
// columns present in the original loop-marked blocks are emitted.
func (doc *Document) renderChannelBlocks() {
	for _, ls := range doc.lists {
		if doc.dialect.IsE() {
			renderEList(ls)
		} else {
			renderLegacyList(ls)
		}
	}
}

func renderLegacyList(ls *listState) {
	if svcNode := ls.section.Child(elemService); svcNode != nil {
		renderBlock(svcNode, ls.channels, legacyServiceValue)
	}
	if prgNode := ls.section.Child(elemProgramme); prgNode != nil {
		renderBlock(prgNode, programmeRows(ls.channels), legacyProgrammeValue)
	}
}

func renderEList(ls *listState) {
	svcNode := ls.section.Child(elemService)
	if svcNode == nil {
		return
	}
	renderBlock(svcNode, ls.channels, eServiceValue)
	if dvbNode := svcNode.Child(elemDVBInfo); dvbNode != nil {
		renderBlock(dvbNode, ls.channels, eDVBInfoValue)
	}
}

// renderBlock rewrites every loop-marked child of block: one text line per
// channel, loop attribute updated to the row count. A block left with zero
// rows keeps a single line break as content so it never self-closes.
func renderBlock(block *xmldoc.Node, channels []*model.Channel, value func(*model.Channel, string) string) {
	count := strconv.Itoa(len(channels))
	for _, col := range block.Elements() {
		if _, ok := col.Attr(attrLoop); !ok {
			continue
		}
		var b strings.Builder
		for _, ch := range channels {
			b.WriteString(value(ch, col.Name))
			b.WriteByte('\n')
		}
		if len(channels) == 0 {
			b.WriteByte('\n')
		}
		col.SetText(b.String())
		col.SetAttr(attrLoop, count)
	}
}

// programmeRows selects the channels that still own a programme entry and
// orders them by their edited program number. Deleted channels and
// channels without a valid position drop out; the row count shrinks.
func programmeRows(channels []*model.Channel) []*model.Channel {
	rows := make([]*model.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.IsDeleted || ch.NewProgramNr < 0 {
			continue
		}
		rows = append(rows, ch)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].NewProgramNr < rows[j].NewProgramNr
	})
	return rows
}

func legacyServiceValue(ch *model.Channel, col string) string {
	if col == colName && ch.NameModified {
		return ch.Name
	}
	v, _ := ch.ServiceData.Get(col)
	return v
}

func legacyProgrammeValue(ch *model.Channel, col string) string {
	switch col {
	case colNo:
		return strconv.Itoa(ch.NewProgramNr)
	case colFlag:
		return strconv.FormatUint(uint64(ch.Favorites), 10)
	}
	if v, ok := ch.ProgrammeData.Get(col); ok {
		return v
	}
	// A channel that loaded without a programme row has an empty overlay.
	// When it is brought back into the program list its row must still
	// parse, so the join key is synthesized and other cells zeroed.
	if col == colRecID {
		return strconv.Itoa(ch.RecordID)
	}
	return "0"
}

func eServiceValue(ch *model.Channel, col string) string {
	if col == colEName && ch.NameModified {
		return ch.Name
	}
	v, _ := ch.ServiceData.Get(col)
	return v
}

func eDVBInfoValue(ch *model.Channel, col string) string {
	switch col {
	case colEProgNo:
		// Deletion is carried by the network mask alone; a channel
		// without a program position keeps its stored cell.
		if ch.NewProgramNr < 0 {
			v, _ := ch.ProgrammeData.Get(col)
			return v
		}
		raw := overlayUint32(ch.ProgrammeData, col)
		packed := uint32(ch.NewProgramNr)<<progNoShift | raw&progNoLowMask
		return strconv.FormatUint(uint64(packed), 10)
	case colENwMask:
		raw := overlayUint32(ch.ProgrammeData, col)
		mask := raw &^ uint32(nwActiveBit|nwFavMask|nwHiddenBit)
		if !ch.IsDeleted {
			// Reversed polarity: the bit marks a live service.
			mask |= nwActiveBit
		}
		if ch.Hidden {
			mask |= nwHiddenBit
		}
		mask |= (uint32(ch.Favorites) << nwFavShift) & nwFavMask
		return strconv.FormatUint(uint64(mask), 10)
	}
	v, _ := ch.ProgrammeData.Get(col)
	return v
}

// overlayUint32 re-reads a bitfield from the overlay. The cell passed
// strict parsing at load time, so failures cannot happen here.
func overlayUint32(m *model.FieldMap, col string) uint32 {
	v, _ := m.Get(col)
	raw, err := strconv.ParseUint(strings.TrimSpace(v), 0, 32)
	if err != nil {
		return 0
	}
	return uint32(raw)
}
