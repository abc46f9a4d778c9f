package sdb

import (
	"testing"

	"example.com/chandb/internal/model"
)

func assembleFixture(t *testing.T, d Dialect, text, element string) (*model.ChannelList, []*model.Channel) {
	t.Helper()
	sec := sectionNode(t, text, element)
	list := model.NewChannelList(sec.def.kind, sec.def.caption)
	if err := buildTopology(d, sec.def, sec.node, list); err != nil {
		t.Fatalf("buildTopology: %v", err)
	}
	channels, err := assembleServices(d, sec.def, sec.node, list)
	if err != nil {
		t.Fatalf("assembleServices: %v", err)
	}
	return list, channels
}

func TestAssembleLegacyServices(t *testing.T) {
	_, channels := assembleFixture(t, DialectLegacy120, legacyFixture, "SdbT")
	if len(channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(channels))
	}

	ch := channels[0]
	if ch.RecordID != 1 || ch.Name != "Das Erste" || ch.ServiceID != 160 {
		t.Errorf("row 0: got id=%d name=%q sid=%d", ch.RecordID, ch.Name, ch.ServiceID)
	}
	if ch.Signal != model.SignalTV {
		t.Errorf("row 0 signal: got %v, want TV for service type 1", ch.Signal)
	}
	if !ch.Encrypted {
		t.Error("row 0: Attr bit 0x1 set, channel must be encrypted")
	}
	if ch.OriginalNetworkID != 8468 || ch.TransportStreamID != 257 {
		t.Errorf("row 0 ids: got %d/%d", ch.OriginalNetworkID, ch.TransportStreamID)
	}
	if ch.Transponder == nil || ch.Transponder.FrequencyMHz != 474 {
		t.Errorf("row 0 transponder not resolved: %+v", ch.Transponder)
	}
	if ch.OldProgramNr != 1 || ch.NewProgramNr != 1 || ch.Favorites != 2 || ch.IsDeleted {
		t.Errorf("row 0 programme state: old=%d new=%d fav=%d deleted=%v",
			ch.OldProgramNr, ch.NewProgramNr, ch.Favorites, ch.IsDeleted)
	}
	if v, _ := ch.ServiceData.Get("VidPid"); v != "120" {
		t.Errorf("row 0 unknown column not captured: VidPid=%q", v)
	}

	del := channels[1]
	if !del.IsDeleted || del.OldProgramNr != -1 || del.NewProgramNr != -1 {
		t.Errorf("row without programme entry must load deleted with -1, got %+v", del)
	}
	if del.Name != "Kabel & Sat" {
		t.Errorf("escaped name not decoded: %q", del.Name)
	}
	if del.Encrypted {
		t.Error("row 1: Attr 0, channel must not be encrypted")
	}
	if del.ProgrammeData.Len() != 0 {
		t.Errorf("deleted channel carries a programme overlay: %v", del.ProgrammeData.Keys())
	}
}

func TestAssembleLegacyServiceHexCells(t *testing.T) {
	const fixture = `<SdbRoot>
<FormatVer>1.2.0</FormatVer>
<SdbData>
<SdbT>
<Multiplex>
<Rec_Id loop="4">0
1
2
3
</Rec_Id>
<TerParam>
<Freq loop="4">474000
482000
490000
498000
</Freq>
</TerParam>
</Multiplex>
<Service>
<Rec_Id loop="1">9
</Rec_Id>
<Type loop="1">1
</Type>
<Onid loop="1">0x1
</Onid>
<Tsid loop="1">0x2
</Tsid>
<Sid loop="1">0x64
</Sid>
<MuxRowId loop="1">3
</MuxRowId>
<Name loop="1">Test
</Name>
<Attr loop="1">0
</Attr>
</Service>
<Programme>
<Rec_Id loop="1">9
</Rec_Id>
<No loop="1">5
</No>
<Flag loop="1">0x02
</Flag>
</Programme>
</SdbT>
</SdbData>
<CheckSum>0x00000000</CheckSum>
</SdbRoot>
`
	_, channels := assembleFixture(t, DialectLegacy120, fixture, "SdbT")
	if len(channels) != 1 {
		t.Fatalf("got %d channels, want 1", len(channels))
	}
	ch := channels[0]
	if ch.ServiceType != 1 || ch.OriginalNetworkID != 1 || ch.TransportStreamID != 2 || ch.ServiceID != 100 {
		t.Errorf("got type=%d onid=%d tsid=%d sid=%d, want 1/1/2/100",
			ch.ServiceType, ch.OriginalNetworkID, ch.TransportStreamID, ch.ServiceID)
	}
	if ch.OldProgramNr != 5 || ch.Favorites != 0b0010 {
		t.Errorf("got no=%d fav=%04b, want 5/0010", ch.OldProgramNr, ch.Favorites)
	}
	if ch.Transponder == nil || ch.Transponder.FrequencyMHz != 498 {
		t.Errorf("MuxRowId 3 not resolved to the fourth transponder: %+v", ch.Transponder)
	}
}

func TestAssembleEServices(t *testing.T) {
	_, channels := assembleFixture(t, DialectE, eFixture, "SdbS")
	if len(channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(channels))
	}

	ch := channels[0]
	if ch.RecordID != 10 || ch.Name != "Das Erste HD" || ch.ServiceID != 100 {
		t.Errorf("row 0: got id=%d name=%q sid=%d", ch.RecordID, ch.Name, ch.ServiceID)
	}
	// 262145 = 1<<18 | 1: program number above 18 preserved low bits.
	if ch.OldProgramNr != 1 || ch.NewProgramNr != 1 {
		t.Errorf("row 0 program number: got %d/%d, want 1/1", ch.OldProgramNr, ch.NewProgramNr)
	}
	// nw_mask 33 = 0x21: active, favorites slot 2, not hidden.
	if ch.IsDeleted || ch.Hidden || ch.Favorites != 2 {
		t.Errorf("row 0 mask state: deleted=%v hidden=%v fav=%d", ch.IsDeleted, ch.Hidden, ch.Favorites)
	}
	if ch.Encrypted {
		t.Error("row 0: free_ca_mode 0 must leave the channel clear")
	}
	if ch.Transponder == nil || ch.OriginalNetworkID != 1 || ch.TransportStreamID != 1011 {
		t.Errorf("row 0 transponder ids: got %d/%d, want 1/1011", ch.OriginalNetworkID, ch.TransportStreamID)
	}

	hidden := channels[1]
	// nw_mask 289 = 0x121: the hidden bit on top of row 0's state.
	if !hidden.Hidden || hidden.IsDeleted || hidden.Favorites != 2 {
		t.Errorf("row 1 mask state: deleted=%v hidden=%v fav=%d", hidden.IsDeleted, hidden.Hidden, hidden.Favorites)
	}
	// scrambled=1 but free_ca_mode=0: the later field wins.
	if hidden.Encrypted {
		t.Error("row 1: free_ca_mode must override the scrambled flag")
	}
	if hidden.Signal != model.SignalRadio {
		t.Errorf("row 1 signal: got %v, want radio for service type 2", hidden.Signal)
	}
}

func TestAssembleEServicesFallbackIDs(t *testing.T) {
	_, channels := assembleFixture(t, DialectE, eFixture, "SdbC")
	if len(channels) != 1 {
		t.Fatalf("got %d channels, want 1", len(channels))
	}
	ch := channels[0]
	if ch.Transponder != nil {
		t.Fatalf("dangling transponder reference must stay nil, got %+v", ch.Transponder)
	}
	if ch.OriginalNetworkID != 61441 || ch.TransportStreamID != 10007 {
		t.Errorf("fallback ids: got %d/%d, want 61441/10007", ch.OriginalNetworkID, ch.TransportStreamID)
	}
	if !ch.Encrypted {
		t.Error("free_ca_mode 1 must mark the channel encrypted")
	}
	// 786432 = 3<<18.
	if ch.OldProgramNr != 3 {
		t.Errorf("program number: got %d, want 3", ch.OldProgramNr)
	}
}

func TestCaptureOverlayKeepsColumnOrder(t *testing.T) {
	sec := sectionNode(t, legacyFixture, "SdbT")
	cols := extractColumns(sec.node.Child(elemService))
	overlay := captureOverlay(cols, 0)
	want := []string{"Rec_Id", "Type", "Onid", "Tsid", "Sid", "MuxRowId", "Name", "Attr", "VidPid"}
	got := overlay.Keys()
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
