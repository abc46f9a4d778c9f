package sdb

import (
	"strings"
	"testing"
)

// Fixture documents are built as LF text with a zeroed checksum, then
// finalized: optional CRLF conversion plus a real checksum spliced in.

const legacyFixture = `<?xml version="1.0" encoding="utf-8"?>
<SdbRoot>
<FormatVer>1.2.0</FormatVer>
<SdbData>
<SdbT>
<Multiplex>
<Rec_Id loop="1">0
</Rec_Id>
<Onid loop="1">8468
</Onid>
<Tsid loop="1">257
</Tsid>
<TerParam>
<Freq loop="1">474000
</Freq>
<SymRate loop="0">
</SymRate>
</TerParam>
</Multiplex>
<Service>
<Rec_Id loop="2">1
2
</Rec_Id>
<Type loop="2">1
2
</Type>
<Onid loop="2">8468
8468
</Onid>
<Tsid loop="2">257
257
</Tsid>
<Sid loop="2">160
161
</Sid>
<MuxRowId loop="2">0
0
</MuxRowId>
<Name loop="2">Das Erste
Kabel &amp; Sat
</Name>
<Attr loop="2">1
0
</Attr>
<VidPid loop="2">120
121
</VidPid>
</Service>
<Programme>
<Rec_Id loop="1">1
</Rec_Id>
<No loop="1">1
</No>
<Flag loop="1">2
</Flag>
</Programme>
</SdbT>
<SdbS>
<Satellite>
<Rec_Id loop="1">0
</Rec_Id>
<Name loop="1">Astra 19.2E
</Name>
<Pos loop="1">192
</Pos>
</Satellite>
<Multiplex>
<Rec_Id loop="1">0
</Rec_Id>
<Onid loop="1">1
</Onid>
<Tsid loop="1">1011
</Tsid>
<SatParam>
<Freq loop="1">11361750
</Freq>
<SymRate loop="1">22000000
</SymRate>
<Pol loop="1">HZ
</Pol>
</SatParam>
</Multiplex>
<Service>
<Rec_Id loop="1">5
</Rec_Id>
<Type loop="1">1
</Type>
<Onid loop="1">1
</Onid>
<Tsid loop="1">1011
</Tsid>
<Sid loop="1">100
</Sid>
<MuxRowId loop="1">0
</MuxRowId>
<Name loop="1">ZDF HD
</Name>
<Attr loop="1">0
</Attr>
</Service>
<Programme>
<Rec_Id loop="1">5
</Rec_Id>
<No loop="1">2
</No>
<Flag loop="1">0
</Flag>
</Programme>
</SdbS>
</SdbData>
<CheckSum>0x00000000</CheckSum>
</SdbRoot>
`

const eFixture = `<?xml version="1.0" encoding="utf-8"?>
<SdbRoot>
<FormateVer>1.0.0</FormateVer>
<SdbData>
<SdbC>
<Multiplex>
<ui2_rec_id loop="1">0
</ui2_rec_id>
<SysFreq loop="1">346000000
</SysFreq>
<ui4_sym_rate loop="1">6900000
</ui4_sym_rate>
</Multiplex>
<Service>
<ui2_rec_id loop="1">1
</ui2_rec_id>
<ui1_svc_type loop="1">1
</ui1_svc_type>
<ac_name loop="1">Kabel eins
</ac_name>
<ui2_tsl_rec_id loop="1">5
</ui2_tsl_rec_id>
<dvb_info>
<ui4_prog_no loop="1">786432
</ui4_prog_no>
<ui4_nw_mask loop="1">1
</ui4_nw_mask>
<ui1_scrambled loop="1">0
</ui1_scrambled>
<ui1_free_ca_mode loop="1">1
</ui1_free_ca_mode>
<ui2_sid loop="1">300
</ui2_sid>
<ui2_on_id loop="1">61441
</ui2_on_id>
<ui2_ts_id loop="1">10007
</ui2_ts_id>
</dvb_info>
</Service>
</SdbC>
<SdbS>
<Satellite>
<ui2_rec_id loop="1">0
</ui2_rec_id>
<ac_name loop="1">Astra
</ac_name>
<i2_orb_pos loop="1">192
</i2_orb_pos>
</Satellite>
<Multiplex>
<ui2_rec_id loop="2">0
1
</ui2_rec_id>
<ui4_freq loop="2">11362
11493
</ui4_freq>
<ui4_sym_rate loop="2">22000
22000
</ui4_sym_rate>
<ui4_flags loop="2">0
1
</ui4_flags>
<ui2_satl_rec_id loop="2">0
0
</ui2_satl_rec_id>
</Multiplex>
<TS_Descr>
<ui2_on_id loop="2">1
1
</ui2_on_id>
<ui2_ts_id loop="2">1011
1079
</ui2_ts_id>
</TS_Descr>
<Service>
<ui2_rec_id loop="2">10
11
</ui2_rec_id>
<ui1_svc_type loop="2">1
2
</ui1_svc_type>
<ac_name loop="2">Das Erste HD
Bayern 3
</ac_name>
<ui2_tsl_rec_id loop="2">0
1
</ui2_tsl_rec_id>
<dvb_info>
<ui4_prog_no loop="2">262145
524290
</ui4_prog_no>
<ui4_nw_mask loop="2">33
289
</ui4_nw_mask>
<ui1_scrambled loop="2">0
1
</ui1_scrambled>
<ui1_free_ca_mode loop="2">0
0
</ui1_free_ca_mode>
<ui2_sid loop="2">100
200
</ui2_sid>
<ui2_on_id loop="2">0
0
</ui2_on_id>
<ui2_ts_id loop="2">0
0
</ui2_ts_id>
</dvb_info>
</Service>
</SdbS>
</SdbData>
<CheckSum>00000000</CheckSum>
</SdbRoot>
`

// finalizeFixture converts the newline style and splices a valid checksum
// into the zeroed placeholder.
func finalizeFixture(t *testing.T, d Dialect, text string, crlf bool) []byte {
	t.Helper()
	if crlf {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	raw := []byte(text)
	sum, err := computeChecksum(d, raw)
	if err != nil {
		t.Fatalf("computeChecksum failed: %v", err)
	}
	out, err := spliceChecksum(raw, formatChecksum(d, sum))
	if err != nil {
		t.Fatalf("spliceChecksum failed: %v", err)
	}
	return out
}

// legacyFixtureWithVersion swaps the version string of the legacy fixture.
func legacyFixtureWithVersion(version string) string {
	return strings.Replace(legacyFixture, ">1.2.0<", ">"+version+"<", 1)
}
