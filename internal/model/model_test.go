package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOrbitalPos(t *testing.T) {
	tests := []struct {
		tenths int
		want   string
	}{
		{tenths: -152, want: "15.2W"},
		{tenths: 192, want: "19.2E"},
		{tenths: 0, want: "0.0E"},
		{tenths: -5, want: "0.5W"},
		{tenths: 1305, want: "130.5E"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatOrbitalPos(tc.tenths), "tenths=%d", tc.tenths)
	}
}

func TestIDOffsetsNeverCollide(t *testing.T) {
	kinds := []ListKind{ListAir, ListCable, ListSat, ListSat2, ListSat3}
	// Row indices stay far below 0x10000 in practice; the offsets must keep
	// the id spaces disjoint for any index in that range.
	const maxRows = 0x10000
	for _, a := range kinds {
		for _, b := range kinds {
			if a == b {
				continue
			}
			lowA, highA := a.IDOffset(), a.IDOffset()+maxRows-1
			lowB := b.IDOffset()
			if lowB >= lowA && lowB <= highA {
				t.Fatalf("id ranges of %s and %s overlap", a, b)
			}
		}
	}
}

func TestParseListKind(t *testing.T) {
	for _, k := range []ListKind{ListAir, ListCable, ListSat, ListSat2, ListSat3} {
		got, err := ParseListKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseListKind("cosmic")
	assert.Error(t, err)
}

func TestFieldMapKeepsInsertionOrder(t *testing.T) {
	m := NewFieldMap()
	m.Set("Rec_Id", "1")
	m.Set("Name", "arte")
	m.Set("Attr", "0")
	m.Set("Name", "arte HD") // update must not reorder

	require.Equal(t, []string{"Rec_Id", "Name", "Attr"}, m.Keys())
	v, ok := m.Get("Name")
	require.True(t, ok)
	assert.Equal(t, "arte HD", v)
	_, ok = m.Get("No")
	assert.False(t, ok)
	assert.Equal(t, 3, m.Len())
}

func TestSetNameMarksModified(t *testing.T) {
	c := &Channel{Name: "ZDF"}
	c.SetName("ZDF")
	assert.False(t, c.NameModified, "unchanged name must not mark the channel")
	c.SetName("ZDF HD")
	assert.True(t, c.NameModified)
	assert.Equal(t, "ZDF HD", c.Name)
}

func TestDataRootRegistries(t *testing.T) {
	root := NewDataRoot()
	list := NewChannelList(ListSat, "DVB-S")
	root.AddList(list)

	sat := &Satellite{ID: ListSat.IDOffset() + 0, Name: "Astra", OrbitalPos: "19.2E"}
	list.AddSatellite(sat)
	tp := &Transponder{ID: ListSat.IDOffset() + 3, FrequencyMHz: 11362, Satellite: sat}
	list.AddTransponder(tp)
	list.AddChannel(&Channel{Kind: ListSat, Transponder: tp})

	require.Same(t, list, root.ListByKind(ListSat))
	require.Nil(t, root.ListByKind(ListCable))
	assert.Same(t, sat, list.SatelliteByID(sat.ID))
	assert.Same(t, tp, list.TransponderByID(tp.ID))
	assert.Nil(t, list.TransponderByID(99))
	assert.Equal(t, 1, root.ChannelCount())
}
