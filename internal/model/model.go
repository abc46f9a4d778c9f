// Package model holds the in-memory channel database: per-list registries
// of satellites, transponders and channels, plus the per-channel field
// overlays the codec needs for lossless write-back. The model is owned by
// the caller; the codec populates it on load and reads it back on save.
package model

import "fmt"

// ListKind identifies one of the five broadcast list kinds a channel
// database may carry.
type ListKind int

const (
	ListAir ListKind = iota
	ListCable
	ListSat
	ListSat2
	ListSat3
)

// IDOffset returns the additive offset applied to row-local satellite and
// transponder ids so the five kinds never collide in one id space.
func (k ListKind) IDOffset() int {
	switch k {
	case ListAir:
		return 0
	case ListCable:
		return 0x10000
	case ListSat:
		return 0x20000
	case ListSat2:
		return 0x30000
	case ListSat3:
		return 0x40000
	}
	return 0
}

// IsSatellite reports whether the kind carries satellite topology.
func (k ListKind) IsSatellite() bool {
	return k == ListSat || k == ListSat2 || k == ListSat3
}

func (k ListKind) String() string {
	switch k {
	case ListAir:
		return "terrestrial"
	case ListCable:
		return "cable"
	case ListSat:
		return "satellite"
	case ListSat2:
		return "satellite-2"
	case ListSat3:
		return "satellite-3"
	}
	return fmt.Sprintf("ListKind(%d)", int(k))
}

// ParseListKind is the inverse of String.
func ParseListKind(s string) (ListKind, error) {
	for _, k := range []ListKind{ListAir, ListCable, ListSat, ListSat2, ListSat3} {
		if s == k.String() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown list kind %q", s)
}

// SignalKind is the TV/radio discriminant derived from the DVB service type.
type SignalKind int

const (
	SignalUnknown SignalKind = iota
	SignalTV
	SignalRadio
)

func (s SignalKind) String() string {
	switch s {
	case SignalTV:
		return "TV"
	case SignalRadio:
		return "Radio"
	}
	return "?"
}

type Polarity byte

const (
	PolarityNone       Polarity = 0
	PolarityHorizontal Polarity = 'H'
	PolarityVertical   Polarity = 'V'
)

// Satellite is an orbital position entry. Immutable after load.
type Satellite struct {
	ID   int
	Name string
	// OrbitalPos is the formatted position, e.g. "19.2E".
	OrbitalPos string
}

// FormatOrbitalPos renders a tenths-of-degree integer as decimal degrees
// with an East/West suffix derived from the sign.
func FormatOrbitalPos(tenths int) string {
	suffix := "E"
	if tenths < 0 {
		suffix = "W"
		tenths = -tenths
	}
	return fmt.Sprintf("%d.%d%s", tenths/10, tenths%10, suffix)
}

// Transponder describes one multiplex. Satellite may be nil for kinds
// without satellite topology.
type Transponder struct {
	ID                int
	FrequencyMHz      float64
	SymbolRate        int
	Polarity          Polarity
	OriginalNetworkID int
	TransportStreamID int
	Satellite         *Satellite
}

// Channel is one service row. The codec fills every field at load time;
// editors may change Name (through SetName), NewProgramNr, Favorites,
// IsDeleted and Hidden between load and save. ServiceData and
// ProgrammeData hold every source column value keyed by column name and
// must keep exactly the key set of the blocks the channel was built from.
type Channel struct {
	Kind        ListKind
	RecordOrder int
	RecordID    int

	Name         string
	NameModified bool

	ServiceID         int
	ServiceType       int
	Signal            SignalKind
	OriginalNetworkID int
	TransportStreamID int

	OldProgramNr int
	NewProgramNr int
	IsDeleted    bool
	Hidden       bool
	Encrypted    bool
	Favorites    uint8

	Transponder *Transponder

	ServiceData   *FieldMap
	ProgrammeData *FieldMap
}

// SetName updates the channel name and marks it modified so write-back
// substitutes it into the name column.
func (c *Channel) SetName(name string) {
	if name == c.Name {
		return
	}
	c.Name = name
	c.NameModified = true
}

// ChannelList is the per-kind registry.
type ChannelList struct {
	Kind           ListKind
	Caption        string
	VisibleColumns []string

	Satellites   map[int]*Satellite
	Transponders map[int]*Transponder
	Channels     []*Channel
}

func NewChannelList(kind ListKind, caption string) *ChannelList {
	return &ChannelList{
		Kind:         kind,
		Caption:      caption,
		Satellites:   make(map[int]*Satellite),
		Transponders: make(map[int]*Transponder),
	}
}

func (l *ChannelList) AddSatellite(s *Satellite) {
	l.Satellites[s.ID] = s
}

func (l *ChannelList) AddTransponder(tp *Transponder) {
	l.Transponders[tp.ID] = tp
}

func (l *ChannelList) AddChannel(c *Channel) {
	l.Channels = append(l.Channels, c)
}

func (l *ChannelList) SatelliteByID(id int) *Satellite {
	return l.Satellites[id]
}

func (l *ChannelList) TransponderByID(id int) *Transponder {
	return l.Transponders[id]
}

// DataRoot aggregates the lists of one loaded document.
type DataRoot struct {
	Lists []*ChannelList
}

func NewDataRoot() *DataRoot {
	return &DataRoot{}
}

// AddList registers a list; one list per kind.
func (r *DataRoot) AddList(l *ChannelList) {
	r.Lists = append(r.Lists, l)
}

// ListByKind returns the registered list of the given kind, or nil.
func (r *DataRoot) ListByKind(kind ListKind) *ChannelList {
	for _, l := range r.Lists {
		if l.Kind == kind {
			return l
		}
	}
	return nil
}

// ChannelCount sums the channels across all lists.
func (r *DataRoot) ChannelCount() int {
	total := 0
	for _, l := range r.Lists {
		total += len(l.Channels)
	}
	return total
}
