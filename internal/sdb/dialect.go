package sdb

import (
	"fmt"
	"strings"

	"example.com/chandb/internal/model"
	"example.com/chandb/internal/xmldoc"
)

// Element and attribute names shared by all dialects.
const (
	elemRoot       = "SdbRoot"
	elemData       = "SdbData"
	elemFormatVer  = "FormatVer"
	elemFormatVerE = "FormateVer" // misspelled variant, flags E-Format
	elemChecksum   = "CheckSum"

	elemSatellite = "Satellite"
	elemMultiplex = "Multiplex"
	elemTSDescr   = "TS_Descr"
	elemService   = "Service"
	elemProgramme = "Programme"
	elemDVBInfo   = "dvb_info"

	attrLoop = "loop"
)

// Dialect is the closed set of recognized format variants. It is fixed once
// per document and selects field names, unit scaling, the checksum
// sub-algorithm and output formatting quirks.
type Dialect int

const (
	DialectLegacy100 Dialect = iota
	DialectLegacy110
	DialectLegacy120
	DialectE
)

func (d Dialect) String() string {
	switch d {
	case DialectLegacy100:
		return "legacy-1.0.0"
	case DialectLegacy110:
		return "legacy-1.1.0"
	case DialectLegacy120:
		return "legacy-1.2.0"
	case DialectE:
		return "e-format"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// IsE reports whether the dialect is the structurally distinct E-Format.
func (d Dialect) IsE() bool { return d == DialectE }

// selfCloseSpace returns whether empty tags serialize as "<X />".
func (d Dialect) selfCloseSpace() bool { return d != DialectE }

// checksumPrefix is the textual prefix of the stored checksum value.
func (d Dialect) checksumPrefix() string {
	if d == DialectE {
		return ""
	}
	return "0x"
}

// acceptedVersions is the fixed allow-list of version strings; the E entry
// carries the marker prefix added for the misspelled element.
var acceptedVersions = map[string]Dialect{
	"1.0.0":  DialectLegacy100,
	"1.1.0":  DialectLegacy110,
	"1.2.0":  DialectLegacy120,
	"e1.0.0": DialectE,
}

// detectDialect classifies the document by its version marker element and
// returns the dialect together with the literal (possibly prefixed) version
// string.
func detectDialect(root *xmldoc.Node) (Dialect, string, error) {
	if root == nil || root.Name != elemRoot {
		return 0, "", fmt.Errorf("%w: unexpected root element", ErrNotSupportedFormat)
	}
	ver := root.Child(elemFormatVer)
	eFormat := false
	if ver == nil {
		ver = root.Child(elemFormatVerE)
		eFormat = true
	}
	if ver == nil {
		return 0, "", fmt.Errorf("%w: version marker missing", ErrNotSupportedFormat)
	}
	version := strings.TrimSpace(ver.TextContent())
	if eFormat {
		version = "e" + version
	}
	d, ok := acceptedVersions[version]
	if !ok {
		return 0, "", fmt.Errorf("%w: version %q", ErrNotSupportedFormat, version)
	}
	return d, version, nil
}

// listSection binds a top-level section element to its list kind and, for
// the legacy dialects, the name of the nested per-system parameter block.
type listSection struct {
	element    string
	kind       model.ListKind
	caption    string
	paramBlock string
}

// The five list kinds sharing one satellite/transponder id space; section
// order is the document order.
var listSections = []listSection{
	{element: "SdbT", kind: model.ListAir, caption: "Terrestrial", paramBlock: "TerParam"},
	{element: "SdbC", kind: model.ListCable, caption: "Cable", paramBlock: "CabParam"},
	{element: "SdbS", kind: model.ListSat, caption: "Satellite", paramBlock: "SatParam"},
	{element: "SdbS2", kind: model.ListSat2, caption: "Satellite 2", paramBlock: "SatParam"},
	{element: "SdbS3", kind: model.ListSat3, caption: "Satellite 3", paramBlock: "SatParam"},
}
