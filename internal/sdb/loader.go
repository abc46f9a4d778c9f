// Package sdb implements the bidirectional codec for the SDB XML channel
// database: four dialects in, a normalized channel model out, and a
// byte-faithful write-back with a recomputed integrity checksum.
//
// A Document is owned by exactly one goroutine for its lifetime. Load
// fully populates the model before returning and Save fully consumes it;
// nothing here suspends or shares state.
package sdb

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"example.com/chandb/internal/model"
	"example.com/chandb/internal/xmldoc"
)

// Document is one loaded channel database: the retained tree, the
// detected dialect, the original newline convention and the per-list
// channel bookkeeping needed for write-back.
type Document struct {
	newline string
	dialect Dialect
	version string
	tree    *xmldoc.Document
	lists   []*listState
}

// listState ties a populated list to its section node; channels are kept
// in record order.
type listState struct {
	def      listSection
	section  *xmldoc.Node
	channels []*model.Channel
}

func (doc *Document) Dialect() Dialect { return doc.dialect }

// Version returns the literal version string, E-prefixed for E-Format.
func (doc *Document) Version() string { return doc.version }

// NewlineStyle returns "\n" or "\r\n" as detected from the source bytes.
func (doc *Document) NewlineStyle() string { return doc.newline }

// Checksum returns the stored checksum text, prefix included for legacy.
func (doc *Document) Checksum() string {
	if n := doc.tree.Root.Child(elemChecksum); n != nil {
		return strings.TrimSpace(n.TextContent())
	}
	return ""
}

// Load reads and decodes the channel database at path, populating root on
// success. Loading is all-or-nothing: on any error root stays untouched.
func Load(path string, root *model.DataRoot) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(raw, root)
}

// LoadBytes decodes an in-memory document. See Load.
func LoadBytes(raw []byte, root *model.DataRoot) (*Document, error) {
	newline := "\n"
	normalized := raw
	if bytes.Contains(raw, []byte("\r\n")) {
		newline = "\r\n"
		normalized = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	}

	tree, err := xmldoc.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSupportedFormat, err)
	}
	dialect, version, err := detectDialect(tree.Root)
	if err != nil {
		return nil, err
	}
	data := tree.Root.Child(elemData)
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingElement, elemData)
	}
	chkNode := tree.Root.Child(elemChecksum)
	if chkNode == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingElement, elemChecksum)
	}

	doc := &Document{newline: newline, dialect: dialect, version: version, tree: tree}
	var lists []*model.ChannelList
	for _, def := range listSections {
		section := data.Child(def.element)
		if section == nil {
			continue
		}
		list := model.NewChannelList(def.kind, def.caption)
		list.VisibleColumns = defaultVisibleColumns()
		if err := buildTopology(dialect, def, section, list); err != nil {
			return nil, err
		}
		channels, err := assembleServices(dialect, def, section, list)
		if err != nil {
			return nil, err
		}
		doc.lists = append(doc.lists, &listState{def: def, section: section, channels: channels})
		lists = append(lists, list)
	}

	if err := verifyChecksum(dialect, raw, chkNode.TextContent()); err != nil {
		return nil, err
	}

	for _, l := range lists {
		root.AddList(l)
	}
	return doc, nil
}

// Save renders the edited document and writes it to path.
func (doc *Document) Save(path string) error {
	out, err := doc.Render()
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

// Render re-renders the channel blocks, serializes the tree with the
// original formatting conventions, and patches the freshly computed
// checksum into the serialized text. The text is not serialized a second
// time after the patch.
func (doc *Document) Render() ([]byte, error) {
	doc.renderChannelBlocks()
	text := doc.tree.Serialize(xmldoc.WriteOptions{SelfCloseSpace: doc.dialect.selfCloseSpace()})
	if doc.newline == "\r\n" {
		text = bytes.ReplaceAll(text, []byte("\n"), []byte("\r\n"))
	}
	sum, err := computeChecksum(doc.dialect, text)
	if err != nil {
		return nil, err
	}
	return spliceChecksum(text, formatChecksum(doc.dialect, sum))
}

// spliceChecksum substitutes the checksum element's value inside the
// already serialized text.
func spliceChecksum(text []byte, value string) ([]byte, error) {
	open := []byte("<" + elemChecksum + ">")
	closing := []byte("</" + elemChecksum + ">")
	start := bytes.Index(text, open)
	if start < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingElement, elemChecksum)
	}
	valStart := start + len(open)
	rel := bytes.Index(text[valStart:], closing)
	if rel < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingElement, elemChecksum)
	}
	out := make([]byte, 0, len(text)+len(value))
	out = append(out, text[:valStart]...)
	out = append(out, value...)
	out = append(out, text[valStart+rel:]...)
	return out, nil
}

func defaultVisibleColumns() []string {
	return []string{"No", "Name", "Signal", "Favorites", "Encrypted", "Hidden"}
}
