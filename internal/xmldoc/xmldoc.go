// Package xmldoc holds a small XML document tree that keeps enough of the
// source layout to reproduce it byte for byte: inter-element whitespace,
// attribute order, comments and processing instructions all survive a
// parse/serialize cycle. It deliberately does not validate against any
// schema and rejects documents carrying a DTD.
package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
	CommentNode
	ProcInstNode
)

type Attr struct {
	Name  string
	Value string
}

// Node is one element, text run, comment or processing instruction. For
// elements, Name and Attrs are set and Text is empty; for the other kinds
// Text carries the content and Name holds the processing instruction target.
type Node struct {
	Kind     NodeKind
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
	Parent   *Node
}

// Document is a parsed file: nodes before the root element (declaration,
// leading whitespace), the root element, and anything after it.
type Document struct {
	Prolog []*Node
	Root   *Node
	Epilog []*Node
}

var ErrNoRootElement = errors.New("document has no root element")

// Parse builds a Document from raw bytes. Callers are expected to have
// normalized line endings beforehand; the tree stores text verbatim.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := &Document{}
	var stack []*Node

	appendNode := func(n *Node) {
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			n.Parent = parent
			parent.Children = append(parent.Children, n)
			return
		}
		if doc.Root == nil {
			doc.Prolog = append(doc.Prolog, n)
		} else {
			doc.Epilog = append(doc.Epilog, n)
		}
	}
	appendText := func(text string) {
		var siblings []*Node
		if len(stack) > 0 {
			siblings = stack[len(stack)-1].Children
		} else if doc.Root == nil {
			siblings = doc.Prolog
		} else {
			siblings = doc.Epilog
		}
		if n := len(siblings); n > 0 && siblings[n-1].Kind == TextNode {
			siblings[n-1].Text += text
			return
		}
		appendNode(&Node{Kind: TextNode, Text: text})
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Kind: ElementNode, Name: t.Name.Local}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, fmt.Errorf("parse xml: multiple root elements")
				}
				doc.Root = n
			} else {
				appendNode(n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse xml: unexpected end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			appendText(string(t))
		case xml.Comment:
			appendNode(&Node{Kind: CommentNode, Text: string(t)})
		case xml.ProcInst:
			appendNode(&Node{Kind: ProcInstNode, Name: t.Target, Text: string(t.Inst)})
		case xml.Directive:
			return nil, fmt.Errorf("parse xml: unsupported directive <!%s>", string(t))
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("parse xml: unclosed element %s", stack[len(stack)-1].Name)
	}
	if doc.Root == nil {
		return nil, ErrNoRootElement
	}
	return doc, nil
}

// WriteOptions controls the serialization quirks that differ per dialect.
type WriteOptions struct {
	// SelfCloseSpace inserts a space before the slash of a self-closing
	// tag ("<X />" instead of "<X/>").
	SelfCloseSpace bool
}

// Serialize renders the document using LF line endings as stored in the
// tree. Elements with no children at all are written self-closed.
func (d *Document) Serialize(opts WriteOptions) []byte {
	var buf bytes.Buffer
	for _, n := range d.Prolog {
		writeNode(&buf, n, opts)
	}
	writeNode(&buf, d.Root, opts)
	for _, n := range d.Epilog {
		writeNode(&buf, n, opts)
	}
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n *Node, opts WriteOptions) {
	switch n.Kind {
	case TextNode:
		buf.WriteString(escapeText(n.Text))
	case CommentNode:
		buf.WriteString("<!--")
		buf.WriteString(n.Text)
		buf.WriteString("-->")
	case ProcInstNode:
		buf.WriteString("<?")
		buf.WriteString(n.Name)
		if n.Text != "" {
			buf.WriteString(" ")
			buf.WriteString(n.Text)
		}
		buf.WriteString("?>")
	case ElementNode:
		buf.WriteByte('<')
		buf.WriteString(n.Name)
		for _, a := range n.Attrs {
			buf.WriteByte(' ')
			buf.WriteString(a.Name)
			buf.WriteString(`="`)
			buf.WriteString(escapeAttr(a.Value))
			buf.WriteByte('"')
		}
		if len(n.Children) == 0 {
			if opts.SelfCloseSpace {
				buf.WriteString(" />")
			} else {
				buf.WriteString("/>")
			}
			return
		}
		buf.WriteByte('>')
		for _, c := range n.Children {
			writeNode(buf, c, opts)
		}
		buf.WriteString("</")
		buf.WriteString(n.Name)
		buf.WriteByte('>')
	}
}

// The serializer emits canonical escapes: text always uses &amp;, &lt;
// and &gt;, attributes additionally &quot;. Input carrying other entity
// spellings (numeric references, &apos;, a literal '>') is decoded on
// parse and comes back in canonical form, so byte fidelity holds only
// for documents already written this way.
var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func escapeText(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

// Child returns the first element child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == ElementNode && c.Name == name {
			return c
		}
	}
	return nil
}

// Elements returns the element children in document order.
func (n *Node) Elements() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces the named attribute value, appending the attribute when
// it is not present yet.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// TextContent returns the concatenated text content of the node.
func (n *Node) TextContent() string {
	var b strings.Builder
	for _, c := range n.Children {
		if c.Kind == TextNode {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// SetText replaces the node's children with a single text node.
func (n *Node) SetText(text string) {
	n.Children = []*Node{{Kind: TextNode, Text: text, Parent: n}}
}
