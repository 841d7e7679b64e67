// =============================================================================
// SAF-T Export - XML Writer Module
// =============================================================================
//
// This module renders a document tree into the SAF-T XML byte stream. It is
// the only component that understands the wire format.
//
// XML STRUCTURE:
//   <AuditFile xmlns="urn:OECD:StandardAuditFile-Tax:AO_1.01_01"
//              xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
//     <Header>...</Header>
//     <MasterFiles>
//       <Customer>...</Customer>          <!-- repeated siblings -->
//       <Product>...</Product>
//       <TaxTableEntry>...</TaxTableEntry>
//     </MasterFiles>
//     <SourceDocuments>...</SourceDocuments>
//   </AuditFile>
//
// The writer does not use encoding/xml struct marshalling: the document is
// a dynamic tree whose element order and repeated sibling tags must be
// emitted exactly as built, which struct tags cannot express.
//
// FAILURE MODES:
//   Serialization fails, rather than truncating silently, when a node name
//   cannot form a legal XML tag or a value is not valid UTF-8. On failure
//   no partial document is returned.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/saqlainkhadim/saft-export/internal/doctree"
)

// Namespace declarations and the audit file version required by the target
// schema.
const (
	Namespace    = "urn:OECD:StandardAuditFile-Tax:AO_1.01_01"
	NamespaceXSI = "http://www.w3.org/2001/XMLSchema-instance"

	// AuditFileVersion is the targeted audit file version. It appears both
	// here and as the Header's first element.
	AuditFileVersion = "1.01_01"
)

// Fatal serialization errors. Both abort the export before any partial
// file is emitted.
var (
	// ErrInvalidTagName is returned when a node name is empty or contains
	// characters illegal in an XML tag.
	ErrInvalidTagName = errors.New("invalid XML tag name")

	// ErrInvalidEncoding is returned when a value cannot be represented in
	// the output text encoding (UTF-8).
	ErrInvalidEncoding = errors.New("value is not valid UTF-8")
)

// =============================================================================
// OPTIONS
// =============================================================================

// Attr is one attribute of the root element. Attributes are ordered so
// output stays byte-reproducible.
type Attr struct {
	Name  string
	Value string
}

// Options contains options for XML generation.
type Options struct {
	// Indent is the string used for one level of indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to emit the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// Encoding is the encoding named in the XML declaration. Values are
	// always emitted as UTF-8; this only changes the declaration text.
	// Default: "UTF-8"
	Encoding string

	// RootAttributes are the attributes of the root element, in order.
	// Default: the two SAF-T namespace declarations.
	RootAttributes []Attr
}

// DefaultOptions returns the options used for compliant SAF-T output.
func DefaultOptions() Options {
	return Options{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		Encoding:              "UTF-8",
		RootAttributes: []Attr{
			{Name: "xmlns", Value: Namespace},
			{Name: "xmlns:xsi", Value: NamespaceXSI},
		},
	}
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// Serialize renders the document tree depth-first into XML bytes. The root
// node is expected to be the AuditFile branch assembled by the orchestrator;
// the writer adds the declaration and the root attributes around it.
func Serialize(root doctree.Node, options Options) ([]byte, error) {
	if options.Indent == "" {
		options.Indent = "  "
	}
	if options.Encoding == "" {
		options.Encoding = "UTF-8"
	}

	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		fmt.Fprintf(&buffer, "<?xml version=\"1.0\" encoding=\"%s\"?>\n", options.Encoding)
	}

	if err := validateTagName(root.Name); err != nil {
		return nil, err
	}

	// Root element with ordered attributes.
	buffer.WriteString("<")
	buffer.WriteString(root.Name)
	for _, attr := range options.RootAttributes {
		fmt.Fprintf(&buffer, " %s=\"%s\"", attr.Name, escapeXML(attr.Value))
	}
	buffer.WriteString(">\n")

	for _, child := range root.Children {
		if err := writeElement(&buffer, child, options.Indent, 1); err != nil {
			return nil, err
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(root.Name)
	buffer.WriteString(">\n")

	return buffer.Bytes(), nil
}

// writeElement writes one element and its subtree with indentation.
func writeElement(buffer *bytes.Buffer, node doctree.Node, indent string, level int) error {
	if err := validateTagName(node.Name); err != nil {
		return err
	}

	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(node.Name)

	if node.Kind == doctree.KindBranch && len(node.Children) == 0 {
		// Empty branch: self-closing tag.
		buffer.WriteString("/>\n")
		return nil
	}

	buffer.WriteString(">")

	if node.Kind == doctree.KindLeaf {
		if !utf8.ValidString(node.Value) {
			return fmt.Errorf("element %s: %w", node.Name, ErrInvalidEncoding)
		}
		buffer.WriteString(escapeXML(node.Value))
	} else {
		buffer.WriteString("\n")
		for _, child := range node.Children {
			if err := writeElement(buffer, child, indent, level+1); err != nil {
				return err
			}
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(node.Name)
	buffer.WriteString(">\n")

	return nil
}

// =============================================================================
// ESCAPING AND VALIDATION
// =============================================================================

// escapeXML escapes the five XML metacharacters. Every leaf value and
// attribute value passes through here; raw business-supplied text is
// never emitted.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// validateTagName checks that a derived key can form a legal XML tag:
// non-empty, valid UTF-8, a letter or underscore first, then letters,
// digits, '-', '_' or '.'.
func validateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("empty tag name: %w", ErrInvalidTagName)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("tag %q: %w", name, ErrInvalidTagName)
	}
	for i, r := range name {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return fmt.Errorf("tag %q: %w", name, ErrInvalidTagName)
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '.' {
			return fmt.Errorf("tag %q: %w", name, ErrInvalidTagName)
		}
	}
	return nil
}
