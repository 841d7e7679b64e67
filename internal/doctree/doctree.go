// =============================================================================
// SAF-T Export - Document Tree
// =============================================================================
//
// This package defines the ordered tree that mirrors the final XML nesting.
// Section builders assemble Node values, and the xmlwriter renders them.
//
// NODE MODEL:
//   A Node is a tagged variant: either a Leaf carrying scalar text, or a
//   Branch carrying an ordered child sequence. Child order is significant
//   and is preserved exactly as appended: the SAF-T schema is a sequence
//   schema, so reordering children produces an invalid document.
//
// REPEATED ELEMENTS:
//   SAF-T emits collections as repeated sibling elements sharing one tag
//   (<Invoice>...</Invoice><Invoice>...</Invoice>), not as one wrapping
//   list element. Which tags behave this way is an explicit policy table,
//   keyed by tag name (see Repeats).
//
// =============================================================================

package doctree

import "fmt"

// =============================================================================
// NODE
// =============================================================================

// Kind discriminates the two node variants.
type Kind int

const (
	// KindLeaf is a node carrying scalar text.
	KindLeaf Kind = iota

	// KindBranch is a node carrying ordered children.
	KindBranch
)

// Node is one element of the document tree. A node is either a leaf with a
// Value or a branch with Children, never both.
type Node struct {
	// Name is the XML tag name of the node.
	Name string

	// Kind selects the variant.
	Kind Kind

	// Value is the scalar text of a leaf. Unused on branches.
	Value string

	// Children are the ordered children of a branch. Unused on leaves.
	Children []Node
}

// Leaf returns a leaf node with the given tag name and scalar value.
func Leaf(name, value string) Node {
	return Node{Name: name, Kind: KindLeaf, Value: value}
}

// Branch returns a branch node wrapping the given children in order.
func Branch(name string, children ...Node) Node {
	return Node{Name: name, Kind: KindBranch, Children: children}
}

// Append adds children to a branch, keeping insertion order.
func (n *Node) Append(children ...Node) {
	n.Children = append(n.Children, children...)
}

// =============================================================================
// REPEATED ELEMENT POLICY
// =============================================================================

// repeatedTags are the element names whose collections always emit as
// repeated siblings, decided by tag name alone.
var repeatedTags = map[string]bool{
	"Line":          true,
	"Invoice":       true,
	"Customer":      true,
	"Product":       true,
	"TaxTableEntry": true,
}

// Repeats reports whether a collection under the given tag name emits as
// repeated sibling elements. Membership is decided by tag name alone,
// except for "Payment": the Payments section holds an ordered list of
// payment records (repeated siblings), while DocumentTotals holds a single
// "Payment" map (a normal nested element), so Payment repeats only when
// the value is an ordered list.
func Repeats(name string, orderedList bool) bool {
	if repeatedTags[name] {
		return true
	}
	return name == "Payment" && orderedList
}

// Collection converts an ordered list of child sequences into nodes under
// the given tag. Tags covered by the repeated-element policy yield one
// sibling branch per entry. Any other tag gets synthesized ElementN names,
// one per entry: an integer-keyed list under a non-repeating tag would
// otherwise produce a numeric tag name, which is not well-formed XML.
func Collection(name string, entries [][]Node) []Node {
	out := make([]Node, 0, len(entries))
	if Repeats(name, true) {
		for _, children := range entries {
			out = append(out, Branch(name, children...))
		}
		return out
	}
	for i, children := range entries {
		out = append(out, Branch(fmt.Sprintf("Element%d", i), children...))
	}
	return out
}
