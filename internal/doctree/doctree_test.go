package doctree

import "testing"

func TestRepeats(t *testing.T) {
	tests := []struct {
		name        string
		tag         string
		orderedList bool
		want        bool
	}{
		{"Line repeats by name", "Line", false, true},
		{"Invoice repeats by name", "Invoice", false, true},
		{"Customer repeats by name", "Customer", false, true},
		{"Product repeats by name", "Product", false, true},
		{"TaxTableEntry repeats by name", "TaxTableEntry", false, true},
		{"Payment repeats only as ordered list", "Payment", true, true},
		{"Payment map shape nests normally", "Payment", false, false},
		{"DocumentTotals never repeats", "DocumentTotals", true, false},
		{"Header never repeats", "Header", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Repeats(tt.tag, tt.orderedList); got != tt.want {
				t.Errorf("Repeats(%q, %v) = %v, want %v", tt.tag, tt.orderedList, got, tt.want)
			}
		})
	}
}

func TestCollectionRepeatedSiblings(t *testing.T) {
	entries := [][]Node{
		{Leaf("TaxCode", "NOR")},
		{Leaf("TaxCode", "ISE")},
		{Leaf("TaxCode", "RED")},
	}

	nodes := Collection("TaxTableEntry", entries)

	if len(nodes) != 3 {
		t.Fatalf("Collection() returned %d nodes, want 3", len(nodes))
	}
	for i, node := range nodes {
		if node.Name != "TaxTableEntry" {
			t.Errorf("node %d name = %q, want TaxTableEntry", i, node.Name)
		}
		if node.Kind != KindBranch {
			t.Errorf("node %d is not a branch", i)
		}
	}
	if nodes[1].Children[0].Value != "ISE" {
		t.Errorf("entry order not preserved: got %q", nodes[1].Children[0].Value)
	}
}

func TestCollectionNumericKeyGuard(t *testing.T) {
	entries := [][]Node{
		{Leaf("Value", "a")},
		{Leaf("Value", "b")},
	}

	nodes := Collection("Attachments", entries)

	want := []string{"Element0", "Element1"}
	if len(nodes) != len(want) {
		t.Fatalf("Collection() returned %d nodes, want %d", len(nodes), len(want))
	}
	for i, node := range nodes {
		if node.Name != want[i] {
			t.Errorf("node %d name = %q, want %q", i, node.Name, want[i])
		}
	}
}

func TestBranchPreservesInsertionOrder(t *testing.T) {
	branch := Branch("Header", Leaf("A", "1"))
	branch.Append(Leaf("B", "2"), Leaf("C", "3"))

	want := []string{"A", "B", "C"}
	if len(branch.Children) != len(want) {
		t.Fatalf("branch has %d children, want %d", len(branch.Children), len(want))
	}
	for i, child := range branch.Children {
		if child.Name != want[i] {
			t.Errorf("child %d name = %q, want %q", i, child.Name, want[i])
		}
	}
}

func TestLeafAndBranchVariants(t *testing.T) {
	leaf := Leaf("CompanyName", "Acme")
	if leaf.Kind != KindLeaf || leaf.Value != "Acme" || len(leaf.Children) != 0 {
		t.Errorf("Leaf() = %+v, want leaf variant with value only", leaf)
	}

	branch := Branch("MasterFiles")
	if branch.Kind != KindBranch || branch.Value != "" {
		t.Errorf("Branch() = %+v, want branch variant without value", branch)
	}
}
