// =============================================================================
// SAF-T Export - MasterFiles Section
// =============================================================================
//
// Builds the MasterFiles section: the customer, product, and tax-table
// collections. Each collection emits as repeated sibling elements
// (Customer*, Product*, TaxTableEntry*) per the repeated-element policy,
// in provider order.
//
// =============================================================================

package saft

import (
	"github.com/saqlainkhadim/saft-export/internal/config"
	"github.com/saqlainkhadim/saft-export/internal/doctree"
	"github.com/saqlainkhadim/saft-export/internal/types"
)

// MasterFilesSection returns the MasterFiles subtree for the given record
// snapshot.
func MasterFilesSection(records *types.RecordSet, settings *config.SAFTSettings) doctree.Node {
	section := doctree.Branch("MasterFiles")
	section.Append(doctree.Collection("Customer", customerEntries(records.Customers, settings))...)
	section.Append(doctree.Collection("Product", productEntries(records.Products))...)
	section.Append(doctree.Collection("TaxTableEntry", taxTableEntries(records.TaxRates))...)
	return section
}

// customerEntries builds the child sequences of the Customer elements.
func customerEntries(customers []types.Contact, settings *config.SAFTSettings) [][]doctree.Node {
	entries := make([][]doctree.Node, 0, len(customers))
	for _, customer := range customers {
		entries = append(entries, []doctree.Node{
			intLeaf("CustomerID", customer.ID),
			intLeaf("AccountID", customer.ID),
			intLeaf("CustomerTaxID", customer.ID),
			doctree.Leaf("CompanyName", settings.BusinessName),
			doctree.Branch("BillingAddress",
				doctree.Leaf("AddressDetail", joinNonEmpty(customer.AddressLine1, customer.AddressLine2)),
				doctree.Leaf("City", orBlank(customer.City)),
				doctree.Leaf("PostalCode", " "),
				doctree.Leaf("Country", orBlank(customer.CountryCode)),
			),
			doctree.Leaf("Email", orBlank(customer.Email)),
			doctree.Leaf("SelfBillingIndicator", "0"),
		})
	}
	return entries
}

// productEntries builds the child sequences of the Product elements.
func productEntries(products []types.Product) [][]doctree.Node {
	entries := make([][]doctree.Node, 0, len(products))
	for _, product := range products {
		description := product.Name + " "
		if product.Description != "" {
			description = product.Name + product.Description
		}
		entries = append(entries, []doctree.Node{
			doctree.Leaf("ProductType", "P"),
			doctree.Leaf("ProductCode", product.SKU),
			doctree.Leaf("ProductDescription", description),
			intLeaf("ProductNumberCode", product.ID),
		})
	}
	return entries
}

// taxTableEntries builds the child sequences of the TaxTableEntry elements.
func taxTableEntries(rates []types.TaxRate) [][]doctree.Node {
	entries := make([][]doctree.Node, 0, len(rates))
	for _, rate := range rates {
		entries = append(entries, []doctree.Node{
			doctree.Leaf("TaxType", rate.TaxType),
			doctree.Leaf("TaxCountryRegion", rate.TaxCountryRegion),
			doctree.Leaf("TaxCode", rate.TaxCode),
			doctree.Leaf("Description", rate.Name),
			doctree.Leaf("TaxPercentage", rate.Amount.StringFixed(2)),
		})
	}
	return entries
}

// joinNonEmpty concatenates the non-empty parts, or returns a single blank
// so the element is never empty.
func joinNonEmpty(parts ...string) string {
	joined := ""
	for _, part := range parts {
		joined += part
	}
	if joined == "" {
		return " "
	}
	return joined
}

// orBlank substitutes a single blank for an empty value.
func orBlank(s string) string {
	if s == "" {
		return " "
	}
	return s
}
