// =============================================================================
// SAF-T Export - SourceDocuments Section
// =============================================================================
//
// Builds the SourceDocuments section from the derived aggregates:
//
//   SourceDocuments
//   ├── SalesInvoices: NumberOfEntries, TotalDebit, TotalCredit, Invoice*
//   └── Payments:      NumberOfEntries, TotalDebit, TotalCredit, Payment*
//
// The Invoice and Payment collections emit as repeated siblings after the
// totals leaves. All values come out of the aggregate module; this file
// only shapes them into the tree.
//
// =============================================================================

package saft

import (
	"strconv"
	"time"

	"github.com/saqlainkhadim/saft-export/internal/aggregate"
	"github.com/saqlainkhadim/saft-export/internal/doctree"
)

// Fixed document classification values of the targeted schema.
const (
	invoiceStatus = "N"
	sourceBilling = "P"
	invoiceType   = "FR"
	paymentStatus = "N"
	sourcePayment = "P"
	paymentType   = "RG"
)

// SourceDocumentsSection returns the SourceDocuments subtree. The period
// element of each document reports the reporting month.
func SourceDocumentsSection(invoices []aggregate.Invoice, invoiceTotals aggregate.FileTotals,
	payments []aggregate.PaymentRecord, paymentTotals aggregate.FileTotals, period time.Time) doctree.Node {

	sales := doctree.Branch("SalesInvoices", totalsLeaves(invoiceTotals)...)
	sales.Append(doctree.Collection("Invoice", invoiceEntries(invoices, period))...)

	pays := doctree.Branch("Payments", totalsLeaves(paymentTotals)...)
	pays.Append(doctree.Collection("Payment", paymentEntries(payments, period))...)

	return doctree.Branch("SourceDocuments", sales, pays)
}

// totalsLeaves renders the section totals. TotalDebit is zero by design
// for both sections.
func totalsLeaves(totals aggregate.FileTotals) []doctree.Node {
	return []doctree.Node{
		intLeaf("NumberOfEntries", totals.NumberOfEntries),
		doctree.Leaf("TotalDebit", totals.TotalDebit.StringFixed(2)),
		doctree.Leaf("TotalCredit", totals.TotalCredit.StringFixed(2)),
	}
}

// invoiceEntries builds the child sequences of the Invoice elements.
func invoiceEntries(invoices []aggregate.Invoice, period time.Time) [][]doctree.Node {
	entries := make([][]doctree.Node, 0, len(invoices))
	for _, invoice := range invoices {
		children := []doctree.Node{
			doctree.Leaf("InvoiceNo", invoice.InvoiceNo),
			doctree.Branch("DocumentStatus",
				doctree.Leaf("InvoiceStatus", invoiceStatus),
				doctree.Leaf("InvoiceStatusDate", invoice.StatusDate.Format(dateTimeLayout)),
				intLeaf("SourceID", invoice.SourceID),
				doctree.Leaf("SourceBilling", sourceBilling),
			),
			doctree.Leaf("Hash", invoice.Hash),
			doctree.Leaf("HashControl", aggregate.HashControl),
			doctree.Leaf("Period", period.Format(monthLayout)),
			// TODO: confirm against the AO schema whether InvoiceDate should
			// carry a full date. Year-only matches the accepted filings so far.
			doctree.Leaf("InvoiceDate", invoice.InvoiceDate.Format(yearLayout)),
			doctree.Leaf("InvoiceType", invoiceType),
			doctree.Branch("SpecialRegimes",
				doctree.Leaf("SelfBillingIndicator", "0"),
				doctree.Leaf("CashVATSchemeIndicator", "0"),
				doctree.Leaf("ThirdPartiesBillingIndicator", "0"),
			),
			intLeaf("SourceID", invoice.SourceID),
			doctree.Leaf("SystemEntryDate", invoice.SystemEntryDate.Format(dateTimeLayout)),
			intLeaf("CustomerID", invoice.CustomerID),
		}

		children = append(children, doctree.Collection("Line", lineEntries(invoice.Lines))...)

		children = append(children, doctree.Branch("DocumentTotals",
			doctree.Leaf("TaxPayable", invoice.TaxPayable.StringFixed(2)),
			doctree.Leaf("NetTotal", invoice.NetTotal.StringFixed(2)),
			doctree.Leaf("GrossTotal", invoice.GrossTotal.StringFixed(2)),
			doctree.Branch("Payment",
				doctree.Leaf("PaymentMechanism", invoice.Payment.Mechanism),
				doctree.Leaf("PaymentAmount", invoice.Payment.Amount.StringFixed(2)),
				doctree.Leaf("PaymentDate", invoice.Payment.Date.Format(dateLayout)),
			),
		))

		entries = append(entries, children)
	}
	return entries
}

// lineEntries builds the child sequences of the Line elements of one
// invoice. Exactly one of the two tax representations appears per line.
func lineEntries(lines []aggregate.LineItem) [][]doctree.Node {
	entries := make([][]doctree.Node, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, []doctree.Node{
			intLeaf("LineNumber", line.Number),
			doctree.Leaf("ProductCode", line.ProductCode),
			doctree.Leaf("ProductDescription", line.ProductDescription),
			doctree.Leaf("Quantity", line.Quantity.String()),
			doctree.Leaf("UnitOfMeasure", line.UnitOfMeasure),
			doctree.Leaf("UnitPrice", line.UnitPrice.StringFixed(2)),
			doctree.Leaf("TaxPointDate", line.TaxPointDate.Format(dateLayout)),
			doctree.Leaf("Description", line.Description),
			doctree.Leaf("CreditAmount", line.CreditAmount.StringFixed(2)),
			lineTaxNode(line.Tax),
		})
	}
	return entries
}

// lineTaxNode renders the tax-code block for a matched rate, or the
// exemption block otherwise.
func lineTaxNode(tax aggregate.LineTax) doctree.Node {
	if tax.Matched {
		return doctree.Branch("Tax",
			doctree.Leaf("TaxType", tax.TaxType),
			doctree.Leaf("TaxCountryRegion", tax.TaxCountryRegion),
			doctree.Leaf("TaxCode", tax.TaxCode),
			doctree.Leaf("ThirdPartiesBillingIndicator", "0"),
			doctree.Leaf("TaxPercentage", tax.TaxPercentage.StringFixed(2)),
		)
	}
	return doctree.Branch("Tax",
		doctree.Leaf("TaxExemptionReason", tax.ExemptionReason),
		doctree.Leaf("TaxExemptionCode", tax.ExemptionCode),
	)
}

// paymentEntries builds the child sequences of the Payment elements.
func paymentEntries(payments []aggregate.PaymentRecord, period time.Time) [][]doctree.Node {
	entries := make([][]doctree.Node, 0, len(payments))
	for _, payment := range payments {
		line := []doctree.Node{
			doctree.Leaf("LineNumber", strconv.Itoa(1)),
			doctree.Branch("SourceDocumentID",
				doctree.Leaf("OriginatingON", payment.OriginatingON),
				doctree.Leaf("InvoiceDate", payment.InvoiceDate.Format(dateTimeLayout)),
			),
			doctree.Leaf("DebitAmount", payment.DebitAmount.StringFixed(2)),
			doctree.Leaf("CreditAmount", payment.CreditAmount.StringFixed(2)),
		}

		children := []doctree.Node{
			doctree.Leaf("PaymentRefNo", payment.PaymentRef),
			doctree.Leaf("Period", period.Format(monthLayout)),
			doctree.Leaf("TransactionDate", payment.TransactionDate.Format(dateLayout)),
			doctree.Leaf("PaymentType", paymentType),
			intLeaf("SystemID", payment.SystemID),
			doctree.Branch("DocumentStatus",
				doctree.Leaf("PaymentStatus", paymentStatus),
				doctree.Leaf("PaymentStatusDate", payment.StatusDate.Format(dateTimeLayout)),
				intLeaf("SourceID", payment.SourceID),
				doctree.Leaf("SourcePayment", sourcePayment),
			),
			doctree.Branch("PaymentMethod",
				doctree.Leaf("PaymentMechanism", payment.Mechanism),
				doctree.Leaf("PaymentAmount", payment.Amount.StringFixed(2)),
				doctree.Leaf("PaymentDate", payment.PaidOn.Format(dateLayout)),
			),
			intLeaf("SourceID", payment.SourceID),
			doctree.Leaf("SystemEntryDate", payment.SystemEntryDate.Format(dateTimeLayout)),
			intLeaf("CustomerID", payment.CustomerID),
		}
		children = append(children, doctree.Collection("Line", [][]doctree.Node{line})...)

		entries = append(entries, children)
	}
	return entries
}
