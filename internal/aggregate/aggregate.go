// =============================================================================
// SAF-T Export - Aggregation Module
// =============================================================================
//
// This module derives the financial fields of the export from the raw sale
// and payment records: per-line credit amounts, invoice tax payable,
// gross/net totals, payment reconciliation, and the file-level totals of
// the SalesInvoices and Payments sections.
//
// AGGREGATION RULES:
//   - A sale with zero item lines is skipped entirely: it appears nowhere
//     in the output and contributes nothing to NumberOfEntries/TotalCredit.
//   - Every item line carries exactly one tax representation: the matched
//     rate's classification block, or the simplified-regime exemption when
//     the rate lookup fails. Never both, never neither.
//   - TotalDebit is fixed at zero for both sections; all amounts flow
//     through credit fields.
//
// All arithmetic uses shopspring/decimal so totals are exact.
//
// =============================================================================

package aggregate

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saqlainkhadim/saft-export/internal/types"
)

// Exemption emitted for lines whose tax rate cannot be matched.
const (
	TaxExemptionReason = "Regime Simplificado"
	TaxExemptionCode   = "M00"
)

// PartialMechanism is the payment mechanism reported when a multi-line
// payment mixes methods.
const PartialMechanism = "PARTIAL"

// =============================================================================
// HASH COLLABORATOR
// =============================================================================

// Hasher supplies the invoice Hash value. Real digital-signature
// computation is an external collaborator; the aggregator only records
// what the collaborator returns.
type Hasher interface {
	// InvoiceHash returns the Hash value for one sale.
	InvoiceHash(sale types.SaleInvoice) string
}

// StaticHasher is a Hasher returning a configured literal for every
// invoice. It stands in until a signing collaborator is wired.
type StaticHasher struct {
	Value string
}

// InvoiceHash implements Hasher.
func (h StaticHasher) InvoiceHash(types.SaleInvoice) string { return h.Value }

// HashControl is the hash control version reported alongside the hash.
const HashControl = "1"

// =============================================================================
// DERIVED AGGREGATES
// =============================================================================

// LineTax is the tax representation of one item line: either the matched
// rate's classification or the exemption pair, selected by Matched.
type LineTax struct {
	// Matched is true when the line's tax rate was found among the
	// business's configured rates.
	Matched bool

	// Classification fields, set when Matched.
	TaxType          string
	TaxCountryRegion string
	TaxCode          string
	TaxPercentage    decimal.Decimal

	// Exemption pair, set when not Matched.
	ExemptionReason string
	ExemptionCode   string
}

// LineItem is one derived item line of an invoice.
type LineItem struct {
	Number             int
	ProductCode        string
	ProductDescription string
	Quantity           decimal.Decimal
	UnitOfMeasure      string
	UnitPrice          decimal.Decimal
	TaxPointDate       time.Time
	Description        string
	CreditAmount       decimal.Decimal
	Tax                LineTax
}

// PaymentSummary is the reconciled payment of one invoice.
type PaymentSummary struct {
	Mechanism string
	Amount    decimal.Decimal
	Date      time.Time
}

// Invoice is the derived aggregate for one retained sale transaction.
type Invoice struct {
	InvoiceNo       string
	StatusDate      time.Time
	SourceID        int
	Hash            string
	InvoiceDate     time.Time
	SystemEntryDate time.Time
	CustomerID      int
	Lines           []LineItem

	TaxPayable decimal.Decimal
	NetTotal   decimal.Decimal
	GrossTotal decimal.Decimal
	Payment    PaymentSummary
}

// PaymentRecord is one derived entry of the Payments section: one output
// record per payment-method row, not per transaction.
type PaymentRecord struct {
	PaymentRef      string
	TransactionDate time.Time
	SystemID        int
	StatusDate      time.Time
	SourceID        int
	Mechanism       string
	Amount          decimal.Decimal
	PaidOn          time.Time
	SystemEntryDate time.Time
	CustomerID      int
	OriginatingON   string
	InvoiceDate     time.Time
	DebitAmount     decimal.Decimal
	CreditAmount    decimal.Decimal
}

// FileTotals are the section-level totals preceding the entries.
// TotalDebit stays zero for both sections.
type FileTotals struct {
	NumberOfEntries int
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
}

// =============================================================================
// INVOICE AGGREGATION
// =============================================================================

// BuildInvoices derives one Invoice per retained sale, in input order, plus
// the SalesInvoices file totals. Sales with no item lines are skipped.
// TotalCredit is the sum of NetTotal across retained invoices.
func BuildInvoices(sales []types.SaleInvoice, records *types.RecordSet, hasher Hasher) ([]Invoice, FileTotals) {
	invoices := make([]Invoice, 0, len(sales))
	totalCredit := decimal.Zero

	for _, sale := range sales {
		if len(sale.Lines) < 1 {
			continue
		}

		invoice := buildInvoice(sale, records, hasher)
		invoices = append(invoices, invoice)
		totalCredit = totalCredit.Add(invoice.NetTotal)
	}

	totals := FileTotals{
		NumberOfEntries: len(invoices),
		TotalDebit:      decimal.Zero,
		TotalCredit:     totalCredit,
	}
	return invoices, totals
}

// buildInvoice derives the aggregate for one sale with at least one line.
func buildInvoice(sale types.SaleInvoice, records *types.RecordSet, hasher Hasher) Invoice {
	taxPayable := decimal.Zero

	// Order-level tax. Tax groups are not expanded into TaxPayable: the
	// per-rate breakdown of a group is not resolved upstream, so only
	// plain order taxes contribute.
	if sale.OrderTax != nil && !sale.OrderTax.IsTaxGroup {
		taxPayable = taxPayable.Add(sale.TaxAmount)
	}

	lines := make([]LineItem, 0, len(sale.Lines))
	grossTotal := decimal.Zero

	for i, sell := range sale.Lines {
		taxPayable = taxPayable.Add(sell.ItemTax.Mul(sell.Quantity))
		creditAmount := sell.Quantity.Mul(sell.UnitPriceIncTax)
		grossTotal = grossTotal.Add(creditAmount)

		lines = append(lines, LineItem{
			Number:             i + 1,
			ProductCode:        sell.ProductSKU,
			ProductDescription: sell.ProductName,
			Quantity:           sell.Quantity,
			UnitOfMeasure:      sell.ProductUnit,
			UnitPrice:          sell.UnitPrice,
			TaxPointDate:       sell.CreatedAt,
			Description:        sell.ProductName,
			CreditAmount:       creditAmount,
			Tax:                lineTax(sell.TaxRateID, records),
		})
	}

	return Invoice{
		InvoiceNo:       sale.InvoiceNo,
		StatusDate:      sale.FirstActivityAt,
		SourceID:        sale.ID,
		Hash:            hasher.InvoiceHash(sale),
		InvoiceDate:     sale.CreatedAt,
		SystemEntryDate: sale.CreatedAt,
		CustomerID:      sale.ContactID,
		Lines:           lines,
		TaxPayable:      taxPayable,
		NetTotal:        grossTotal.Sub(sale.DiscountAmount),
		GrossTotal:      grossTotal,
		Payment:         PaymentDetails(sale.PaymentLines),
	}
}

// lineTax resolves the tax representation of one line: the configured
// rate's classification when the lookup succeeds, the exemption pair when
// it does not.
func lineTax(taxRateID int, records *types.RecordSet) LineTax {
	if rate := records.TaxRateByID(taxRateID); rate != nil {
		return LineTax{
			Matched:          true,
			TaxType:          rate.TaxType,
			TaxCountryRegion: rate.TaxCountryRegion,
			TaxCode:          rate.TaxCode,
			TaxPercentage:    rate.Amount,
		}
	}
	return LineTax{
		ExemptionReason: TaxExemptionReason,
		ExemptionCode:   TaxExemptionCode,
	}
}

// =============================================================================
// PAYMENT RECONCILIATION
// =============================================================================

// PaymentDetails reconciles the payment lines of one sale. With more than
// one line it sums the amounts, reports the first line's uppercased method
// or PARTIAL on any mismatch, and takes the date of the last line by input
// order (not by date value). With exactly one line it uses that line
// directly. No lines at all yields a zero summary.
func PaymentDetails(lines []types.PaymentLine) PaymentSummary {
	if len(lines) == 0 {
		return PaymentSummary{}
	}
	if len(lines) > 1 {
		amount := decimal.Zero
		mechanism := ""
		for i, line := range lines {
			amount = amount.Add(line.Amount)
			if i == 0 {
				mechanism = strings.ToUpper(line.Method)
			} else if mechanism != strings.ToUpper(line.Method) {
				mechanism = PartialMechanism
			}
		}
		return PaymentSummary{
			Mechanism: mechanism,
			Amount:    amount,
			Date:      lines[len(lines)-1].PaidOn,
		}
	}

	return PaymentSummary{
		Mechanism: strings.ToUpper(lines[0].Method),
		Amount:    lines[0].Amount,
		Date:      lines[0].PaidOn,
	}
}

// =============================================================================
// PAYMENTS SECTION
// =============================================================================

// BuildPayments derives one PaymentRecord per payment-method row, in input
// order, plus the Payments file totals. DebitAmount is fixed at zero;
// TotalCredit sums CreditAmount across all records.
func BuildPayments(payments []types.TransactionPayment) ([]PaymentRecord, FileTotals) {
	out := make([]PaymentRecord, 0, len(payments))
	totalCredit := decimal.Zero

	for _, payment := range payments {
		record := PaymentRecord{
			PaymentRef:      payment.PaymentRef,
			TransactionDate: payment.TransactionDate,
			SystemID:        payment.ID,
			StatusDate:      payment.FirstActivityAt,
			SourceID:        payment.TransactionID,
			Mechanism:       strings.ToUpper(payment.Method),
			Amount:          payment.Amount,
			PaidOn:          payment.PaidOn,
			SystemEntryDate: payment.CreatedAt,
			CustomerID:      payment.ContactID,
			OriginatingON:   payment.TransactionInvoiceNo,
			InvoiceDate:     payment.TransactionCreatedAt,
			DebitAmount:     decimal.Zero,
			CreditAmount:    payment.Amount,
		}
		out = append(out, record)
		totalCredit = totalCredit.Add(record.CreditAmount)
	}

	totals := FileTotals{
		NumberOfEntries: len(out),
		TotalDebit:      decimal.Zero,
		TotalCredit:     totalCredit,
	}
	return out, totals
}
