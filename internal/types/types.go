// =============================================================================
// SAF-T Export - Shared Types
// =============================================================================
//
// This package contains the in-memory record model shared across multiple
// modules to avoid import cycles. Types defined here are used by:
//   - aggregate
//   - saft
//   - workbook
//
// Records mirror the point-of-sale data the export is computed from. They
// are plain snapshots: the export pipeline never mutates them, and one
// export request works from exactly one snapshot (see ExportRequest).
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EXPORT REQUEST
// =============================================================================

// ExportRequest identifies one export run: one business, one reporting
// period. It is passed explicitly into the pipeline; no component reads
// ambient session state.
type ExportRequest struct {
	// BusinessID is the business whose records are exported.
	BusinessID int

	// PeriodStart is the first day of the reporting period (inclusive).
	PeriodStart time.Time

	// PeriodEnd is the last day of the reporting period (inclusive).
	PeriodEnd time.Time
}

// =============================================================================
// TAX RECORDS
// =============================================================================

// TaxRate is one configured tax rate of the business.
type TaxRate struct {
	// ID is the tax rate identifier referenced by sell lines.
	ID int

	// Name is the display name of the rate (e.g. "IVA 14%").
	Name string

	// Amount is the tax percentage.
	Amount decimal.Decimal

	// TaxType, TaxCountryRegion and TaxCode are the SAF-T classification
	// fields of the rate.
	TaxType          string
	TaxCountryRegion string
	TaxCode          string

	// IsTaxGroup marks rates that are groups of other rates. Group rates
	// carry no classification of their own.
	IsTaxGroup bool
}

// =============================================================================
// SALE RECORDS
// =============================================================================

// SellLine is one item line of a sale transaction.
type SellLine struct {
	// ProductSKU is the stock keeping unit of the sold product.
	ProductSKU string

	// ProductName is the product display name.
	ProductName string

	// ProductUnit is the short name of the product's unit of measure.
	ProductUnit string

	// Quantity is the number of units sold.
	Quantity decimal.Decimal

	// UnitPrice is the unit price excluding tax.
	UnitPrice decimal.Decimal

	// UnitPriceIncTax is the unit price including tax.
	UnitPriceIncTax decimal.Decimal

	// ItemTax is the tax amount charged per unit.
	ItemTax decimal.Decimal

	// TaxRateID references the TaxRate applied to this line.
	// Zero means no rate is linked.
	TaxRateID int

	// CreatedAt is when the line was recorded. It becomes the line's
	// TaxPointDate in the export.
	CreatedAt time.Time
}

// PaymentLine is one payment row attached to a sale transaction.
type PaymentLine struct {
	// Method is the payment method (e.g. "cash", "card").
	Method string

	// Amount is the amount paid by this line.
	Amount decimal.Decimal

	// PaidOn is the payment date.
	PaidOn time.Time
}

// SaleInvoice is one sale transaction with everything the export needs:
// item lines, payment lines, the order-level tax classification, and the
// activity timestamps.
type SaleInvoice struct {
	// ID is the transaction identifier (SourceID in the export).
	ID int

	// InvoiceNo is the human-facing invoice number.
	InvoiceNo string

	// ContactID references the customer of the sale.
	ContactID int

	// CreatedAt is when the transaction was entered into the system.
	CreatedAt time.Time

	// FirstActivityAt is the timestamp of the earliest recorded activity
	// on the transaction. It becomes the document status date.
	FirstActivityAt time.Time

	// DiscountAmount is the order-level discount.
	DiscountAmount decimal.Decimal

	// OrderTax is the transaction's own tax classification, if any.
	OrderTax *TaxRate

	// TaxAmount is the order-level tax amount charged.
	TaxAmount decimal.Decimal

	// Lines are the item lines, in entry order.
	Lines []SellLine

	// PaymentLines are the payment rows, in entry order. A transaction
	// that reaches the aggregation stage carries at least one.
	PaymentLines []PaymentLine
}

// =============================================================================
// PAYMENT RECORDS
// =============================================================================

// TransactionPayment is one payment-method row of a sell transaction, as
// listed in the Payments section of the export. Fields of the parent
// transaction are denormalized onto the record so the aggregation stage
// needs no lookups.
type TransactionPayment struct {
	// ID is the payment row identifier (SystemID in the export).
	ID int

	// PaymentRef is the payment reference number.
	PaymentRef string

	// Method is the payment method.
	Method string

	// Amount is the amount paid.
	Amount decimal.Decimal

	// PaidOn is the payment date.
	PaidOn time.Time

	// CreatedAt is when the payment row was entered into the system.
	CreatedAt time.Time

	// TransactionID is the parent sell transaction.
	TransactionID int

	// TransactionInvoiceNo is the parent transaction's invoice number.
	TransactionInvoiceNo string

	// TransactionDate is the parent transaction's business date.
	TransactionDate time.Time

	// TransactionCreatedAt is when the parent transaction was entered.
	TransactionCreatedAt time.Time

	// FirstActivityAt is the earliest activity on the parent transaction.
	FirstActivityAt time.Time

	// ContactID is the customer of the parent transaction.
	ContactID int
}

// =============================================================================
// MASTER DATA RECORDS
// =============================================================================

// Contact is one customer of the business.
type Contact struct {
	ID           int
	AddressLine1 string
	AddressLine2 string
	City         string
	CountryCode  string
	Email        string
}

// Product is one product of the business.
type Product struct {
	ID          int
	SKU         string
	Name        string
	Description string
}

// =============================================================================
// RECORD SET
// =============================================================================

// RecordSet is the full snapshot one export request works from. The
// collections keep provider order; the pipeline preserves it.
type RecordSet struct {
	Sales     []SaleInvoice
	Payments  []TransactionPayment
	Customers []Contact
	Products  []Product
	TaxRates  []TaxRate
}

// TaxRateByID returns the tax rate with the given ID, or nil if the
// business has no such rate configured.
func (r *RecordSet) TaxRateByID(id int) *TaxRate {
	for i := range r.TaxRates {
		if r.TaxRates[i].ID == id {
			return &r.TaxRates[i]
		}
	}
	return nil
}
