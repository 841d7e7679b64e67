package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saqlainkhadim/saft-export/internal/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testHasher = StaticHasher{Value: "test-hash"}

// recordsWithRates returns a RecordSet carrying one configured 10% rate
// with ID 1.
func recordsWithRates() *types.RecordSet {
	return &types.RecordSet{
		TaxRates: []types.TaxRate{
			{
				ID:               1,
				Name:             "IVA 10%",
				Amount:           dec("10.00"),
				TaxType:          "IVA",
				TaxCountryRegion: "AO",
				TaxCode:          "NOR",
			},
		},
	}
}

// sale returns a sale with one payment line and the given item lines.
func sale(id int, lines ...types.SellLine) types.SaleInvoice {
	return types.SaleInvoice{
		ID:        id,
		InvoiceNo: "INV-001",
		ContactID: 7,
		Lines:     lines,
		PaymentLines: []types.PaymentLine{
			{Method: "cash", Amount: dec("100.00"), PaidOn: time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestBuildInvoicesWorkedScenario(t *testing.T) {
	// One invoice, one line: quantity 2 at 50.00 including tax, item tax
	// 4.55 per unit, rate 10.00 matched by ID.
	records := recordsWithRates()
	records.Sales = []types.SaleInvoice{
		sale(1, types.SellLine{
			ProductSKU:      "SKU-1",
			ProductName:     "Widget",
			ProductUnit:     "pc",
			Quantity:        dec("2"),
			UnitPrice:       dec("45.45"),
			UnitPriceIncTax: dec("50.00"),
			ItemTax:         dec("4.55"),
			TaxRateID:       1,
		}),
	}

	invoices, totals := BuildInvoices(records.Sales, records, testHasher)

	if len(invoices) != 1 {
		t.Fatalf("got %d invoices, want 1", len(invoices))
	}
	invoice := invoices[0]

	if len(invoice.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(invoice.Lines))
	}
	line := invoice.Lines[0]

	if !line.CreditAmount.Equal(dec("100.00")) {
		t.Errorf("CreditAmount = %s, want 100.00", line.CreditAmount)
	}
	if !invoice.TaxPayable.Equal(dec("9.10")) {
		t.Errorf("TaxPayable = %s, want 9.10 (item tax x quantity)", invoice.TaxPayable)
	}
	if !line.Tax.Matched {
		t.Fatalf("line tax not matched against configured rate")
	}
	if !line.Tax.TaxPercentage.Equal(dec("10.00")) {
		t.Errorf("TaxPercentage = %s, want 10.00", line.Tax.TaxPercentage)
	}
	if !invoice.GrossTotal.Equal(dec("100.00")) {
		t.Errorf("GrossTotal = %s, want 100.00", invoice.GrossTotal)
	}
	if invoice.Hash != "test-hash" {
		t.Errorf("Hash = %q, want collaborator value", invoice.Hash)
	}
	if totals.NumberOfEntries != 1 {
		t.Errorf("NumberOfEntries = %d, want 1", totals.NumberOfEntries)
	}
}

func TestBuildInvoicesSkipsEmptySales(t *testing.T) {
	records := recordsWithRates()
	records.Sales = []types.SaleInvoice{
		sale(1), // no item lines
		sale(2, types.SellLine{Quantity: dec("1"), UnitPriceIncTax: dec("30.00")}),
	}

	invoices, totals := BuildInvoices(records.Sales, records, testHasher)

	if len(invoices) != 1 {
		t.Fatalf("got %d invoices, want 1 (empty sale must be skipped)", len(invoices))
	}
	if invoices[0].SourceID != 2 {
		t.Errorf("retained invoice SourceID = %d, want 2", invoices[0].SourceID)
	}
	if totals.NumberOfEntries != 1 {
		t.Errorf("NumberOfEntries = %d, want 1", totals.NumberOfEntries)
	}
	if !totals.TotalCredit.Equal(dec("30.00")) {
		t.Errorf("TotalCredit = %s, want 30.00", totals.TotalCredit)
	}
}

func TestBuildInvoicesTotalsInvariant(t *testing.T) {
	records := recordsWithRates()
	records.Sales = []types.SaleInvoice{
		sale(1, types.SellLine{Quantity: dec("2"), UnitPriceIncTax: dec("25.00")}),
		sale(2, types.SellLine{Quantity: dec("1"), UnitPriceIncTax: dec("99.99")}),
		sale(3, types.SellLine{Quantity: dec("3"), UnitPriceIncTax: dec("10.00")}),
	}
	records.Sales[1].DiscountAmount = dec("9.99")

	invoices, totals := BuildInvoices(records.Sales, records, testHasher)

	sum := decimal.Zero
	for _, invoice := range invoices {
		sum = sum.Add(invoice.NetTotal)
	}
	if !totals.TotalCredit.Equal(sum) {
		t.Errorf("TotalCredit = %s, want sum of NetTotal %s", totals.TotalCredit, sum)
	}
	if !totals.TotalDebit.IsZero() {
		t.Errorf("TotalDebit = %s, want 0", totals.TotalDebit)
	}
	if !invoices[1].NetTotal.Equal(dec("90.00")) {
		t.Errorf("NetTotal = %s, want gross minus discount 90.00", invoices[1].NetTotal)
	}
}

func TestLineTaxBranchExclusivity(t *testing.T) {
	records := recordsWithRates()

	tests := []struct {
		name      string
		taxRateID int
		matched   bool
	}{
		{"matched rate emits classification", 1, true},
		{"unmatched rate falls back to exemption", 99, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax := lineTax(tt.taxRateID, records)

			if tax.Matched != tt.matched {
				t.Fatalf("Matched = %v, want %v", tax.Matched, tt.matched)
			}
			hasClassification := tax.TaxType != "" || tax.TaxCode != ""
			hasExemption := tax.ExemptionReason != "" || tax.ExemptionCode != ""
			if hasClassification == hasExemption {
				t.Errorf("line carries both or neither tax representation: %+v", tax)
			}
			if !tt.matched {
				if tax.ExemptionReason != TaxExemptionReason || tax.ExemptionCode != TaxExemptionCode {
					t.Errorf("exemption = %q/%q, want %q/%q",
						tax.ExemptionReason, tax.ExemptionCode, TaxExemptionReason, TaxExemptionCode)
				}
			}
		})
	}
}

func TestOrderLevelTax(t *testing.T) {
	groupRate := types.TaxRate{ID: 5, IsTaxGroup: true}
	plainRate := types.TaxRate{ID: 6}

	tests := []struct {
		name    string
		tax     *types.TaxRate
		payable string
	}{
		{"no order tax", nil, "0"},
		{"plain order tax added once", &plainRate, "7.50"},
		{"tax group not expanded", &groupRate, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := recordsWithRates()
			s := sale(1, types.SellLine{Quantity: dec("1"), UnitPriceIncTax: dec("10.00")})
			s.OrderTax = tt.tax
			s.TaxAmount = dec("7.50")

			invoices, _ := BuildInvoices([]types.SaleInvoice{s}, records, testHasher)

			if !invoices[0].TaxPayable.Equal(dec(tt.payable)) {
				t.Errorf("TaxPayable = %s, want %s", invoices[0].TaxPayable, tt.payable)
			}
		})
	}
}

func TestPaymentDetails(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2023, 5, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name          string
		lines         []types.PaymentLine
		wantMechanism string
		wantAmount    string
		wantDate      time.Time
	}{
		{
			name: "single line used directly",
			lines: []types.PaymentLine{
				{Method: "cash", Amount: dec("40.00"), PaidOn: day(3)},
			},
			wantMechanism: "CASH",
			wantAmount:    "40.00",
			wantDate:      day(3),
		},
		{
			name: "multi line same method sums amounts",
			lines: []types.PaymentLine{
				{Method: "card", Amount: dec("10.00"), PaidOn: day(1)},
				{Method: "card", Amount: dec("15.00"), PaidOn: day(2)},
			},
			wantMechanism: "CARD",
			wantAmount:    "25.00",
			wantDate:      day(2),
		},
		{
			name: "mixed methods report PARTIAL",
			lines: []types.PaymentLine{
				{Method: "cash", Amount: dec("10.00"), PaidOn: day(1)},
				{Method: "card", Amount: dec("20.00"), PaidOn: day(2)},
			},
			wantMechanism: PartialMechanism,
			wantAmount:    "30.00",
			wantDate:      day(2),
		},
		{
			name:          "no lines yields zero summary",
			lines:         nil,
			wantMechanism: "",
			wantAmount:    "0",
			wantDate:      time.Time{},
		},
		{
			name: "date follows input order not date value",
			lines: []types.PaymentLine{
				{Method: "cash", Amount: dec("10.00"), PaidOn: day(9)},
				{Method: "cash", Amount: dec("10.00"), PaidOn: day(4)},
			},
			wantMechanism: "CASH",
			wantAmount:    "20.00",
			wantDate:      day(4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaymentDetails(tt.lines)

			if got.Mechanism != tt.wantMechanism {
				t.Errorf("Mechanism = %q, want %q", got.Mechanism, tt.wantMechanism)
			}
			if !got.Amount.Equal(dec(tt.wantAmount)) {
				t.Errorf("Amount = %s, want %s", got.Amount, tt.wantAmount)
			}
			if !got.Date.Equal(tt.wantDate) {
				t.Errorf("Date = %s, want %s", got.Date, tt.wantDate)
			}
		})
	}
}

func TestBuildPayments(t *testing.T) {
	payments := []types.TransactionPayment{
		{ID: 1, Method: "cash", Amount: dec("12.00")},
		{ID: 2, Method: "card", Amount: dec("8.50")},
	}

	records, totals := BuildPayments(payments)

	if len(records) != 2 {
		t.Fatalf("got %d payment records, want 2", len(records))
	}
	for i, record := range records {
		if !record.DebitAmount.IsZero() {
			t.Errorf("record %d DebitAmount = %s, want 0", i, record.DebitAmount)
		}
	}
	if records[0].Mechanism != "CASH" || records[1].Mechanism != "CARD" {
		t.Errorf("mechanisms not uppercased: %q, %q", records[0].Mechanism, records[1].Mechanism)
	}
	if totals.NumberOfEntries != 2 {
		t.Errorf("NumberOfEntries = %d, want 2", totals.NumberOfEntries)
	}
	if !totals.TotalCredit.Equal(dec("20.50")) {
		t.Errorf("TotalCredit = %s, want 20.50", totals.TotalCredit)
	}
	if !totals.TotalDebit.IsZero() {
		t.Errorf("TotalDebit = %s, want 0", totals.TotalDebit)
	}
}
