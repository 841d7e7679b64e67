package saft

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saqlainkhadim/saft-export/internal/config"
	"github.com/saqlainkhadim/saft-export/internal/doctree"
	"github.com/saqlainkhadim/saft-export/internal/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testSettings() *config.SAFTSettings {
	return &config.SAFTSettings{
		BusinessID:            1,
		BusinessName:          "Acme",
		CurrencyCode:          "AOA",
		CompanyID:             "5417000000",
		TaxRegistrationNumber: "5417000000",
		TaxAccountingBasis:    "F",
		CompanyName:           "Acme Lda",
		CompanyAddressDetail:  "Rua Principal 1",
		CompanyAddressCity:    "Luanda",
		CompanyAddressCountry: "AO",
		TaxEntity:             "Global",
		ProductCompanyTaxID:   "5417000000",
		SoftwareValidationNum: "123",
		ProductID:             "saftexport",
		InvoiceHash:           "0",
	}
}

func testRequest() types.ExportRequest {
	return types.ExportRequest{
		BusinessID:  1,
		PeriodStart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

// testRecords returns a snapshot with one customer, one product, one tax
// rate, one sale with a matched line, and one payment record.
func testRecords() *types.RecordSet {
	return &types.RecordSet{
		TaxRates: []types.TaxRate{
			{ID: 1, Name: "IVA 10%", Amount: dec("10.00"), TaxType: "IVA", TaxCountryRegion: "AO", TaxCode: "NOR"},
		},
		Customers: []types.Contact{
			{ID: 7, AddressLine1: "Rua A", City: "Luanda", CountryCode: "AO", Email: "a@example.com"},
		},
		Products: []types.Product{
			{ID: 3, SKU: "SKU-1", Name: "Widget"},
		},
		Sales: []types.SaleInvoice{
			{
				ID:              11,
				InvoiceNo:       "INV-0001",
				ContactID:       7,
				CreatedAt:       time.Date(2023, 5, 10, 9, 30, 0, 0, time.UTC),
				FirstActivityAt: time.Date(2023, 5, 10, 9, 31, 0, 0, time.UTC),
				Lines: []types.SellLine{
					{
						ProductSKU:      "SKU-1",
						ProductName:     "Widget",
						ProductUnit:     "pc",
						Quantity:        dec("2"),
						UnitPrice:       dec("45.45"),
						UnitPriceIncTax: dec("50.00"),
						ItemTax:         dec("4.55"),
						TaxRateID:       1,
						CreatedAt:       time.Date(2023, 5, 10, 9, 30, 0, 0, time.UTC),
					},
				},
				PaymentLines: []types.PaymentLine{
					{Method: "cash", Amount: dec("100.00"), PaidOn: time.Date(2023, 5, 11, 0, 0, 0, 0, time.UTC)},
				},
			},
		},
		Payments: []types.TransactionPayment{
			{
				ID:                   21,
				PaymentRef:           "PAY-0001",
				Method:               "cash",
				Amount:               dec("100.00"),
				PaidOn:               time.Date(2023, 5, 11, 0, 0, 0, 0, time.UTC),
				CreatedAt:            time.Date(2023, 5, 11, 8, 0, 0, 0, time.UTC),
				TransactionID:        11,
				TransactionInvoiceNo: "INV-0001",
				TransactionDate:      time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC),
				TransactionCreatedAt: time.Date(2023, 5, 10, 9, 30, 0, 0, time.UTC),
				FirstActivityAt:      time.Date(2023, 5, 10, 9, 31, 0, 0, time.UTC),
				ContactID:            7,
			},
		},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHeaderSectionFieldOrder(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	header := HeaderSection(testRequest(), testSettings(), now)

	want := []string{
		"AuditFileVersion", "CompanyID", "TaxRegistrationNumber",
		"TaxAccountingBasis", "CompanyName", "CompanyAddress", "FiscalYear",
		"StartDate", "EndDate", "CurrencyCode", "DateCreated", "TaxEntity",
		"ProductCompanyTaxID", "SoftwareValidationNumber", "ProductID",
		"ProductVersion",
	}

	if len(header.Children) != len(want) {
		t.Fatalf("Header has %d children, want %d", len(header.Children), len(want))
	}
	for i, child := range header.Children {
		if child.Name != want[i] {
			t.Errorf("Header child %d = %q, want %q", i, child.Name, want[i])
		}
	}

	values := map[string]string{}
	for _, child := range header.Children {
		if child.Kind == doctree.KindLeaf {
			values[child.Name] = child.Value
		}
	}
	if values["AuditFileVersion"] != "1.01_01" {
		t.Errorf("AuditFileVersion = %q, want 1.01_01", values["AuditFileVersion"])
	}
	if values["FiscalYear"] != "2023" {
		t.Errorf("FiscalYear = %q, want 2023", values["FiscalYear"])
	}
	if values["DateCreated"] != "2023-06-01" {
		t.Errorf("DateCreated = %q, want clock date", values["DateCreated"])
	}
}

func TestMasterFilesRepetitionFidelity(t *testing.T) {
	records := &types.RecordSet{
		Products: []types.Product{{ID: 1, SKU: "S", Name: "P"}},
		TaxRates: []types.TaxRate{
			{ID: 1, Amount: dec("10")},
			{ID: 2, Amount: dec("5")},
			{ID: 3, Amount: dec("0")},
		},
	}

	section := MasterFilesSection(records, testSettings())

	counts := map[string]int{}
	for _, child := range section.Children {
		counts[child.Name]++
	}
	if counts["Customer"] != 0 {
		t.Errorf("got %d Customer nodes, want 0", counts["Customer"])
	}
	if counts["Product"] != 1 {
		t.Errorf("got %d Product nodes, want 1", counts["Product"])
	}
	if counts["TaxTableEntry"] != 3 {
		t.Errorf("got %d TaxTableEntry sibling nodes, want 3", counts["TaxTableEntry"])
	}
}

func TestExportDocumentOrder(t *testing.T) {
	exporter := New(testSettings())
	exporter.Clock = fixedClock(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))

	result, err := exporter.Export(testRequest(), testRecords())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	text := string(result.XML)
	header := strings.Index(text, "<Header>")
	master := strings.Index(text, "<MasterFiles>")
	source := strings.Index(text, "<SourceDocuments>")
	if header == -1 || master == -1 || source == -1 {
		t.Fatalf("missing section:\n%s", text)
	}
	if !(header < master && master < source) {
		t.Errorf("sections out of order: Header=%d MasterFiles=%d SourceDocuments=%d",
			header, master, source)
	}
	if !strings.Contains(text, `<AuditFile xmlns="urn:OECD:StandardAuditFile-Tax:AO_1.01_01"`) {
		t.Errorf("root element missing SAF-T namespace")
	}
}

func TestExportWorkedScenarioDocument(t *testing.T) {
	exporter := New(testSettings())
	exporter.Clock = fixedClock(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))

	result, err := exporter.Export(testRequest(), testRecords())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	text := string(result.XML)
	checks := []string{
		"<CreditAmount>100.00</CreditAmount>",
		"<TaxPayable>9.10</TaxPayable>",
		"<TaxPercentage>10.00</TaxPercentage>",
		"<GrossTotal>100.00</GrossTotal>",
		"<PaymentMechanism>CASH</PaymentMechanism>",
	}
	for _, want := range checks {
		if !strings.Contains(text, want) {
			t.Errorf("document missing %s", want)
		}
	}
	if strings.Contains(text, "<TaxExemptionReason>") {
		t.Errorf("matched line must not carry the exemption block")
	}
	if result.Stats.InvoicesEmitted != 1 || result.Stats.LineItems != 1 || result.Stats.PaymentsEmitted != 1 {
		t.Errorf("Stats = %+v, want 1 invoice / 1 line / 1 payment", result.Stats)
	}
}

func TestExportIdempotenceModuloDateCreated(t *testing.T) {
	request := testRequest()

	first := New(testSettings())
	first.Clock = fixedClock(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	second := New(testSettings())
	second.Clock = fixedClock(time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC))

	a, err := first.Export(request, testRecords())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	b, err := second.Export(request, testRecords())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	patched := strings.Replace(string(a.XML),
		"<DateCreated>2023-06-01</DateCreated>",
		"<DateCreated>2023-07-15</DateCreated>", 1)
	if patched == string(a.XML) {
		t.Fatalf("first export does not carry its clock's DateCreated")
	}
	if patched != string(b.XML) {
		t.Errorf("exports differ beyond the DateCreated leaf")
	}
}

func TestExportSkippedSaleAbsentFromDocument(t *testing.T) {
	records := testRecords()
	records.Sales = append(records.Sales, types.SaleInvoice{
		ID:        12,
		InvoiceNo: "INV-EMPTY",
		ContactID: 7,
		PaymentLines: []types.PaymentLine{
			{Method: "cash", Amount: dec("1.00")},
		},
	})

	exporter := New(testSettings())
	exporter.Clock = fixedClock(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))

	result, err := exporter.Export(testRequest(), records)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	text := string(result.XML)
	if strings.Contains(text, "INV-EMPTY") {
		t.Errorf("sale without lines leaked into the document")
	}
	if !strings.Contains(text, "<NumberOfEntries>1</NumberOfEntries>") {
		t.Errorf("skipped sale counted in NumberOfEntries")
	}
	if result.Stats.InvoicesSkipped != 1 {
		t.Errorf("InvoicesSkipped = %d, want 1", result.Stats.InvoicesSkipped)
	}
}

func TestFilename(t *testing.T) {
	got := Filename("Acme", testRequest())
	want := "Acme2023-01-01-2023-12-31.xml"
	if got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}
}

func TestPaymentEntriesLineShape(t *testing.T) {
	exporter := New(testSettings())
	exporter.Clock = fixedClock(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))

	result, err := exporter.Export(testRequest(), testRecords())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	text := string(result.XML)
	if !strings.Contains(text, "<PaymentType>RG</PaymentType>") {
		t.Errorf("payment record missing PaymentType RG")
	}
	if !strings.Contains(text, "<OriginatingON>INV-0001</OriginatingON>") {
		t.Errorf("payment line missing originating invoice reference")
	}
	if !strings.Contains(text, "<DebitAmount>0.00</DebitAmount>") {
		t.Errorf("payment line DebitAmount not fixed at zero")
	}
}
