// =============================================================================
// SAF-T Export - Workbook Record Provider
// =============================================================================
//
// This module reads one business's records out of an XLSX workbook and
// produces the in-memory RecordSet the export pipeline runs on. The
// workbook plays the role of the data providers (sale, customer, product,
// tax-rate lookups): the pipeline itself never touches storage.
//
// WORKBOOK LAYOUT (one sheet per collection, header row first):
//
//   | Sheet        | Columns                                                  |
//   |--------------|----------------------------------------------------------|
//   | TaxRates     | id, name, amount, tax_type, tax_country_region,          |
//   |              | tax_code, is_tax_group                                   |
//   | Sales        | id, invoice_no, contact_id, created_at,                  |
//   |              | first_activity_at, discount_amount, tax_id, tax_amount   |
//   | SellLines    | transaction_id, product_sku, product_name, product_unit, |
//   |              | quantity, unit_price, unit_price_inc_tax, item_tax,      |
//   |              | tax_id, created_at                                       |
//   | PaymentLines | transaction_id, method, amount, paid_on                  |
//   | Payments     | id, payment_ref_no, method, amount, paid_on, created_at, |
//   |              | transaction_id, invoice_no, transaction_date,            |
//   |              | transaction_created_at, first_activity_at, contact_id    |
//   | Customers    | id, address_line_1, address_line_2, city, country_code,  |
//   |              | email                                                    |
//   | Products     | id, sku, name, description                               |
//
// Row order within a sheet is preserved; it becomes the input order the
// aggregation rules depend on (line numbering, last-payment-line dates).
// A sheet that is absent yields an empty collection.
//
// =============================================================================

package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/saqlainkhadim/saft-export/internal/types"
)

// Sheet names recognized in a record workbook.
const (
	SheetTaxRates     = "TaxRates"
	SheetSales        = "Sales"
	SheetSellLines    = "SellLines"
	SheetPaymentLines = "PaymentLines"
	SheetPayments     = "Payments"
	SheetCustomers    = "Customers"
	SheetProducts     = "Products"
)

// Load reads a record workbook into a RecordSet. Tax rates are loaded
// first so sale records can resolve their order-level tax classification
// against them.
func Load(path string) (*types.RecordSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	records := &types.RecordSet{}

	if err := loadTaxRates(f, records); err != nil {
		return nil, err
	}
	if err := loadSales(f, records); err != nil {
		return nil, err
	}
	if err := loadSellLines(f, records); err != nil {
		return nil, err
	}
	if err := loadPaymentLines(f, records); err != nil {
		return nil, err
	}
	if err := loadPayments(f, records); err != nil {
		return nil, err
	}
	if err := loadCustomers(f, records); err != nil {
		return nil, err
	}
	if err := loadProducts(f, records); err != nil {
		return nil, err
	}

	return records, nil
}

// =============================================================================
// SHEET LOADERS
// =============================================================================

func loadTaxRates(f *excelize.File, records *types.RecordSet) error {
	return eachRow(f, SheetTaxRates, func(row *row) error {
		amount, err := row.decimal("amount")
		if err != nil {
			return err
		}
		records.TaxRates = append(records.TaxRates, types.TaxRate{
			ID:               row.int("id"),
			Name:             row.str("name"),
			Amount:           amount,
			TaxType:          row.str("tax_type"),
			TaxCountryRegion: row.str("tax_country_region"),
			TaxCode:          row.str("tax_code"),
			IsTaxGroup:       row.bool("is_tax_group"),
		})
		return nil
	})
}

func loadSales(f *excelize.File, records *types.RecordSet) error {
	return eachRow(f, SheetSales, func(row *row) error {
		discount, err := row.decimal("discount_amount")
		if err != nil {
			return err
		}
		taxAmount, err := row.decimal("tax_amount")
		if err != nil {
			return err
		}
		createdAt, err := row.time("created_at")
		if err != nil {
			return err
		}
		firstActivity, err := row.time("first_activity_at")
		if err != nil {
			return err
		}
		records.Sales = append(records.Sales, types.SaleInvoice{
			ID:              row.int("id"),
			InvoiceNo:       row.str("invoice_no"),
			ContactID:       row.int("contact_id"),
			CreatedAt:       createdAt,
			FirstActivityAt: firstActivity,
			DiscountAmount:  discount,
			OrderTax:        records.TaxRateByID(row.int("tax_id")),
			TaxAmount:       taxAmount,
		})
		return nil
	})
}

func loadSellLines(f *excelize.File, records *types.RecordSet) error {
	return eachRow(f, SheetSellLines, func(row *row) error {
		sale := saleByID(records, row.int("transaction_id"))
		if sale == nil {
			return fmt.Errorf("sell line references unknown transaction %d", row.int("transaction_id"))
		}
		quantity, err := row.decimal("quantity")
		if err != nil {
			return err
		}
		unitPrice, err := row.decimal("unit_price")
		if err != nil {
			return err
		}
		unitPriceIncTax, err := row.decimal("unit_price_inc_tax")
		if err != nil {
			return err
		}
		itemTax, err := row.decimal("item_tax")
		if err != nil {
			return err
		}
		createdAt, err := row.time("created_at")
		if err != nil {
			return err
		}
		sale.Lines = append(sale.Lines, types.SellLine{
			ProductSKU:      row.str("product_sku"),
			ProductName:     row.str("product_name"),
			ProductUnit:     row.str("product_unit"),
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			UnitPriceIncTax: unitPriceIncTax,
			ItemTax:         itemTax,
			TaxRateID:       row.int("tax_id"),
			CreatedAt:       createdAt,
		})
		return nil
	})
}

func loadPaymentLines(f *excelize.File, records *types.RecordSet) error {
	return eachRow(f, SheetPaymentLines, func(row *row) error {
		sale := saleByID(records, row.int("transaction_id"))
		if sale == nil {
			return fmt.Errorf("payment line references unknown transaction %d", row.int("transaction_id"))
		}
		amount, err := row.decimal("amount")
		if err != nil {
			return err
		}
		paidOn, err := row.time("paid_on")
		if err != nil {
			return err
		}
		sale.PaymentLines = append(sale.PaymentLines, types.PaymentLine{
			Method: row.str("method"),
			Amount: amount,
			PaidOn: paidOn,
		})
		return nil
	})
}

func loadPayments(f *excelize.File, records *types.RecordSet) error {
	return eachRow(f, SheetPayments, func(row *row) error {
		amount, err := row.decimal("amount")
		if err != nil {
			return err
		}
		paidOn, err := row.time("paid_on")
		if err != nil {
			return err
		}
		createdAt, err := row.time("created_at")
		if err != nil {
			return err
		}
		transactionDate, err := row.time("transaction_date")
		if err != nil {
			return err
		}
		transactionCreatedAt, err := row.time("transaction_created_at")
		if err != nil {
			return err
		}
		firstActivity, err := row.time("first_activity_at")
		if err != nil {
			return err
		}
		records.Payments = append(records.Payments, types.TransactionPayment{
			ID:                   row.int("id"),
			PaymentRef:           row.str("payment_ref_no"),
			Method:               row.str("method"),
			Amount:               amount,
			PaidOn:               paidOn,
			CreatedAt:            createdAt,
			TransactionID:        row.int("transaction_id"),
			TransactionInvoiceNo: row.str("invoice_no"),
			TransactionDate:      transactionDate,
			TransactionCreatedAt: transactionCreatedAt,
			FirstActivityAt:      firstActivity,
			ContactID:            row.int("contact_id"),
		})
		return nil
	})
}

func loadCustomers(f *excelize.File, records *types.RecordSet) error {
	return eachRow(f, SheetCustomers, func(row *row) error {
		records.Customers = append(records.Customers, types.Contact{
			ID:           row.int("id"),
			AddressLine1: row.str("address_line_1"),
			AddressLine2: row.str("address_line_2"),
			City:         row.str("city"),
			CountryCode:  row.str("country_code"),
			Email:        row.str("email"),
		})
		return nil
	})
}

func loadProducts(f *excelize.File, records *types.RecordSet) error {
	return eachRow(f, SheetProducts, func(row *row) error {
		records.Products = append(records.Products, types.Product{
			ID:          row.int("id"),
			SKU:         row.str("sku"),
			Name:        row.str("name"),
			Description: row.str("description"),
		})
		return nil
	})
}

// saleByID finds a loaded sale by transaction ID.
func saleByID(records *types.RecordSet, id int) *types.SaleInvoice {
	for i := range records.Sales {
		if records.Sales[i].ID == id {
			return &records.Sales[i]
		}
	}
	return nil
}

// =============================================================================
// ROW DECODING
// =============================================================================

// row is one data row with header-mapped access to its cells.
type row struct {
	sheet   string
	number  int
	headers map[string]int
	cells   []string
}

// eachRow walks a sheet's data rows in order. Row 1 is the header row. A
// missing sheet is an empty collection, not an error.
func eachRow(f *excelize.File, sheet string, fn func(*row) error) error {
	index, err := f.GetSheetIndex(sheet)
	if err != nil || index == -1 {
		return nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	headers := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		headers[strings.TrimSpace(strings.ToLower(name))] = i
	}

	for i, cells := range rows[1:] {
		if len(cells) == 0 {
			continue
		}
		r := &row{sheet: sheet, number: i + 2, headers: headers, cells: cells}
		if err := fn(r); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, r.number, err)
		}
	}

	return nil
}

// str returns the trimmed cell under the given header, or "".
func (r *row) str(header string) string {
	i, ok := r.headers[header]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// int returns the cell as an integer, or 0 when empty or unparseable.
func (r *row) int(header string) int {
	v, err := strconv.Atoi(r.str(header))
	if err != nil {
		return 0
	}
	return v
}

// bool returns true for "1", "true", "yes" (case-insensitive).
func (r *row) bool(header string) bool {
	switch strings.ToLower(r.str(header)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// decimal returns the cell as an exact decimal. An empty cell is zero.
func (r *row) decimal(header string) (decimal.Decimal, error) {
	s := r.str(header)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %s: %w", header, err)
	}
	return d, nil
}

// timeLayouts are the accepted cell formats, tried in order.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// time returns the cell as a timestamp. An empty cell is the zero time.
func (r *row) time(header string) (time.Time, error) {
	s := r.str(header)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("column %s: unrecognized time %q", header, s)
}
