// =============================================================================
// SAF-T Export - Header Section
// =============================================================================
//
// Builds the Header section of the audit file from the export request and
// the business's SAF-T settings. Field order follows the schema sequence
// and must not change.
//
// =============================================================================

package saft

import (
	"strconv"
	"time"

	"github.com/saqlainkhadim/saft-export/internal/config"
	"github.com/saqlainkhadim/saft-export/internal/doctree"
	"github.com/saqlainkhadim/saft-export/internal/types"
	"github.com/saqlainkhadim/saft-export/internal/xmlwriter"
)

// Date/time layouts used throughout the document.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
	yearLayout     = "2006"
	monthLayout    = "01"
)

// ProductVersion reported in the Header.
const ProductVersion = "1.0"

// HeaderSection returns the Header subtree. DateCreated comes from the
// given clock; everything else derives from the request and settings, so
// re-building the section for the same request differs only in that leaf.
func HeaderSection(req types.ExportRequest, settings *config.SAFTSettings, now time.Time) doctree.Node {
	return doctree.Branch("Header",
		doctree.Leaf("AuditFileVersion", xmlwriter.AuditFileVersion),
		doctree.Leaf("CompanyID", settings.CompanyID),
		doctree.Leaf("TaxRegistrationNumber", settings.TaxRegistrationNumber),
		doctree.Leaf("TaxAccountingBasis", settings.TaxAccountingBasis),
		doctree.Leaf("CompanyName", settings.CompanyName),
		doctree.Branch("CompanyAddress",
			doctree.Leaf("AddressDetail", settings.CompanyAddressDetail),
			doctree.Leaf("City", settings.CompanyAddressCity),
			doctree.Leaf("Country", settings.CompanyAddressCountry),
		),
		doctree.Leaf("FiscalYear", req.PeriodEnd.Format(yearLayout)),
		doctree.Leaf("StartDate", req.PeriodStart.Format(dateLayout)),
		doctree.Leaf("EndDate", req.PeriodEnd.Format(dateLayout)),
		doctree.Leaf("CurrencyCode", settings.CurrencyCode),
		doctree.Leaf("DateCreated", now.Format(dateLayout)),
		doctree.Leaf("TaxEntity", settings.TaxEntity),
		doctree.Leaf("ProductCompanyTaxID", settings.ProductCompanyTaxID),
		doctree.Leaf("SoftwareValidationNumber", settings.SoftwareValidationNum),
		doctree.Leaf("ProductID", settings.ProductID),
		doctree.Leaf("ProductVersion", ProductVersion),
	)
}

// intLeaf is a leaf whose value is an integer identifier.
func intLeaf(name string, v int) doctree.Node {
	return doctree.Leaf(name, strconv.Itoa(v))
}
