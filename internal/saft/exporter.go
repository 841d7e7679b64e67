// =============================================================================
// SAF-T Export - Document Orchestrator
// =============================================================================
//
// The Exporter composes the three document sections in their fixed order
// (Header, MasterFiles, SourceDocuments) into one AuditFile tree, hands it
// to the serializer, and returns the bytes together with a suggested
// filename. It performs no I/O: persistence and delivery belong to the
// caller.
//
// One Export call processes one business's records for one period. Calls
// share no mutable state, so independent export requests may run
// concurrently as long as each request's record snapshot is not mutated
// for the duration of the call.
//
// =============================================================================

package saft

import (
	"fmt"
	"time"

	"github.com/saqlainkhadim/saft-export/internal/aggregate"
	"github.com/saqlainkhadim/saft-export/internal/config"
	"github.com/saqlainkhadim/saft-export/internal/doctree"
	"github.com/saqlainkhadim/saft-export/internal/types"
	"github.com/saqlainkhadim/saft-export/internal/xmlwriter"
)

// Exporter builds complete SAF-T documents for one business.
type Exporter struct {
	// Settings are the business's SAF-T identification settings. The
	// orchestrator assumes they are present and validated (the config
	// loader rejects incomplete settings before an Exporter exists).
	Settings *config.SAFTSettings

	// Hasher supplies invoice hash values.
	Hasher aggregate.Hasher

	// Clock supplies the DateCreated timestamp. Defaults to time.Now;
	// injectable so output is reproducible under test.
	Clock func() time.Time

	// Options control serialization. Defaults to the compliant SAF-T
	// options.
	Options xmlwriter.Options
}

// New returns an Exporter for the given settings with the static hash
// collaborator and the default serializer options.
func New(settings *config.SAFTSettings) *Exporter {
	return &Exporter{
		Settings: settings,
		Hasher:   aggregate.StaticHasher{Value: settings.InvoiceHash},
		Clock:    time.Now,
		Options:  xmlwriter.DefaultOptions(),
	}
}

// Stats summarizes one export run.
type Stats struct {
	// InvoicesEmitted is the number of invoices in the output.
	InvoicesEmitted int

	// InvoicesSkipped counts sales omitted for having no item lines.
	InvoicesSkipped int

	// PaymentsEmitted is the number of payment records in the output.
	PaymentsEmitted int

	// LineItems is the total number of invoice lines in the output.
	LineItems int
}

// Result is the outcome of one export: the serialized document, the
// suggested filename, and run statistics.
type Result struct {
	XML      []byte
	Filename string
	Stats    Stats
}

// Export derives the aggregates, assembles the document tree, and
// serializes it. On a serialization failure no partial document is
// returned.
func (e *Exporter) Export(req types.ExportRequest, records *types.RecordSet) (*Result, error) {
	clock := e.Clock
	if clock == nil {
		clock = time.Now
	}

	invoices, invoiceTotals := aggregate.BuildInvoices(records.Sales, records, e.Hasher)
	payments, paymentTotals := aggregate.BuildPayments(records.Payments)

	root := doctree.Branch("AuditFile",
		HeaderSection(req, e.Settings, clock()),
		MasterFilesSection(records, e.Settings),
		SourceDocumentsSection(invoices, invoiceTotals, payments, paymentTotals, req.PeriodEnd),
	)

	xml, err := xmlwriter.Serialize(root, e.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize audit file: %w", err)
	}

	stats := Stats{
		InvoicesEmitted: len(invoices),
		InvoicesSkipped: len(records.Sales) - len(invoices),
		PaymentsEmitted: len(payments),
	}
	for _, invoice := range invoices {
		stats.LineItems += len(invoice.Lines)
	}

	return &Result{
		XML:      xml,
		Filename: Filename(e.Settings.BusinessName, req),
		Stats:    stats,
	}, nil
}

// Filename derives the suggested export filename from the business name
// and the reporting period bounds.
func Filename(businessName string, req types.ExportRequest) string {
	return fmt.Sprintf("%s%s-%s.xml",
		businessName,
		req.PeriodStart.Format(dateLayout),
		req.PeriodEnd.Format(dateLayout),
	)
}
