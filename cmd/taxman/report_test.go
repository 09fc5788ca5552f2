package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/taxman/bas"
	"github.com/warp/taxman/generic"
)

func TestPrintReport(t *testing.T) {
	q1 := bas.FiscalPeriod{
		Label: "Q1", Index: 1,
		Start: generic.MustParseDate("2024-07-01"), End: generic.MustParseDate("2024-09-30"),
	}
	report := &bas.Report{
		Request:         bas.Request{Frequency: generic.FrequencyQuarterly, Basis: generic.BasisCash, FiscalYearStart: 2024, FYStartMonth: time.July},
		FiscalYearLabel: "FY 2024-25",
		Periods: []bas.PeriodSummary{{
			Period:  q1,
			Summary: bas.Summary{SalesExCents: 60000, SalesGstCents: 6000, PurchasesGstCents: 1050, NetGstCents: 4950},
		}},
		Exceptions: []bas.Exception{{
			PeriodIndex: 1, SourceType: "invoice", SourceID: "inv-7",
			Kind: bas.ExceptionUncollectedInvoice, Message: "no cash received date",
		}},
	}

	var out bytes.Buffer
	require.NoError(t, printReport(&out, report))

	text := out.String()
	assert.Contains(t, text, "BAS FY 2024-25 (cash, quarterly)")
	assert.Contains(t, text, "2024-09-30")
	assert.Contains(t, text, "600.00")
	assert.Contains(t, text, "49.50")
	assert.Contains(t, text, "1 exception(s)")
	assert.Contains(t, text, "[P1] invoice inv-7: no cash received date")
}
