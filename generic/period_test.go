package generic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(s string) *Date {
	d := MustParseDate(s)
	return &d
}

func TestPeriod_ContainsIsInclusive(t *testing.T) {
	p := Period{Start: MustParseDate("2024-07-01"), End: MustParseDate("2024-09-30")}

	assert.True(t, p.Contains(MustParseDate("2024-07-01")))
	assert.True(t, p.Contains(MustParseDate("2024-09-30")))
	assert.False(t, p.Contains(MustParseDate("2024-06-30")))
	assert.False(t, p.Contains(MustParseDate("2024-10-01")))
	assert.Equal(t, 92, p.Days())
}

func TestDateRange_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b DateRange
		want bool
	}{
		{
			name: "disjoint closed ranges",
			a:    DateRange{From: MustParseDate("2024-01-01"), To: datePtr("2024-06-30")},
			b:    DateRange{From: MustParseDate("2024-07-01"), To: datePtr("2024-12-31")},
			want: false,
		},
		{
			name: "shared endpoint day",
			a:    DateRange{From: MustParseDate("2024-01-01"), To: datePtr("2024-06-30")},
			b:    DateRange{From: MustParseDate("2024-06-30")},
			want: true,
		},
		{
			name: "open-ended existing covers later start",
			a:    DateRange{From: MustParseDate("2024-01-01")},
			b:    DateRange{From: MustParseDate("2030-01-01"), To: datePtr("2030-12-31")},
			want: true,
		},
		{
			name: "candidate ends before open-ended existing starts",
			a:    DateRange{From: MustParseDate("2024-07-01")},
			b:    DateRange{From: MustParseDate("2024-01-01"), To: datePtr("2024-06-30")},
			want: false,
		},
		{
			name: "two open-ended ranges",
			a:    DateRange{From: MustParseDate("2024-01-01")},
			b:    DateRange{From: MustParseDate("2025-01-01")},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestDateRange_Covers(t *testing.T) {
	r := DateRange{From: MustParseDate("2024-07-01"), To: datePtr("2024-09-30")}
	assert.True(t, r.Covers(MustParseDate("2024-09-30")))
	assert.False(t, r.Covers(MustParseDate("2024-10-01")))

	open := DateRange{From: MustParseDate("2024-10-01")}
	assert.True(t, open.Covers(MustParseDate("2099-01-01")))
	assert.Equal(t, "2024-10-01 onwards", open.String())
}

func TestFrequency(t *testing.T) {
	assert.Equal(t, 1, FrequencyMonthly.IncrementMonths())
	assert.Equal(t, 3, FrequencyQuarterly.IncrementMonths())
	assert.Equal(t, 12, FrequencyAnnual.IncrementMonths())
	assert.Equal(t, 12, Frequency("fortnightly").IncrementMonths())

	_, err := ParseFrequency("weekly")
	assert.Error(t, err)
	f, err := ParseFrequency("quarterly")
	require.NoError(t, err)
	assert.Equal(t, FrequencyQuarterly, f)
}

func TestFiscalCalendar(t *testing.T) {
	fc := FiscalCalendar{StartMonth: time.July}

	assert.Equal(t, 2024, fc.StartYearFor(MustParseDate("2024-07-01")))
	assert.Equal(t, 2024, fc.StartYearFor(MustParseDate("2025-06-30")))
	assert.Equal(t, 2023, fc.StartYearFor(MustParseDate("2024-06-30")))

	fy := fc.PeriodFor(MustParseDate("2025-02-14"))
	assert.Equal(t, "2024-07-01", fy.Start.String())
	assert.Equal(t, "2025-06-30", fy.End.String())

	january := FiscalCalendar{StartMonth: time.January}
	assert.Equal(t, "2024-12-31", january.Year(2024).End.String())
}
