package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/daterange-engine/daterange"
	"github.com/warp/daterange-engine/entries"
	"github.com/xuri/excelize/v2"
)

func TestEntriesXLSX(t *testing.T) {
	listing := entries.Listing{
		Entries: []entries.Entry{
			{ID: 1, Name: "Hosting", Date: daterange.NewDate(2021, time.March, 15), Amount: decimal.RequireFromString("120.50"), PeriodName: "2021 H1"},
			{ID: 2, Name: "Audit", Date: daterange.NewDate(2022, time.January, 3), Amount: decimal.RequireFromString("80")},
		},
		Total: decimal.RequireFromString("200.50"),
	}

	raw, err := EntriesXLSX(listing)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Name", "Date", "Amount", "Period"}, rows[0])
	assert.Equal(t, "Hosting", rows[1][0])
	assert.Equal(t, "2021-03-15", rows[1][1])
	assert.Equal(t, "2021 H1", rows[1][3])

	// no containing range leaves the period cell empty
	assert.Equal(t, "Audit", rows[2][0])
	if len(rows[2]) > 3 {
		assert.Equal(t, "", rows[2][3])
	}
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "200.5", rows[3][2])
}

func TestEntriesXLSX_Empty(t *testing.T) {
	raw, err := EntriesXLSX(entries.Listing{Total: decimal.Zero})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Total", rows[1][0])
}
