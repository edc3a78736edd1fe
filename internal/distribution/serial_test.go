package distribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sppg-kitchen-api-server/internal/models"
)

func TestRomanMonth(t *testing.T) {
	assert.Equal(t, "I", RomanMonth(1))
	assert.Equal(t, "IX", RomanMonth(9))
	assert.Equal(t, "XII", RomanMonth(12))
	assert.Equal(t, "13", RomanMonth(13))
	assert.Equal(t, "0", RomanMonth(0))
}

func TestNextSerials_FreshMonth(t *testing.T) {
	at := time.Date(2025, 11, 3, 9, 0, 0, 0, wib)
	got := NextSerials(nil, at, wib, 3)
	assert.Equal(t, []string{
		"001/SJ/MRTJSH/XI/2025",
		"002/SJ/MRTJSH/XI/2025",
		"003/SJ/MRTJSH/XI/2025",
	}, got)
}

func TestNextSerials_ContinuesWithinMonthOnly(t *testing.T) {
	at := time.Date(2025, 11, 20, 9, 0, 0, 0, wib)
	existing := []models.Distribution{
		{SerialNumber: "007/SJ/MRTJSH/XI/2025"},
		{SerialNumber: "002/SJ/MRTJSH/XI/2025"},
		{SerialNumber: "040/SJ/MRTJSH/X/2025"},  // previous month
		{SerialNumber: "090/SJ/MRTJSH/XI/2024"}, // previous year
	}
	assert.Equal(t, []string{"008/SJ/MRTJSH/XI/2025", "009/SJ/MRTJSH/XI/2025"}, NextSerials(existing, at, wib, 2))
}

func TestNextSerials_IgnoresMalformedPrefixes(t *testing.T) {
	at := time.Date(2025, 11, 20, 9, 0, 0, 0, wib)
	existing := []models.Distribution{
		{SerialNumber: "abc/SJ/MRTJSH/XI/2025"},
		{SerialNumber: "-5/SJ/MRTJSH/XI/2025"},
		{SerialNumber: "/SJ/MRTJSH/XI/2025"},
		{SerialNumber: "004/SJ/MRTJSH/XI/2025"},
	}
	assert.Equal(t, []string{"005/SJ/MRTJSH/XI/2025"}, NextSerials(existing, at, wib, 1))
}

func TestNextSerials_UsesKitchenZone(t *testing.T) {
	// 31 Oct 2025 18:00 UTC is already 1 Nov in Jakarta.
	at := time.Date(2025, 10, 31, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"001/SJ/MRTJSH/XI/2025"}, NextSerials(nil, at, wib, 1))
}

func TestNextSerials_BeyondThreeDigits(t *testing.T) {
	at := time.Date(2025, 11, 20, 9, 0, 0, 0, wib)
	existing := []models.Distribution{{SerialNumber: "999/SJ/MRTJSH/XI/2025"}}
	assert.Equal(t, []string{"1000/SJ/MRTJSH/XI/2025"}, NextSerials(existing, at, wib, 1))
}

func TestNextSerialsAfter_Floor(t *testing.T) {
	at := time.Date(2025, 11, 3, 7, 0, 0, 0, wib)
	existing := []models.Distribution{
		{SerialNumber: "001/SJ/MRTJSH/XI/2025"},
		{SerialNumber: "002/SJ/MRTJSH/XI/2025"},
	}
	assert.Equal(t, []string{"004/SJ/MRTJSH/XI/2025"}, NextSerialsAfter(existing, 3, at, wib, 1))
	assert.Equal(t, []string{"003/SJ/MRTJSH/XI/2025"}, NextSerialsAfter(existing, 1, at, wib, 1), "records in use win over a lower floor")
	assert.Equal(t, []string{"008/SJ/MRTJSH/XI/2025", "009/SJ/MRTJSH/XI/2025"}, NextSerialsAfter(nil, 7, at, wib, 2))
}

func TestBySerial_NumericOrder(t *testing.T) {
	ds := []models.Distribution{
		{ID: "c", SerialNumber: "1000/SJ/MRTJSH/XI/2025"},
		{ID: "a", SerialNumber: "010/SJ/MRTJSH/XI/2025"},
		{ID: "b", SerialNumber: "002/SJ/MRTJSH/XI/2025"},
	}
	got := BySerial(ds)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.Equal(t, "c", ds[0].ID, "input is left untouched")
}
