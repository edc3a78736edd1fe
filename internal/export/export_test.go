package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sppg-kitchen-api-server/internal/models"
)

var wib = time.FixedZone("WIB", 7*3600)

func sampleDistributions(n int) []models.Distribution {
	out := make([]models.Distribution, n)
	for i := range out {
		out[i] = models.Distribution{
			ID:            "d" + string(rune('a'+i)),
			SerialNumber:  "00" + string(rune('1'+i)) + "/SJ/MRTJSH/XI/2025",
			Destination:   "SDN Martajasah 1",
			RecipientName: "PANITIA MBG",
			Portions:      150,
			DriverName:    "Pak Slamet",
			Status:        models.StatusPreparing,
			Timestamp:     time.Date(2025, 11, 3, 7, 0, 0, 0, wib),
		}
	}
	return out
}

func TestDeliveryNotes_TwoPerPage(t *testing.T) {
	for _, tc := range []struct {
		notes, pages int
	}{{1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}} {
		d, err := deliveryNotesDoc(sampleDistributions(tc.notes), NoteOptions{Location: wib})
		require.NoError(t, err)
		assert.Equal(t, tc.pages, d.PageNo(), "notes=%d", tc.notes)
		require.NoError(t, d.Error())
	}
}

func TestDeliveryNotes_Render(t *testing.T) {
	var buf bytes.Buffer
	err := DeliveryNotes(&buf, sampleDistributions(3), NoteOptions{
		Addresses: map[string]string{"SDN Martajasah 1": "Jl. Soekarno Hatta"},
		Location:  wib,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestNoteOptions_AddressIgnoresCaseAndSpace(t *testing.T) {
	opts := NoteOptions{Addresses: map[string]string{
		"SDN MARTAJASAH": "Jl. Kemuning",
		"SDN Kramat 1":   "Pelinggian Timur",
	}}
	assert.Equal(t, "Jl. Kemuning", opts.address("SDN MARTAJASAH"))
	assert.Equal(t, "Jl. Kemuning", opts.address("sdn martajasah"))
	assert.Equal(t, "Jl. Kemuning", opts.address(" Sdn Martajasah "))
	assert.Equal(t, "Pelinggian Timur", opts.address("SDN KRAMAT 1"))
	assert.Empty(t, opts.address("SDN MARTAJASAH 2"))
	assert.Empty(t, NoteOptions{}.address("SDN MARTAJASAH"))
}

func TestDeliveryNotes_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, DeliveryNotes(&buf, nil, NoteOptions{}), ErrNothingToExport)
	assert.Zero(t, buf.Len())
}

func TestReports_Render(t *testing.T) {
	printed := time.Date(2025, 11, 3, 9, 30, 0, 0, wib)
	stock := []models.StockItem{
		{Name: "Telur", Category: "Protein", ItemType: models.ItemBahan, Quantity: 2, Unit: "kg", MinThreshold: 5},
		{Name: "Beras", Category: "Karbo", ItemType: models.ItemBahan, Quantity: 50, Unit: "kg", MinThreshold: 20},
	}
	var buf bytes.Buffer
	require.NoError(t, StockReport(&buf, stock, models.ItemBahan, printed, wib))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	ps := []models.Procurement{{
		ID: "0f1e2d3c-aaaa", Supplier: "UD Makmur", Status: models.ProcurementOrdered,
		Items:      []models.ProcurementItem{{Name: "Beras", Quantity: 10, Unit: "kg", Price: 12500}},
		TotalPrice: 125000,
	}}
	require.NoError(t, ProcurementReport(&buf, ps, printed, wib))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	plan := models.MenuPlan{Name: "Nasi Ayam", Portions: 300, Date: printed,
		Ingredients: []models.Ingredient{{Name: "Ayam", Quantity: 30, Unit: "kg"}}}
	require.NoError(t, MenuPlan(&buf, plan, wib))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestIndonesianDate(t *testing.T) {
	ts := time.Date(2025, 10, 31, 20, 5, 0, 0, time.UTC)
	assert.Equal(t, "1 November 2025", IndonesianDate(ts, wib))
	assert.Equal(t, "31 Oktober 2025", IndonesianDate(ts, nil))
	assert.Equal(t, "1 November 2025 03.05 WIB", IndonesianDateTime(ts, wib))
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "0", Thousands(0))
	assert.Equal(t, "950", Thousands(950))
	assert.Equal(t, "12.500", Thousands(12500))
	assert.Equal(t, "1.250.000", Thousands(1250000))
	assert.Equal(t, "-3.000", Thousands(-3000))
}
