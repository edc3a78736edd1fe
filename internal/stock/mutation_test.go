package stock

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sppg-kitchen-api-server/internal/models"
)

var now = time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)

func item(q float64) models.StockItem {
	return models.StockItem{ID: "s1", Name: "Beras", ItemType: models.ItemBahan, Quantity: q, Unit: "kg", MinThreshold: 20}
}

func TestApply_In(t *testing.T) {
	got, tx, err := Apply(item(10), Mutation{Kind: KindIn, Amount: 5, PerformedBy: "gudang"}, now, "tx1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.Quantity)
	assert.Equal(t, now, got.LastUpdated)
	assert.Equal(t, models.Transaction{
		ID: "tx1", ItemID: "s1", ItemName: "Beras", Type: models.TxIn, Quantity: 5,
		Date: now, Notes: "Mutasi Manual", PerformedBy: "gudang",
	}, tx)
}

func TestApply_OutClampsAndRecordsApplied(t *testing.T) {
	got, tx, err := Apply(item(25), Mutation{Kind: KindOut, Amount: 999}, now, "tx")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Quantity)
	assert.Equal(t, models.TxOut, tx.Type)
	assert.Equal(t, 25.0, tx.Quantity)
}

func TestApply_OutPartial(t *testing.T) {
	got, tx, err := Apply(item(25), Mutation{Kind: KindOut, Amount: 5, Notes: "masak siang"}, now, "tx")
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Quantity)
	assert.Equal(t, 5.0, tx.Quantity)
	assert.Equal(t, "masak siang", tx.Notes)
}

func TestApply_Opname(t *testing.T) {
	cases := []struct {
		name    string
		from    float64
		counted float64
		typ     models.TransactionType
		delta   float64
	}{
		{"unchanged", 10, 10, models.TxIn, 0},
		{"surplus", 10, 14, models.TxIn, 4},
		{"shortage", 10, 3, models.TxOut, 7},
		{"counted empty", 10, 0, models.TxOut, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, tx, err := Apply(item(tc.from), Mutation{Kind: KindOpname, Amount: tc.counted}, now, "tx")
			require.NoError(t, err)
			assert.Equal(t, tc.counted, got.Quantity)
			assert.Equal(t, tc.typ, tx.Type)
			assert.Equal(t, tc.delta, tx.Quantity)
			assert.Equal(t, "Update Stok Opname", tx.Notes)
		})
	}
}

func TestApply_Rejects(t *testing.T) {
	orig := item(10)
	for _, m := range []Mutation{
		{Kind: KindIn, Amount: 0},
		{Kind: KindOut, Amount: 0},
		{Kind: KindIn, Amount: -3},
		{Kind: KindOpname, Amount: -1},
		{Kind: KindIn, Amount: math.NaN()},
		{Kind: "TRANSFER", Amount: 1},
	} {
		got, _, err := Apply(orig, m, now, "tx")
		assert.Error(t, err, "%+v", m)
		assert.Equal(t, orig, got)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("OPNAME")
	require.NoError(t, err)
	assert.Equal(t, KindOpname, k)
	_, err = ParseKind("in")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestCritical(t *testing.T) {
	items := []models.StockItem{
		{Name: "Beras", ItemType: models.ItemBahan, Quantity: 5, MinThreshold: 20},
		{Name: "Telur", ItemType: models.ItemBahan, Quantity: 50, MinThreshold: 20},
		{Name: "Ompreng", ItemType: models.ItemAlat, Quantity: 20, MinThreshold: 20},
	}
	assert.Len(t, Critical(items, ""), 2)
	got := Critical(items, models.ItemBahan)
	require.Len(t, got, 1)
	assert.Equal(t, "Beras", got[0].Name)
}
