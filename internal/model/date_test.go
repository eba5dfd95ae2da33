package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-05-17"`), &d))
	assert.Equal(t, "2024-05-17", d.String())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-17"`, string(b))

	require.NoError(t, json.Unmarshal([]byte(`"2024-05-17T22:10:00Z"`), &d))
	assert.Equal(t, "2024-05-17", d.String())

	assert.Error(t, json.Unmarshal([]byte(`"17/05/2024"`), &d))
}

func TestDate_Scan(t *testing.T) {
	var d Date

	require.NoError(t, d.Scan(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-02-29", d.String())

	require.NoError(t, d.Scan("2024-03-01"))
	assert.Equal(t, "2024-03-01", d.String())

	require.NoError(t, d.Scan([]byte("2024-03-02T00:00:00Z")))
	assert.Equal(t, "2024-03-02", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestDate_Value(t *testing.T) {
	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	d, _ := ParseDate("2024-01-31")
	v, err = d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", v)
}

func TestStockTransaction_SignedQuantity(t *testing.T) {
	assert.Equal(t, int64(5), StockTransaction{TxnTypeID: TxnDonation, Quantity: 5}.SignedQuantity())
	assert.Equal(t, int64(-5), StockTransaction{TxnTypeID: TxnDamaged, Quantity: 5}.SignedQuantity())
	assert.Equal(t, int64(5), StockTransaction{TxnTypeID: TxnForward, Quantity: 5}.SignedQuantity())
}

func TestMedicinePatch_Apply(t *testing.T) {
	m := Medicine{Name: "Paracetamol", Unit: "tablet", DosageForm: "oral"}
	unit := "strip"
	MedicinePatch{Unit: &unit}.Apply(&m)

	assert.Equal(t, "Paracetamol", m.Name)
	assert.Equal(t, "strip", m.Unit)
	assert.Equal(t, "oral", m.DosageForm)
}
