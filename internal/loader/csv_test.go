package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `order_id,customer_id,order_date,delivery_date,product_name,quantity_x,total_price,gender,age_group,state
O1,C1,2023-01-10,2023-01-14,Denim Jacket,1,120.50,Female,Youth,NSW
O2,C2,2023-02-05,,Linen Shirt,2,60,Male,Adults,VIC
`

// TestLoad tests CSV ingestion with the production column set.
func TestLoad(t *testing.T) {
	l := New(nil)

	txs, err := l.Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	first := txs[0]
	assert.Equal(t, "O1", first.OrderID)
	assert.Equal(t, "C1", first.CustomerID)
	assert.Equal(t, time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), first.OrderDate)
	assert.Equal(t, time.Date(2023, 1, 14, 0, 0, 0, 0, time.UTC), first.DeliveryDate)
	assert.Equal(t, "Denim Jacket", first.ProductName)
	assert.Equal(t, 1, first.Quantity)
	assert.InDelta(t, 120.50, first.TotalPrice, 1e-9)
	assert.Equal(t, "NSW", first.State)

	second := txs[1]
	assert.True(t, second.DeliveryDate.IsZero(), "blank delivery date stays zero")
}

// TestLoadColumnMapping tests header-driven mapping and aliasing.
func TestLoadColumnMapping(t *testing.T) {
	l := New(nil)

	t.Run("reordered columns with quantity alias", func(t *testing.T) {
		csv := "total_price,quantity,order_date,customer_id\n42.0,3,2023-05-01,C7\n"
		txs, err := l.Load(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, 3, txs[0].Quantity)
		assert.InDelta(t, 42, txs[0].TotalPrice, 1e-9)
	})

	t.Run("unknown columns ignored", func(t *testing.T) {
		csv := "customer_id,order_date,total_price,payment_method\nC1,2023-01-01,10,card\n"
		txs, err := l.Load(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})

	t.Run("missing required column", func(t *testing.T) {
		csv := "order_id,order_date,total_price\nO1,2023-01-01,10\n"
		_, err := l.Load(strings.NewReader(csv))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "customer_id")
	})

	t.Run("BOM on first header cell", func(t *testing.T) {
		csv := "\uFEFFcustomer_id,order_date,total_price\nC1,2023-01-01,10\n"
		txs, err := l.Load(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})
}

// TestLoadRowErrors tests the fail-fast row diagnostics.
func TestLoadRowErrors(t *testing.T) {
	l := New(nil)

	tests := []struct {
		name   string
		csv    string
		column string
		line   int
	}{
		{
			name:   "empty customer id",
			csv:    "customer_id,order_date,total_price\n,2023-01-01,10\n",
			column: "customer_id",
			line:   2,
		},
		{
			name:   "bad order date",
			csv:    "customer_id,order_date,total_price\nC1,not-a-date,10\n",
			column: "order_date",
			line:   2,
		},
		{
			name:   "negative price",
			csv:    "customer_id,order_date,total_price\nC1,2023-01-01,10\nC2,2023-01-02,-4\n",
			column: "total_price",
			line:   3,
		},
		{
			name:   "empty price",
			csv:    "customer_id,order_date,total_price\nC1,2023-01-01,\n",
			column: "total_price",
			line:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := l.Load(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Nil(t, txs)

			var re *RowError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.column, re.Column)
			assert.Equal(t, tt.line, re.Line)
		})
	}
}

// TestLoadDateFallbacks tests the layout fallback list.
func TestLoadDateFallbacks(t *testing.T) {
	l := New(nil)
	csv := "customer_id,order_date,total_price\nC1,2023-01-10 14:30:00,10\nC2,10/02/2023,20\n"

	txs, err := l.Load(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, time.Date(2023, 1, 10, 14, 30, 0, 0, time.UTC), txs[0].OrderDate)
	assert.Equal(t, time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), txs[1].OrderDate)
}

// TestGenerateDemo tests determinism and shape of the synthetic batch.
func TestGenerateDemo(t *testing.T) {
	cfg := DefaultDemoConfig()
	cfg.Rows = 200
	cfg.Customers = 20
	cfg.Products = 5

	first := GenerateDemo(cfg)
	second := GenerateDemo(cfg)
	require.Len(t, first, 200)
	assert.Equal(t, first, second, "same seed, same dataset")

	for _, tx := range first {
		assert.NotEmpty(t, tx.CustomerID)
		assert.NotEmpty(t, tx.OrderID)
		assert.False(t, tx.OrderDate.Before(cfg.Start))
		assert.False(t, tx.OrderDate.After(cfg.End))
		assert.GreaterOrEqual(t, tx.TotalPrice, 0.0)
	}
}
