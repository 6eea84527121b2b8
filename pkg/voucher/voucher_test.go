package voucher

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, &Voucher{
		Agency:    "Blue Coast Travel",
		Title:     "Vehicle rental voucher",
		Reference: "vehicle_rental#12",
		Customer:  "Zoë Müller",
		Status:    "active",
		IssuedAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Lines: []Line{
			{Label: "Vehicle", Value: "34 ABC 123"},
			{Label: "Days", Value: "3"},
		},
		Total:    "150.00",
		Currency: "EUR",
		Notes:    "Fuel policy: full to full.",
	})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}
