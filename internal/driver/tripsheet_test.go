package driver

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTripSheet(t *testing.T) {
	loc, err := time.LoadLocation("America/Edmonton")
	require.NoError(t, err)

	trips := []Trip{
		{
			BookingID: "b1", BusName: "Party Bus 1", ClientName: "Jane", PassengerCount: 10,
			PickupLocation: "1 Main St", DropoffLocation: "Downtown", Notes: "Birthday",
			Start: time.Date(2024, 7, 1, 18, 0, 0, 0, loc), End: time.Date(2024, 7, 1, 22, 0, 0, 0, loc),
		},
		{
			BookingID: "b2", BusName: "Party Bus 2", PassengerCount: 4,
			Start: time.Date(2024, 7, 1, 22, 0, 0, 0, loc), End: time.Date(2024, 7, 1, 23, 0, 0, 0, loc),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTripSheet(&buf, &Driver{ID: "d1", Name: "Sam"}, trips, loc, time.Date(2024, 6, 30, 12, 0, 0, 0, loc)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestWriteTripSheet_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTripSheet(&buf, &Driver{Name: "Sam"}, nil, nil, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
