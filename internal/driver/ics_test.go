package driver

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteICS(t *testing.T) {
	d := &Driver{ID: "d1", Name: "Sam"}
	trips := []Trip{{
		BookingID:       "b1",
		BusName:         "Party Bus 1",
		ClientName:      "Smith, Jane",
		PickupLocation:  "1 Main St; Unit 2",
		DropoffLocation: "Downtown",
		PassengerCount:  12,
		Start:           time.Date(2024, 7, 1, 18, 0, 0, 0, time.UTC),
		End:             time.Date(2024, 7, 1, 22, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, d, trips, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Contains(t, out, "UID:b1@partybus.booking\r\n")
	assert.Contains(t, out, "DTSTART:20240701T180000Z\r\n")
	assert.Contains(t, out, "DTEND:20240701T220000Z\r\n")
	assert.Contains(t, out, "DTSTAMP:20240601T000000Z\r\n")
	assert.Contains(t, out, `SUMMARY:Party Bus Duty: Smith\, Jane`)
	assert.Contains(t, out, `LOCATION:Pickup: 1 Main St\; Unit 2 | Dropoff: Downtown`)
	assert.Contains(t, out, `Passengers: 12\nBus: Party Bus 1`)
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
}

func TestWriteICS_NoTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, &Driver{Name: "Sam"}, nil, time.Now()))
	assert.NotContains(t, buf.String(), "VEVENT")
	assert.Contains(t, buf.String(), "X-WR-CALNAME:Sam's Schedule")
}

func TestWriteICS_FoldsLongLines(t *testing.T) {
	trips := []Trip{{
		BookingID:      "b1",
		ClientName:     strings.Repeat("é", 80),
		PassengerCount: 1,
		Start:          time.Unix(0, 0),
		End:            time.Unix(3600, 0),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, &Driver{Name: "Sam"}, trips, time.Unix(0, 0)))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75, line)
		assert.True(t, utf8.ValidString(line), line)
	}

	// Unfolding restores the original content line.
	unfolded := strings.ReplaceAll(buf.String(), "\r\n ", "")
	assert.Contains(t, unfolded, "SUMMARY:Party Bus Duty: "+strings.Repeat("é", 80)+"\r\n")
}

func TestWriteICS_UnknownNames(t *testing.T) {
	trips := []Trip{{BookingID: "b1", Start: time.Unix(0, 0), End: time.Unix(60, 0)}}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, &Driver{Name: "Sam"}, trips, time.Unix(0, 0)))
	assert.Contains(t, buf.String(), "SUMMARY:Party Bus Duty: Unknown Client")
	assert.Contains(t, buf.String(), `Bus: Unknown`)
}
