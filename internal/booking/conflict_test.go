package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hm(h, m int) time.Time {
	return time.Date(2024, 7, 1, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"disjoint", hm(10, 0), hm(11, 0), hm(12, 0), hm(13, 0), false},
		{"touching end to start", hm(18, 0), hm(22, 0), hm(22, 0), hm(23, 0), false},
		{"touching start to end", hm(22, 0), hm(23, 0), hm(18, 0), hm(22, 0), false},
		{"partial overlap", hm(18, 0), hm(22, 0), hm(21, 0), hm(23, 0), true},
		{"contained", hm(18, 0), hm(22, 0), hm(19, 0), hm(20, 0), true},
		{"containing", hm(19, 0), hm(20, 0), hm(18, 0), hm(22, 0), true},
		{"identical", hm(18, 0), hm(22, 0), hm(18, 0), hm(22, 0), true},
		{"one minute overlap", hm(18, 0), hm(22, 1), hm(22, 0), hm(23, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1), "overlap must be symmetric")
		})
	}
}

type staticSchedule []*Booking

func (s staticSchedule) ListConfirmed(_ context.Context, resource Resource, id string, _, _ time.Time) ([]*Booking, error) {
	var out []*Booking
	for _, b := range s {
		match := b.BusID == id
		if resource == ResourceDriver {
			match = b.DriverID == id
		}
		if match {
			out = append(out, b)
		}
	}
	return out, nil
}

func TestConflictChecker(t *testing.T) {
	schedule := staticSchedule{
		{ID: "a", BusID: "v1", DriverID: "d1", Status: StatusConfirmed, StartTime: hm(18, 0), EndTime: hm(22, 0)},
		{ID: "p", BusID: "v1", DriverID: "d2", Status: StatusPending, StartTime: hm(8, 0), EndTime: hm(12, 0)},
	}
	checker := NewConflictChecker(schedule)
	ctx := context.Background()

	tests := []struct {
		name      string
		resource  Resource
		id        string
		exclude   string
		start     time.Time
		end       time.Time
		wantClash bool
	}{
		{"vehicle overlap", ResourceVehicle, "v1", "", hm(21, 0), hm(23, 0), true},
		{"vehicle touching", ResourceVehicle, "v1", "", hm(22, 0), hm(23, 0), false},
		{"excluded self", ResourceVehicle, "v1", "a", hm(19, 0), hm(20, 0), false},
		{"other vehicle", ResourceVehicle, "v2", "", hm(19, 0), hm(20, 0), false},
		{"driver overlap", ResourceDriver, "d1", "", hm(17, 0), hm(18, 30), true},
		{"pending never blocks", ResourceDriver, "d2", "", hm(9, 0), hm(10, 0), false},
		{"no driver assigned", ResourceDriver, "", "", hm(19, 0), hm(20, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.HasConflict(ctx, tt.resource, tt.id, tt.exclude, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClash, got)
		})
	}

	clash, err := checker.FindConflict(ctx, ResourceVehicle, "v1", "", hm(21, 0), hm(23, 0))
	require.NoError(t, err)
	require.NotNil(t, clash)
	assert.Equal(t, "a", clash.ID)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusConfirmed))
	assert.True(t, StatusPending.CanTransition(StatusCancelled))
	assert.True(t, StatusConfirmed.CanTransition(StatusCancelled))
	assert.False(t, StatusConfirmed.CanTransition(StatusPending))
	assert.False(t, StatusCancelled.CanTransition(StatusPending))
	assert.False(t, StatusCancelled.CanTransition(StatusConfirmed))
	assert.False(t, StatusConfirmed.CanTransition(StatusConfirmed))
}
