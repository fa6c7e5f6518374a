package entitlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/paykit/pkg/entitlement"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 30, 0, 0, time.UTC)
}

func TestAddMonthsClamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			name:   "plain month add",
			start:  date(2024, time.March, 15),
			months: 1,
			want:   date(2024, time.April, 15),
		},
		{
			name:   "jan 31 clamps to end of february, not march 3",
			start:  date(2025, time.January, 31),
			months: 1,
			want:   date(2025, time.February, 28),
		},
		{
			name:   "jan 31 clamps to feb 29 in leap year",
			start:  date(2024, time.January, 31),
			months: 1,
			want:   date(2024, time.February, 29),
		},
		{
			name:   "oct 31 clamps to nov 30",
			start:  date(2024, time.October, 31),
			months: 1,
			want:   date(2024, time.November, 30),
		},
		{
			name:   "quarterly add crossing year boundary",
			start:  date(2024, time.November, 30),
			months: 3,
			want:   date(2025, time.February, 28),
		},
		{
			name:   "yearly add keeps day",
			start:  date(2024, time.February, 29),
			months: 12,
			want:   date(2025, time.February, 28),
		},
		{
			name:   "december rolls into next year",
			start:  date(2024, time.December, 31),
			months: 1,
			want:   date(2025, time.January, 31),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := entitlement.AddMonthsClamped(tt.start, tt.months)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddMonthsClamped_PreservesClock(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.January, 31, 23, 59, 59, 123456789, time.UTC)
	got := entitlement.AddMonthsClamped(start, 1)

	assert.Equal(t, time.Date(2025, time.February, 28, 23, 59, 59, 123456789, time.UTC), got)
}
