package entitlement

import "time"

// AddMonthsClamped adds the given number of calendar months to t, clamping
// the day-of-month to the last day of the target month.
//
// The naive time.AddDate rolls overflow into the next month (Jan 31 + 1
// month = Mar 3), which silently grants extra days and lands subscriptions
// in the wrong month. The policy here is clamp-to-last-day: Jan 31 + 1 month
// is Feb 28 (or Feb 29 in a leap year), Oct 31 + 1 month is Nov 30.
// Time-of-day and location are preserved.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	// Normalize the target year/month without involving the day.
	m := int(month) - 1 + months
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	targetMonth := time.Month(m + 1)

	if last := lastDayOfMonth(year, targetMonth); day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(year, targetMonth, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// lastDayOfMonth returns the number of days in the given month.
func lastDayOfMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
