package activity

import (
	"math"
	"time"
)

// MethodLegendCap bounds the by-method breakdown so chart legends stay readable.
const MethodLegendCap = 5

// CountryCount is one slice of the by-country breakdown.
type CountryCount struct {
	Country string
	Count   int
}

// MethodCount is one slice of the by-method breakdown.
type MethodCount struct {
	Method string
	Count  int
}

// HourBucket accumulates session usage for one hour of day.
type HourBucket struct {
	Hour            int
	DurationMinutes int
	ActiveUsers     int
}

// CountByCountry tallies records per country. Every distinct country present
// in the input appears exactly once, in first-encounter order; empty country
// strings are kept as their own group rather than collapsed.
func CountByCountry(records []Record) []CountryCount {
	index := make(map[string]int, len(records))
	counts := make([]CountryCount, 0)
	for _, rec := range records {
		if i, ok := index[rec.Country]; ok {
			counts[i].Count++
			continue
		}
		index[rec.Country] = len(counts)
		counts = append(counts, CountryCount{Country: rec.Country, Count: 1})
	}
	return counts
}

// CountByMethod tallies records per HTTP method, capped at the first
// MethodLegendCap distinct methods in source order. Records carrying a method
// beyond the cap are ignored entirely; the tie-break is encounter order, so
// the output is deterministic for a given fetch order.
func CountByMethod(records []Record) []MethodCount {
	index := make(map[string]int, MethodLegendCap)
	counts := make([]MethodCount, 0, MethodLegendCap)
	for _, rec := range records {
		if i, ok := index[rec.Method]; ok {
			counts[i].Count++
			continue
		}
		if len(counts) >= MethodLegendCap {
			continue
		}
		index[rec.Method] = len(counts)
		counts = append(counts, MethodCount{Method: rec.Method, Count: 1})
	}
	return counts
}

// HourlyUsage buckets session durations by the hour of day of each record's
// login time in loc. The result always holds exactly 24 buckets, hours 0-23.
// A record contributes only when it has a user snapshot, a login time and a
// positive session duration; everything else is skipped, never an error.
// Durations are summed in seconds per bucket and converted to minutes rounded
// to the nearest integer.
func HourlyUsage(records []Record, loc *time.Location) []HourBucket {
	if loc == nil {
		loc = time.Local
	}
	seconds := make([]int64, 24)
	users := make([]map[int64]struct{}, 24)

	for _, rec := range records {
		if rec.User == nil || rec.LoginAt == nil || rec.SessionDuration <= 0 {
			continue
		}
		hour := rec.LoginAt.In(loc).Hour()
		seconds[hour] += rec.SessionDuration
		if users[hour] == nil {
			users[hour] = make(map[int64]struct{})
		}
		users[hour][rec.User.ID] = struct{}{}
	}

	buckets := make([]HourBucket, 24)
	for h := range buckets {
		buckets[h] = HourBucket{
			Hour:            h,
			DurationMinutes: int(math.Round(float64(seconds[h]) / 60)),
			ActiveUsers:     len(users[h]),
		}
	}
	return buckets
}
