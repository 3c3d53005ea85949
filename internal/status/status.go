// Package status derives the status shown to the customer from the order
// status and the global statuses of its shipments.
package status

import "github.com/BearBump/OrderTrack/internal/models"

type flags struct {
	incidence bool
	ret       bool
	completed bool
}

// rules are evaluated top-down, the first match wins.
var rules = []struct {
	match  func(flags) bool
	result models.DisplayedStatus
}{
	{func(f flags) bool { return f.incidence }, models.DisplayedIncidence},
	{func(f flags) bool { return f.ret }, models.DisplayedReturn},
	{func(f flags) bool { return f.completed }, models.DisplayedCompleted},
}

// Compute returns the displayed status. Shipments whose tracking could not be
// fetched must be left out of shipments by the caller.
func Compute(base models.OrderStatus, shipments []models.TrackingStatus) models.DisplayedStatus {
	var f flags
	for _, s := range shipments {
		switch s {
		case models.TrackingStatusIncidence:
			f.incidence = true
		case models.TrackingStatusReturn:
			f.ret = true
		case models.TrackingStatusCompleted:
			f.completed = true
		}
	}

	for _, r := range rules {
		if r.match(f) {
			return r.result
		}
	}
	return models.DisplayedStatus(base)
}
