package formatter

import (
	"github.com/ets2dash/tdashboard/internal/util"
	"github.com/ets2dash/tdashboard/pkg/core"
)

// Distances above these thresholds (metres) switch to the larger unit.
const (
	kilometreThreshold = 999
	mileThreshold      = 1609
)

func (f *Formatter) navigation(s *core.Snapshot, d *core.Derived) {
	d.EstimatedTime = f.elapsed(s.Navigation.EstimatedTime)
	d.NextRestStopTime = f.elapsed(s.Game.NextRestStopTime)
	d.Time = util.Clock(s.Game.Time)

	dist := s.Navigation.EstimatedDistance
	switch {
	case dist > kilometreThreshold:
		d.EstimatedDistanceKMH = f.distance(util.Floor(dist/1000), f.strings.Kilometre, d.EstimatedTime)
	case dist > 0:
		d.EstimatedDistanceKMH = f.distance(util.Floor(dist), f.strings.Metre, d.EstimatedTime)
	}

	switch {
	case dist > mileThreshold:
		d.EstimatedDistanceMPH = f.distance(util.Floor(dist*metresToMiles), f.strings.Mile, d.EstimatedTime)
	case dist > 0:
		d.EstimatedDistanceMPH = f.distance(util.Floor(dist*metresToYards), f.strings.Yard, d.EstimatedTime)
	}

	if s.Truck.ElectricOn {
		d.OdometerKMH = f.group(util.Floor(s.Truck.Odometer)) + " " + f.strings.Kilometre
		d.OdometerMPH = f.group(util.Floor(s.Truck.Odometer*kmToMiles)) + " " + f.strings.Mile
	} else {
		d.OdometerKMH = s.Truck.Make + " " + s.Truck.Model
		d.OdometerMPH = d.OdometerKMH
	}
}

func (f *Formatter) distance(n int64, unit, eta string) string {
	return f.group(n) + " " + unit + ", " + eta
}
