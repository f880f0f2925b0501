package formatter

import (
	"math"

	"github.com/ets2dash/tdashboard/internal/util"
	"github.com/ets2dash/tdashboard/pkg/core"
)

// Speed-limit sign typefaces.
const (
	FontHighwayGothic         = "Highway Gothic"
	FontHighwayGothicExpanded = "Highway Gothic Expanded"
)

func (f *Formatter) speed(s *core.Snapshot, d *core.Derived) {
	speed := math.Abs(s.Truck.Speed)
	d.SpeedKMH = speed
	d.SpeedMPH = speed * kmToMiles
	d.SpeedRoundedKMH = util.Round(speed)
	d.SpeedRoundedMPH = util.Round(speed * kmToMiles)

	d.CruiseControlOn = s.Truck.CruiseControlOn
	d.CruiseControlKMH = util.Round(s.Truck.CruiseControlSpeed)
	d.CruiseControlMPH = util.Round(s.Truck.CruiseControlSpeed * kmToMiles)

	switch s.ShifterType() {
	case "automatic":
		d.ShifterType = "A"
	case "manual":
		d.ShifterType = "M"
	default:
		d.ShifterType = ""
	}
	d.HShifterOn = d.ShifterType == ""
}

func (f *Formatter) speedLimit(s *core.Snapshot, d *core.Derived) {
	limit := s.Navigation.SpeedLimit
	d.SpeedLimit = limit > 0
	if d.SpeedLimit {
		kmh := util.Round(limit)
		mph := util.Round(limit * kmToMiles)
		d.SpeedLimitKMH = &kmh
		d.SpeedLimitMPH = &mph
	}
	d.SpeedLimitFontKMH = SpeedLimitFont(d.SpeedLimitKMH)
	d.SpeedLimitFontMPH = SpeedLimitFont(d.SpeedLimitMPH)
}

// SpeedLimitFont picks the sign typeface for a rounded limit. Limits ending
// in 1 from 111 to 171 and everything up to 99 use the expanded face;
// other three-digit limits use the narrow one.
func SpeedLimitFont(limit *int) string {
	if limit == nil {
		return FontHighwayGothicExpanded
	}
	switch v := *limit; {
	case v == 111, v == 121, v == 131, v == 141, v == 151, v == 161, v == 171:
		return FontHighwayGothicExpanded
	case v > 99:
		return FontHighwayGothic
	default:
		return FontHighwayGothicExpanded
	}
}
