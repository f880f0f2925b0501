package formatter

import (
	"strconv"

	"github.com/ets2dash/tdashboard/internal/util"
	"github.com/ets2dash/tdashboard/pkg/core"
)

func (f *Formatter) wear(s *core.Snapshot, d *core.Derived) {
	t := s.Truck
	d.WearEngine = util.Round(t.WearEngine * 100)
	d.WearTransmission = util.Round(t.WearTransmission * 100)
	d.WearCabin = util.Round(t.WearCabin * 100)
	d.WearChassis = util.Round(t.WearChassis * 100)
	d.WearWheels = util.Round(t.WearWheels * 100)

	sum := d.WearEngine + d.WearTransmission + d.WearCabin + d.WearChassis + d.WearWheels
	d.TruckWear = percent(util.Round(float64(sum) / 5))

	f.trailerWear(s, d)
}

// trailerWear averages each wear category over all present trailers.
// With no present trailers the categories stay nil and the summary is empty.
func (f *Formatter) trailerWear(s *core.Snapshot, d *core.Derived) {
	n := min(s.Game.MaxTrailerCount, len(s.Trailers))

	var body, chassis, wheels float64
	present := 0
	for i := 0; i < n; i++ {
		tr := s.Trailers[i]
		if !tr.Present {
			continue
		}
		body += tr.WearBody * 100
		chassis += tr.WearChassis * 100
		wheels += tr.WearWheels * 100
		present++
	}

	if present == 0 {
		if s.Trailer.Attached {
			f.logger.Debug("trailer attached but no present trailers reported",
				"maxTrailerCount", s.Game.MaxTrailerCount,
				"trailers", len(s.Trailers))
		}
		return
	}

	b := util.Round(body / float64(present))
	c := util.Round(chassis / float64(present))
	w := util.Round(wheels / float64(present))
	d.TrailerWearBody = &b
	d.TrailerWearChassis = &c
	d.TrailerWearWheels = &w

	if s.Trailer.Attached {
		d.TrailerWear = percent(util.Round(float64(b+c+w) / 3))
	}
}

func percent(v int) string {
	return strconv.Itoa(v) + "%"
}
