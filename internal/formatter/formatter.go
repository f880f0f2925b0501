// Package formatter turns raw telemetry snapshots into presentation-ready dashboard fields.
package formatter

import (
	"log/slog"

	"github.com/ets2dash/tdashboard/internal/locale"
	"github.com/ets2dash/tdashboard/pkg/core"
)

// Unit conversion factors.
const (
	kmToMiles     = 0.621371192
	kgToPounds    = 2.20462262
	metresToMiles = 0.000621371192
	metresToYards = 1.0936133
)

// Formatter derives display fields for a fixed locale.
// It holds no per-tick state and is safe for concurrent use.
type Formatter struct {
	logger  *slog.Logger
	locale  locale.Locale
	strings locale.Strings
}

// New creates a Formatter for the given locale.
func New(logger *slog.Logger, l locale.Locale) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{
		logger:  logger,
		locale:  l,
		strings: locale.Table(l),
	}
}

// Locale returns the locale the formatter was built for.
func (f *Formatter) Locale() locale.Locale {
	return f.locale
}

// Format computes the derived fields for one snapshot. The snapshot is not modified.
func (f *Formatter) Format(s *core.Snapshot) core.Derived {
	if s == nil {
		s = &core.Snapshot{}
	}

	var d core.Derived
	d.ElectricOn = s.Truck.ElectricOn
	d.GameATS = s.Game.IsATS()

	f.speed(s, &d)
	f.labels(&d)
	f.job(s, &d)
	f.navigation(s, &d)
	f.wear(s, &d)
	f.speedLimit(s, &d)
	f.gauges(s, &d)

	if d.GameATS {
		d.ATSClass = " _truckBrandATS "
	} else {
		d.ATSClass = " "
	}

	return d
}

func (f *Formatter) labels(d *core.Derived) {
	d.SpeedometerL = f.strings.SpeedometerL
	d.SpeedometerR = f.strings.SpeedometerR
	d.Kilometres = f.strings.Kilometres
	d.Miles = f.strings.Miles
}
