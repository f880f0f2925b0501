package formatter

import (
	"math"

	"github.com/ets2dash/tdashboard/internal/util"
	"github.com/ets2dash/tdashboard/pkg/core"
)

func (f *Formatter) job(s *core.Snapshot, d *core.Derived) {
	d.CargoMass = f.cargoMass(s)
	if s.Cargo.Cargo != "" {
		d.JobCargo = s.Cargo.Cargo + " (" + d.CargoMass + ")"
	}

	d.JobTitle = f.strings.JobTitle(s.Job.SpecialTransport)
	d.JobIncome = f.income(s)
	d.JobOrigin = place(s.Job.SourceCity, s.Job.SourceCompany)
	d.JobDestination = place(s.Job.DestinationCity, s.Job.DestinationCompany)

	switch s.Job.JobMarket {
	case core.JobMarketExternalContracts, core.JobMarketExternalMarket:
		d.JobRemains = ""
	default:
		d.JobRemains = f.elapsed(s.Job.RemainingTime)
	}
}

// cargoMass renders the load in pounds for ATS and metric tons otherwise.
func (f *Formatter) cargoMass(s *core.Snapshot) string {
	if s.Game.IsATS() {
		return f.group(util.Floor(s.Cargo.Mass*kgToPounds)) + " " + f.strings.Pound
	}
	return f.group(util.Floor(s.Cargo.Mass/1000.0)) + " " + f.strings.Ton
}

// income renders whole-currency job income. ATS is always paid in dollars.
func (f *Formatter) income(s *core.Snapshot) string {
	if s.Job.Income == 0 {
		return ""
	}

	amount := f.group(int64(math.Trunc(s.Job.Income)))
	switch {
	case s.Game.IsATS():
		return "$ " + amount + f.strings.Marker
	case f.strings.CurrencyAfter:
		return amount + f.strings.Marker + " €"
	default:
		return "€ " + amount + f.strings.Marker
	}
}

// place joins a city and company as "city - company", or returns the city alone.
func place(city, company string) string {
	switch {
	case city != "" && company != "":
		return city + " - " + company
	case city != "":
		return city
	default:
		return ""
	}
}

func (f *Formatter) group(n int64) string {
	return util.Group(n, f.strings.Grouping)
}

func (f *Formatter) elapsed(ts string) string {
	return util.Elapsed(ts, f.strings.HourWord, f.strings.MinuteWord)
}
