// Package render converts formatted telemetry into presentation commands
// for the dashboard skin.
package render

import (
	"strconv"

	"github.com/ets2dash/tdashboard/internal/locale"
	"github.com/ets2dash/tdashboard/pkg/core"
)

// Dial background offsets into the dial sprite sheet.
const (
	dialHigh   = "0px -658px"
	dialMedium = "-658px -658px"
	dialLow    = "-658px 0px"
	dialOff    = "0px 0px"
)

const etsSpeedLimitFont = "Khand Bold"

// activeClass marks a lit indicator.
const activeClass = "yes"

// fontSizedRegions are resized for CJK glyphs.
const fontSizedRegions = "._jobTitle, ._jobCargo, ._jobOrigin, ._jobDestination, ._jobIncome, ._jobRemains, " +
	"._estimatedDistanceKMH, ._estimatedDistanceMPH, ._nextRestStopTime, ._truckWear, ._trailerWear, " +
	"._odometer, ._time, .statusMessage"

type dialThresholds struct {
	selector     string
	high, medium float64
}

var (
	rpmDial = dialThresholds{selector: "._dialscaleRPM", high: 2000, medium: 1500}
	kmhDial = dialThresholds{selector: "._dialScaleKMH", high: 80, medium: 60}
	mphDial = dialThresholds{selector: "._dialScaleMPH", high: 60, medium: 45}
)

// Render produces the per-tick command list for one formatted snapshot.
func Render(s *core.Snapshot, d core.Derived, l locale.Locale) []core.Command {
	if s == nil {
		s = &core.Snapshot{}
	}

	cmds := make([]core.Command, 0, 64)

	font := etsSpeedLimitFont
	fontMPH := etsSpeedLimitFont
	if s.Game.IsATS() {
		font = d.SpeedLimitFontKMH
		fontMPH = d.SpeedLimitFontMPH
	}
	cmds = append(cmds,
		style("._speedLimitKMH", "font-family", font),
		style("._speedLimitMPH", "font-family", fontMPH),
	)

	if s.Truck.ElectricOn && s.Job.JobMarket != "" {
		cmds = append(cmds, hide("._truckBrand"), show("._currentJob"))
	} else {
		cmds = append(cmds, show("._truckBrand"), hide("._currentJob"))
	}

	electric := s.Truck.ElectricOn
	cmds = append(cmds,
		rpmDial.command(electric, s.Truck.EngineRpm),
		kmhDial.command(electric, d.SpeedKMH),
		mphDial.command(electric, d.SpeedMPH),
	)

	cmds = append(cmds, core.Command{
		Kind:     core.CommandClass,
		Selector: "._truckBrand",
		Value:    BrandClass(s.Truck.ID, d.ATSClass),
	})

	size := "50px"
	if l.IsChinese() {
		size = "46px"
	}
	cmds = append(cmds, style(fontSizedRegions, "font-size", size))

	if d.SpeedLimit {
		cmds = append(cmds, show("._speedLimit"))
	} else {
		cmds = append(cmds, hide("._speedLimit"))
	}

	for _, f := range textFields(d) {
		cmds = append(cmds, core.Command{Kind: core.CommandText, Selector: "." + f.name, Value: f.value})
	}
	for _, f := range indicators(d) {
		cmds = append(cmds, toggle("."+f.name, f.on))
	}
	cmds = append(cmds, gauges(s, d)...)

	return cmds
}

func (t dialThresholds) command(electric bool, value float64) core.Command {
	pos := dialOff
	switch {
	case electric && value > t.high:
		pos = dialHigh
	case electric && value > t.medium:
		pos = dialMedium
	case electric:
		pos = dialLow
	}
	return style(t.selector, "background-position", pos)
}

type field struct {
	name  string
	value string
}

func textFields(d core.Derived) []field {
	return []field{
		{"_speedRoundedKMH", strconv.Itoa(d.SpeedRoundedKMH)},
		{"_speedRoundedMPH", strconv.Itoa(d.SpeedRoundedMPH)},
		{"_cruiseControlKMH", strconv.Itoa(d.CruiseControlKMH)},
		{"_cruiseControlMPH", strconv.Itoa(d.CruiseControlMPH)},
		{"_shifterType", d.ShifterType},
		{"_speedometerL", d.SpeedometerL},
		{"_speedometerR", d.SpeedometerR},
		{"_kilometres", d.Kilometres},
		{"_miles", d.Miles},
		{"_jobTitle", d.JobTitle},
		{"_jobCargo", d.JobCargo},
		{"_jobOrigin", d.JobOrigin},
		{"_jobDestination", d.JobDestination},
		{"_jobIncome", d.JobIncome},
		{"_jobRemains", d.JobRemains},
		{"_cargoMass", d.CargoMass},
		{"_estimatedTime", d.EstimatedTime},
		{"_estimatedDistanceKMH", d.EstimatedDistanceKMH},
		{"_estimatedDistanceMPH", d.EstimatedDistanceMPH},
		{"_nextRestStopTime", d.NextRestStopTime},
		{"_odometerKMH", d.OdometerKMH},
		{"_odometerMPH", d.OdometerMPH},
		{"_wearEngine", strconv.Itoa(d.WearEngine)},
		{"_wearTransmission", strconv.Itoa(d.WearTransmission)},
		{"_wearCabin", strconv.Itoa(d.WearCabin)},
		{"_wearChassis", strconv.Itoa(d.WearChassis)},
		{"_wearWheels", strconv.Itoa(d.WearWheels)},
		{"_truckWear", d.TruckWear},
		{"_trailerWearBody", optional(d.TrailerWearBody)},
		{"_trailerWearChassis", optional(d.TrailerWearChassis)},
		{"_trailerWearWheels", optional(d.TrailerWearWheels)},
		{"_trailerWear", d.TrailerWear},
		{"_speedLimitKMH", optional(d.SpeedLimitKMH)},
		{"_speedLimitMPH", optional(d.SpeedLimitMPH)},
		{"_time", d.Time},
	}
}

type indicator struct {
	name string
	on   bool
}

func indicators(d core.Derived) []indicator {
	return []indicator{
		{"_electricOn", d.ElectricOn},
		{"_cruiseControlOn", d.CruiseControlOn},
		{"_hShifterOn", d.HShifterOn},
		{"_blinkerLeftActive", d.BlinkerLeftActive},
		{"_blinkerRightActive", d.BlinkerRightActive},
		{"_fuelWarningOn", d.FuelWarningOn},
		{"_airPressureWarningOn", d.AirPressureWarningOn},
		{"_retarderOn", d.RetarderOn},
		{"_motorBrakeOn", d.MotorBrakeOn},
		{"_parkBrakeOn", d.ParkBrakeOn},
		{"_lightsBeamHighOn", d.LightsBeamHighOn},
		{"_lightsBeamLowOn", d.LightsBeamLowOn},
		{"_lightsParkingOn", d.LightsParkingOn},
		{"_lightsBeaconOn", d.LightsBeaconOn},
		{"_wipersOn", d.WipersOn},
	}
}

// gauges sets the gated readings and the scale maxima of the needle gauges.
func gauges(s *core.Snapshot, d core.Derived) []core.Command {
	return []core.Command{
		value("._fuel", d.Fuel),
		attr("._fuel", "data-max", number(s.Truck.FuelCapacity)),
		value("._airPressure", d.AirPressure),
		attr("._airPressure", "data-max", strconv.Itoa(d.AirPressureMaxValue)),
		value("._oilPressure", d.OilPressure),
		value("._waterTemperature", d.WaterTemperature),
		attr("._waterTemperature", "data-max", strconv.Itoa(d.WaterTemperatureMaxValue)),
	}
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optional(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func style(selector, property, value string) core.Command {
	return core.Command{Kind: core.CommandStyle, Selector: selector, Property: property, Value: value}
}

func toggle(selector string, on bool) core.Command {
	return core.Command{Kind: core.CommandToggle, Selector: selector, Property: activeClass, Value: strconv.FormatBool(on)}
}

func value(selector string, v float64) core.Command {
	return core.Command{Kind: core.CommandValue, Selector: selector, Value: number(v)}
}

func attr(selector, name, v string) core.Command {
	return core.Command{Kind: core.CommandAttr, Selector: selector, Property: name, Value: v}
}

func show(selector string) core.Command {
	return core.Command{Kind: core.CommandShow, Selector: selector}
}

func hide(selector string) core.Command {
	return core.Command{Kind: core.CommandHide, Selector: selector}
}

func showAt(selector string, i int) core.Command {
	return core.Command{Kind: core.CommandShow, Selector: selector, Index: &i}
}

func styleAt(selector string, i int, property, value string) core.Command {
	return core.Command{Kind: core.CommandStyle, Selector: selector, Index: &i, Property: property, Value: value}
}
