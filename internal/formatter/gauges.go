package formatter

import (
	"github.com/ets2dash/tdashboard/internal/util"
	"github.com/ets2dash/tdashboard/pkg/core"
)

func (f *Formatter) gauges(s *core.Snapshot, d *core.Derived) {
	t := s.Truck

	d.BlinkerLeftActive = t.BlinkerLeftActive
	d.BlinkerRightActive = t.BlinkerRightActive
	d.FuelWarningOn = t.FuelWarningOn
	d.AirPressureWarningOn = t.AirPressureWarningOn || t.AirPressureEmergencyOn
	d.RetarderOn = t.RetarderBrake > 0
	d.MotorBrakeOn = t.MotorBrakeOn
	d.ParkBrakeOn = t.ParkBrakeOn
	d.LightsBeamHighOn = t.LightsBeamHighOn
	d.LightsBeamLowOn = t.LightsBeamLowOn
	d.LightsParkingOn = t.LightsParkingOn
	d.LightsBeaconOn = t.LightsBeaconOn
	d.WipersOn = t.WipersOn

	d.AirPressureMaxValue = util.Round(t.AirPressureWarningValue / 2 * 5)
	w := t.WaterTemperatureWarningValue
	d.WaterTemperatureMaxValue = util.Round(w + w/3*1.2857)

	// Stale readings linger after ignition off.
	if !t.ElectricOn {
		return
	}
	d.Fuel = t.Fuel
	d.AirPressure = t.AirPressure
	d.OilPressure = t.OilPressure
	d.WaterTemperature = t.WaterTemperature
}
