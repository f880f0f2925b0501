// pkg/core/derived.go
package core

// Derived holds the presentation-ready values computed from one Snapshot.
// Numeric fields are locale invariant; only the string fields vary by locale.
// Pointer fields are nil when the value has no meaning for the tick.
type Derived struct {
	ElectricOn bool `json:"_electricOn"`
	GameATS    bool `json:"_gameATS"`

	SpeedRoundedKMH int     `json:"_speedRoundedKMH"`
	SpeedRoundedMPH int     `json:"_speedRoundedMPH"`
	SpeedKMH        float64 `json:"_speedKMH"`
	SpeedMPH        float64 `json:"_speedMPH"`

	CruiseControlOn  bool `json:"_cruiseControlOn"`
	CruiseControlKMH int  `json:"_cruiseControlKMH"`
	CruiseControlMPH int  `json:"_cruiseControlMPH"`

	ShifterType string `json:"_shifterType"`
	HShifterOn  bool   `json:"_hShifterOn"`

	SpeedometerL string `json:"_speedometerL"`
	SpeedometerR string `json:"_speedometerR"`
	Kilometres   string `json:"_kilometres"`
	Miles        string `json:"_miles"`

	CargoMass      string `json:"_cargoMass"`
	JobTitle       string `json:"_jobTitle"`
	JobCargo       string `json:"_jobCargo"`
	JobOrigin      string `json:"_jobOrigin"`
	JobDestination string `json:"_jobDestination"`
	JobIncome      string `json:"_jobIncome"`
	JobRemains     string `json:"_jobRemains"`

	EstimatedTime        string `json:"_estimatedTime"`
	EstimatedDistanceKMH string `json:"_estimatedDistanceKMH"`
	EstimatedDistanceMPH string `json:"_estimatedDistanceMPH"`
	NextRestStopTime     string `json:"_nextRestStopTime"`
	OdometerKMH          string `json:"_odometerKMH"`
	OdometerMPH          string `json:"_odometerMPH"`

	WearEngine       int    `json:"_wearEngine"`
	WearTransmission int    `json:"_wearTransmission"`
	WearCabin        int    `json:"_wearCabin"`
	WearChassis      int    `json:"_wearChassis"`
	WearWheels       int    `json:"_wearWheels"`
	TruckWear        string `json:"_truckWear"`

	TrailerWearBody    *int   `json:"_trailerWearBody"`
	TrailerWearChassis *int   `json:"_trailerWearChassis"`
	TrailerWearWheels  *int   `json:"_trailerWearWheels"`
	TrailerWear        string `json:"_trailerWear"`

	SpeedLimit        bool   `json:"_speedLimit"`
	SpeedLimitKMH     *int   `json:"_speedLimitKMH"`
	SpeedLimitMPH     *int   `json:"_speedLimitMPH"`
	SpeedLimitFontKMH string `json:"_speedLimitFontKMH"`
	SpeedLimitFontMPH string `json:"_speedLimitFontMPH"`

	Time string `json:"_time"`

	BlinkerLeftActive    bool `json:"_blinkerLeftActive"`
	BlinkerRightActive   bool `json:"_blinkerRightActive"`
	FuelWarningOn        bool `json:"_fuelWarningOn"`
	AirPressureWarningOn bool `json:"_airPressureWarningOn"`
	RetarderOn           bool `json:"_retarderOn"`
	MotorBrakeOn         bool `json:"_motorBrakeOn"`
	ParkBrakeOn          bool `json:"_parkBrakeOn"`
	LightsBeamHighOn     bool `json:"_lightsBeamHighOn"`
	LightsBeamLowOn      bool `json:"_lightsBeamLowOn"`
	LightsParkingOn      bool `json:"_lightsParkingOn"`
	LightsBeaconOn       bool `json:"_lightsBeaconOn"`
	WipersOn             bool `json:"_wipersOn"`

	Fuel                     float64 `json:"_fuel"`
	AirPressure              float64 `json:"_airPressure"`
	AirPressureMaxValue      int     `json:"_airPressureMaxValue"`
	OilPressure              float64 `json:"_oilPressure"`
	WaterTemperature         float64 `json:"_waterTemperature"`
	WaterTemperatureMaxValue int     `json:"_waterTemperatureMaxValue"`

	ATSClass string `json:"_atsClass"`
}
