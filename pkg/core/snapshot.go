// pkg/core/snapshot.go
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Game names reported by the telemetry plugin.
const (
	GameETS = "ETS"
	GameATS = "ATS"
)

// Job markets whose contracts carry no countdown.
const (
	JobMarketExternalContracts = "external_contracts"
	JobMarketExternalMarket    = "external_market"
)

// Snapshot is one telemetry update as published by the telemetry server.
// It is read-only for every consumer.
type Snapshot struct {
	Game       Game       `json:"game"`
	Truck      Truck      `json:"truck"`
	Trailer    Trailer    `json:"trailer"`
	Trailers   Trailers   `json:"trailers"`
	Cargo      Cargo      `json:"cargo"`
	Job        Job        `json:"job"`
	Navigation Navigation `json:"navigation"`
	Shifter    Shifter    `json:"shifter"`
}

// Game holds session-wide state.
type Game struct {
	Connected        bool   `json:"connected"`
	Paused           bool   `json:"paused"`
	GameName         string `json:"gameName"`
	Time             string `json:"time"`
	NextRestStopTime string `json:"nextRestStopTime"`
	MaxTrailerCount  int    `json:"maxTrailerCount"`
	Version          string `json:"version"`
}

// IsATS reports whether the snapshot comes from American Truck Simulator.
func (g Game) IsATS() bool {
	return g.GameName == GameATS
}

// Truck holds vehicle state. Wear values are fractions in [0,1].
type Truck struct {
	ID                           string  `json:"id"`
	Make                         string  `json:"make"`
	Model                        string  `json:"model"`
	Speed                        float64 `json:"speed"`
	CruiseControlOn              bool    `json:"cruiseControlOn"`
	CruiseControlSpeed           float64 `json:"cruiseControlSpeed"`
	ElectricOn                   bool    `json:"electricOn"`
	EngineOn                     bool    `json:"engineOn"`
	Odometer                     float64 `json:"odometer"`
	EngineRpm                    float64 `json:"engineRpm"`
	EngineRpmMax                 float64 `json:"engineRpmMax"`
	ShifterType                  string  `json:"shifterType"`
	WearEngine                   float64 `json:"wearEngine"`
	WearTransmission             float64 `json:"wearTransmission"`
	WearCabin                    float64 `json:"wearCabin"`
	WearChassis                  float64 `json:"wearChassis"`
	WearWheels                   float64 `json:"wearWheels"`
	Fuel                         float64 `json:"fuel"`
	FuelCapacity                 float64 `json:"fuelCapacity"`
	FuelWarningOn                bool    `json:"fuelWarningOn"`
	AirPressure                  float64 `json:"airPressure"`
	AirPressureWarningOn         bool    `json:"airPressureWarningOn"`
	AirPressureWarningValue      float64 `json:"airPressureWarningValue"`
	AirPressureEmergencyOn       bool    `json:"airPressureEmergencyOn"`
	OilPressure                  float64 `json:"oilPressure"`
	WaterTemperature             float64 `json:"waterTemperature"`
	WaterTemperatureWarningValue float64 `json:"waterTemperatureWarningValue"`
	RetarderBrake                float64 `json:"retarderBrake"`
	MotorBrakeOn                 bool    `json:"motorBrakeOn"`
	ParkBrakeOn                  bool    `json:"parkBrakeOn"`
	BlinkerLeftActive            bool    `json:"blinkerLeftActive"`
	BlinkerRightActive           bool    `json:"blinkerRightActive"`
	LightsParkingOn              bool    `json:"lightsParkingOn"`
	LightsBeamLowOn              bool    `json:"lightsBeamLowOn"`
	LightsBeamHighOn             bool    `json:"lightsBeamHighOn"`
	LightsBeaconOn               bool    `json:"lightsBeaconOn"`
	WipersOn                     bool    `json:"wipersOn"`
}

// Trailer is a single trailer slot.
type Trailer struct {
	Attached    bool    `json:"attached"`
	Present     bool    `json:"present"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	WearBody    float64 `json:"wearBody"`
	WearChassis float64 `json:"wearChassis"`
	WearWheels  float64 `json:"wearWheels"`
}

// Trailers is the ordered list of trailer slots. The telemetry server
// publishes it either as an array or as an object keyed by slot index.
type Trailers []Trailer

// UnmarshalJSON accepts both the array and the index-keyed object encoding.
func (t *Trailers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	if data[0] == '[' {
		var list []Trailer
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("decode trailers array: %w", err)
		}
		*t = list
		return nil
	}

	var keyed map[string]Trailer
	if err := json.Unmarshal(data, &keyed); err != nil {
		return fmt.Errorf("decode trailers object: %w", err)
	}

	indices := make([]int, 0, len(keyed))
	byIndex := make(map[int]Trailer, len(keyed))
	for k, v := range keyed {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid trailer index %q", k)
		}
		indices = append(indices, i)
		byIndex[i] = v
	}
	sort.Ints(indices)

	list := make([]Trailer, 0, len(indices))
	for _, i := range indices {
		list = append(list, byIndex[i])
	}
	*t = list
	return nil
}

// Cargo describes the current load. Mass is in kilograms.
type Cargo struct {
	CargoLoaded bool    `json:"cargoLoaded"`
	Cargo       string  `json:"cargo"`
	Mass        float64 `json:"mass"`
}

// Job describes the active delivery.
type Job struct {
	SpecialTransport   bool    `json:"specialTransport"`
	Income             float64 `json:"income"`
	JobMarket          string  `json:"jobMarket"`
	RemainingTime      string  `json:"remainingTime"`
	SourceCity         string  `json:"sourceCity"`
	SourceCompany      string  `json:"sourceCompany"`
	DestinationCity    string  `json:"destinationCity"`
	DestinationCompany string  `json:"destinationCompany"`
	PlannedDistance    float64 `json:"plannedDistance"`
}

// Navigation holds route guidance. Distance is in metres, speed limit in km/h.
type Navigation struct {
	EstimatedTime     string  `json:"estimatedTime"`
	EstimatedDistance float64 `json:"estimatedDistance"`
	SpeedLimit        float64 `json:"speedLimit"`
}

// Shifter holds the transmission layout.
type Shifter struct {
	Type string `json:"type"`
}

// ShifterType returns shifter.type, falling back to truck.shifterType.
func (s *Snapshot) ShifterType() string {
	if s.Shifter.Type != "" {
		return s.Shifter.Type
	}
	return s.Truck.ShifterType
}
