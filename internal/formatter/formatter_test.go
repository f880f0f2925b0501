package formatter

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ets2dash/tdashboard/internal/locale"
	"github.com/ets2dash/tdashboard/internal/util"
	"github.com/ets2dash/tdashboard/pkg/core"
)

func newTestFormatter(l locale.Locale) *Formatter {
	return New(slog.New(slog.DiscardHandler), l)
}

func sampleSnapshot() *core.Snapshot {
	return &core.Snapshot{
		Game: core.Game{
			Connected:        true,
			GameName:         core.GameETS,
			Time:             "0001-01-03T14:07:00Z",
			NextRestStopTime: "0001-01-01T09:45:00Z",
			MaxTrailerCount:  2,
		},
		Truck: core.Truck{
			ID:                           "volvo",
			Make:                         "Volvo",
			Model:                        "FH16",
			Speed:                        87.6,
			CruiseControlOn:              true,
			CruiseControlSpeed:           90,
			ElectricOn:                   true,
			EngineOn:                     true,
			Odometer:                     1234567.8,
			EngineRpm:                    1400,
			ShifterType:                  "automatic",
			WearEngine:                   0.1,
			WearTransmission:             0.2,
			WearCabin:                    0.3,
			WearChassis:                  0.4,
			WearWheels:                   0.5,
			Fuel:                         512.5,
			AirPressure:                  120,
			AirPressureWarningValue:      65,
			OilPressure:                  60,
			WaterTemperature:             85,
			WaterTemperatureWarningValue: 105,
			RetarderBrake:                2,
		},
		Trailer: core.Trailer{Attached: true},
		Trailers: core.Trailers{
			{Present: true, WearBody: 0.1, WearChassis: 0.2, WearWheels: 0.3},
			{Present: true, WearBody: 0.3, WearChassis: 0.4, WearWheels: 0.5},
		},
		Cargo: core.Cargo{CargoLoaded: true, Cargo: "Apples", Mass: 25350},
		Job: core.Job{
			Income:             12500,
			RemainingTime:      "0001-01-02T03:15:00Z",
			SourceCity:         "Berlin",
			SourceCompany:      "Tradeaux",
			DestinationCity:    "Praha",
			DestinationCompany: "",
		},
		Navigation: core.Navigation{
			EstimatedTime:     "0001-01-01T02:30:00Z",
			EstimatedDistance: 12345,
			SpeedLimit:        80,
		},
	}
}

// numericFields collects every locale-independent value of a Derived record.
type numericFields struct {
	SpeedRoundedKMH, SpeedRoundedMPH   int
	SpeedKMH, SpeedMPH                 float64
	CruiseControlKMH, CruiseControlMPH int
	Wear                               [5]int
	TrailerWear                        [3]int
	SpeedLimitKMH, SpeedLimitMPH       int
	Fuel, Air, Oil, Water              float64
	AirMax, WaterMax                   int
}

func numeric(d core.Derived) numericFields {
	deref := func(p *int) int {
		if p == nil {
			return -1
		}
		return *p
	}
	return numericFields{
		SpeedRoundedKMH:  d.SpeedRoundedKMH,
		SpeedRoundedMPH:  d.SpeedRoundedMPH,
		SpeedKMH:         d.SpeedKMH,
		SpeedMPH:         d.SpeedMPH,
		CruiseControlKMH: d.CruiseControlKMH,
		CruiseControlMPH: d.CruiseControlMPH,
		Wear:             [5]int{d.WearEngine, d.WearTransmission, d.WearCabin, d.WearChassis, d.WearWheels},
		TrailerWear:      [3]int{deref(d.TrailerWearBody), deref(d.TrailerWearChassis), deref(d.TrailerWearWheels)},
		SpeedLimitKMH:    deref(d.SpeedLimitKMH),
		SpeedLimitMPH:    deref(d.SpeedLimitMPH),
		Fuel:             d.Fuel,
		Air:              d.AirPressure,
		Oil:              d.OilPressure,
		Water:            d.WaterTemperature,
		AirMax:           d.AirPressureMaxValue,
		WaterMax:         d.WaterTemperatureMaxValue,
	}
}

func TestFormat_NumericFieldsAreLocaleInvariant(t *testing.T) {
	snap := sampleSnapshot()
	want := numeric(newTestFormatter(locale.English).Format(snap))

	for _, l := range locale.All() {
		t.Run(l.String(), func(t *testing.T) {
			assert.Equal(t, want, numeric(newTestFormatter(l).Format(snap)))
		})
	}
}

func TestFormat_DoesNotMutateInput(t *testing.T) {
	snap := sampleSnapshot()
	before := *snap
	before.Trailers = append(core.Trailers(nil), snap.Trailers...)

	newTestFormatter(locale.German).Format(snap)

	assert.Equal(t, before, *snap)
}

func TestFormat_NilSnapshot(t *testing.T) {
	d := newTestFormatter(locale.English).Format(nil)

	assert.Equal(t, "0%", d.TruckWear)
	assert.Empty(t, d.TrailerWear)
	assert.Nil(t, d.TrailerWearBody)
	assert.False(t, d.SpeedLimit)
	assert.Equal(t, " ", d.ATSClass)
}

func TestFormat_MPHWithinOneOfKMH(t *testing.T) {
	f := newTestFormatter(locale.English)
	for kmh := 0; kmh <= 200; kmh++ {
		snap := &core.Snapshot{Truck: core.Truck{Speed: float64(kmh) + 0.37}}
		d := f.Format(snap)

		expected := util.Round(float64(d.SpeedRoundedKMH) * kmToMiles)
		diff := expected - d.SpeedRoundedMPH
		assert.LessOrEqual(t, diff, 1, "kmh=%d", kmh)
		assert.GreaterOrEqual(t, diff, -1, "kmh=%d", kmh)
	}
}

func TestFormat_Speed(t *testing.T) {
	f := newTestFormatter(locale.English)

	d := f.Format(&core.Snapshot{Truck: core.Truck{Speed: -49.6, CruiseControlSpeed: 80}})
	assert.Equal(t, 50, d.SpeedRoundedKMH)
	assert.Equal(t, 31, d.SpeedRoundedMPH)
	assert.InDelta(t, 49.6, d.SpeedKMH, 1e-9)
	assert.Equal(t, 80, d.CruiseControlKMH)
	assert.Equal(t, 50, d.CruiseControlMPH)
}

func TestFormat_Shifter(t *testing.T) {
	tests := []struct {
		name    string
		snap    core.Snapshot
		want    string
		hShifts bool
	}{
		{"automatic", core.Snapshot{Shifter: core.Shifter{Type: "automatic"}}, "A", false},
		{"manual", core.Snapshot{Shifter: core.Shifter{Type: "manual"}}, "M", false},
		{"arcade", core.Snapshot{Shifter: core.Shifter{Type: "arcade"}}, "", true},
		{"hshifter", core.Snapshot{Shifter: core.Shifter{Type: "hshifter"}}, "", true},
		{"truck fallback", core.Snapshot{Truck: core.Truck{ShifterType: "manual"}}, "M", false},
	}

	f := newTestFormatter(locale.English)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.Format(&tt.snap)
			assert.Equal(t, tt.want, d.ShifterType)
			assert.Equal(t, tt.hShifts, d.HShifterOn)
		})
	}
}

func TestFormat_Wear(t *testing.T) {
	d := newTestFormatter(locale.English).Format(sampleSnapshot())

	assert.Equal(t, 10, d.WearEngine)
	assert.Equal(t, 20, d.WearTransmission)
	assert.Equal(t, 30, d.WearCabin)
	assert.Equal(t, 40, d.WearChassis)
	assert.Equal(t, 50, d.WearWheels)
	assert.Equal(t, "30%", d.TruckWear)

	require.NotNil(t, d.TrailerWearBody)
	require.NotNil(t, d.TrailerWearChassis)
	require.NotNil(t, d.TrailerWearWheels)
	assert.Equal(t, 20, *d.TrailerWearBody)
	assert.Equal(t, 30, *d.TrailerWearChassis)
	assert.Equal(t, 40, *d.TrailerWearWheels)
	assert.Equal(t, "30%", d.TrailerWear)
}

func TestFormat_TrailerWearPolicy(t *testing.T) {
	f := newTestFormatter(locale.English)

	t.Run("no present trailers", func(t *testing.T) {
		snap := sampleSnapshot()
		snap.Trailers = core.Trailers{{Present: false, WearBody: 0.9}}

		d := f.Format(snap)
		assert.Nil(t, d.TrailerWearBody)
		assert.Nil(t, d.TrailerWearChassis)
		assert.Nil(t, d.TrailerWearWheels)
		assert.Empty(t, d.TrailerWear)
	})

	t.Run("detached keeps categories", func(t *testing.T) {
		snap := sampleSnapshot()
		snap.Trailer.Attached = false

		d := f.Format(snap)
		require.NotNil(t, d.TrailerWearBody)
		assert.Equal(t, 20, *d.TrailerWearBody)
		assert.Empty(t, d.TrailerWear)
	})

	t.Run("slots beyond max count ignored", func(t *testing.T) {
		snap := sampleSnapshot()
		snap.Game.MaxTrailerCount = 1
		snap.Trailers = append(snap.Trailers, core.Trailer{Present: true, WearBody: 1})

		d := f.Format(snap)
		require.NotNil(t, d.TrailerWearBody)
		assert.Equal(t, 10, *d.TrailerWearBody)
		assert.Equal(t, "20%", d.TrailerWear)
	})

	t.Run("max count larger than list", func(t *testing.T) {
		snap := sampleSnapshot()
		snap.Game.MaxTrailerCount = 10

		d := f.Format(snap)
		require.NotNil(t, d.TrailerWearBody)
		assert.Equal(t, 20, *d.TrailerWearBody)
	})
}

func TestFormat_ElectricGating(t *testing.T) {
	snap := sampleSnapshot()
	snap.Truck.ElectricOn = false

	d := newTestFormatter(locale.English).Format(snap)

	assert.Zero(t, d.Fuel)
	assert.Zero(t, d.AirPressure)
	assert.Zero(t, d.OilPressure)
	assert.Zero(t, d.WaterTemperature)
	assert.False(t, d.ElectricOn)
	assert.Equal(t, "Volvo FH16", d.OdometerKMH)
	assert.Equal(t, "Volvo FH16", d.OdometerMPH)

	snap.Truck.ElectricOn = true
	d = newTestFormatter(locale.English).Format(snap)
	assert.Equal(t, 512.5, d.Fuel)
	assert.Equal(t, 120.0, d.AirPressure)
	assert.Equal(t, 60.0, d.OilPressure)
	assert.Equal(t, 85.0, d.WaterTemperature)
}

func TestFormat_GaugeMaxima(t *testing.T) {
	d := newTestFormatter(locale.English).Format(sampleSnapshot())

	assert.Equal(t, 163, d.AirPressureMaxValue)
	assert.Equal(t, 150, d.WaterTemperatureMaxValue)
}

func TestFormat_Indicators(t *testing.T) {
	snap := sampleSnapshot()
	snap.Truck.BlinkerLeftActive = true
	snap.Truck.LightsBeamLowOn = true

	d := newTestFormatter(locale.English).Format(snap)
	assert.True(t, d.BlinkerLeftActive)
	assert.False(t, d.BlinkerRightActive)
	assert.True(t, d.LightsBeamLowOn)
	assert.True(t, d.RetarderOn)

	snap.Truck.RetarderBrake = 0
	d = newTestFormatter(locale.English).Format(snap)
	assert.False(t, d.RetarderOn)
}

func TestFormat_AirPressureWarning(t *testing.T) {
	tests := []struct {
		name      string
		warning   bool
		emergency bool
		want      bool
	}{
		{"off", false, false, false},
		{"warning", true, false, true},
		{"emergency only", false, true, true},
		{"both", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := sampleSnapshot()
			snap.Truck.AirPressureWarningOn = tt.warning
			snap.Truck.AirPressureEmergencyOn = tt.emergency

			d := newTestFormatter(locale.English).Format(snap)
			assert.Equal(t, tt.want, d.AirPressureWarningOn)
		})
	}
}

func TestFormat_Income(t *testing.T) {
	tests := []struct {
		name   string
		locale locale.Locale
		game   string
		income float64
		want   string
	}{
		{"ats en", locale.English, core.GameATS, 5000, "$ 5,000.-"},
		{"ats zero", locale.English, core.GameATS, 0, ""},
		{"ats de", locale.German, core.GameATS, 5000, "$ 5.000,-"},
		{"ets en", locale.English, core.GameETS, 12500, "€ 12,500.-"},
		{"ets de", locale.German, core.GameETS, 12500, "12.500,- €"},
		{"ets fr", locale.French, core.GameETS, 12500, "12 500,- €"},
		{"ets nl", locale.Dutch, core.GameETS, 12500, "€ 12.500,-"},
		{"ets zero", locale.German, core.GameETS, 0, ""},
		{"fraction truncated", locale.English, core.GameETS, 999.9, "€ 999.-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &core.Snapshot{
				Game: core.Game{GameName: tt.game},
				Job:  core.Job{Income: tt.income},
			}
			assert.Equal(t, tt.want, newTestFormatter(tt.locale).Format(snap).JobIncome)
		})
	}
}

// TestFormat_JobAcrossLocales pins remaining time, income and cargo mass
// for one job in every language, for both games.
func TestFormat_JobAcrossLocales(t *testing.T) {
	tests := []struct {
		locale    locale.Locale
		remains   string
		incomeETS string
		incomeATS string
		massETS   string
		massATS   string
	}{
		{locale.German, "27 Std. 15 Min.", "1.234.567,- €", "$ 1.234.567,-", "25 t", "55.887 lb"},
		{locale.French, "27 h 15 min", "1 234 567,- €", "$ 1 234 567,-", "25 t", "55 887 lb"},
		{locale.Italian, "27 h 15 min", "€ 1.234.567,-", "$ 1.234.567,-", "25 t", "55.887 lb"},
		{locale.Polish, "27 h 15 min", "1 234 567,- €", "$ 1 234 567,-", "25 t", "55 887 lb"},
		{locale.Czech, "27 h 15 min", "1 234 567,- €", "$ 1 234 567,-", "25 t", "55 887 lb"},
		{locale.Norwegian, "27 t 15 min", "€ 1 234 567,-", "$ 1 234 567,-", "25 t", "55 887 lb"},
		{locale.Swedish, "27 t 15 min", "1.234.567,- €", "$ 1.234.567,-", "25 t", "55.887 lb"},
		{locale.Danish, "27 t 15 min", "€ 1.234.567,-", "$ 1.234.567,-", "25 t", "55.887 lb"},
		{locale.Turkish, "27 sa 15 dk", "1.234.567,- €", "$ 1.234.567,-", "25 t", "55.887 lb"},
		{locale.Dutch, "27 u 15 min", "€ 1.234.567,-", "$ 1.234.567,-", "25 t", "55.887 lb"},
		{locale.PortugueseBR, "27 hr 15 min", "€ 1.234.567,-", "$ 1.234.567,-", "25 t", "55.887 lb"},
		{locale.Portuguese, "27 h 15 min", "1.234.567,- €", "$ 1.234.567,-", "25 t", "55.887 lb"},
		{locale.ChineseTW, "27 時 15 分", "€ 1,234,567.-", "$ 1,234,567.-", "25 噸", "55,887 磅"},
		{locale.Chinese, "27 时 15 分", "€ 1,234,567.-", "$ 1,234,567.-", "25 吨", "55,887 磅"},
		{locale.English, "27 h 15 min", "€ 1,234,567.-", "$ 1,234,567.-", "25 t", "55,887 lb"},
	}
	require.Len(t, tests, len(locale.All()))

	for _, tt := range tests {
		t.Run(tt.locale.String(), func(t *testing.T) {
			f := newTestFormatter(tt.locale)
			snap := sampleSnapshot()
			snap.Job.Income = 1234567

			d := f.Format(snap)
			assert.Equal(t, tt.remains, d.JobRemains)
			assert.Equal(t, tt.incomeETS, d.JobIncome)
			assert.Equal(t, tt.massETS, d.CargoMass)

			snap.Game.GameName = core.GameATS
			d = f.Format(snap)
			assert.Equal(t, tt.remains, d.JobRemains)
			assert.Equal(t, tt.incomeATS, d.JobIncome)
			assert.Equal(t, tt.massATS, d.CargoMass)
		})
	}
}

func TestFormat_UnknownLocaleFallsBackToEnglish(t *testing.T) {
	d := newTestFormatter(locale.Resolve("xx")).Format(sampleSnapshot())

	assert.Equal(t, "Length Units: Kilometres", d.Kilometres)
	assert.Equal(t, "Current Job", d.JobTitle)
}

func TestFormat_Job(t *testing.T) {
	f := newTestFormatter(locale.English)
	snap := sampleSnapshot()

	d := f.Format(snap)
	assert.Equal(t, "25 t", d.CargoMass)
	assert.Equal(t, "Apples (25 t)", d.JobCargo)
	assert.Equal(t, "Berlin - Tradeaux", d.JobOrigin)
	assert.Equal(t, "Praha", d.JobDestination)
	assert.Equal(t, "27 h 15 min", d.JobRemains)
	assert.Equal(t, "Current Job", d.JobTitle)

	snap.Job.SpecialTransport = true
	snap.Job.JobMarket = core.JobMarketExternalContracts
	snap.Cargo.Cargo = ""
	snap.Job.SourceCity = ""
	d = f.Format(snap)
	assert.Equal(t, "Special Transport", d.JobTitle)
	assert.Empty(t, d.JobRemains)
	assert.Empty(t, d.JobCargo)
	assert.Empty(t, d.JobOrigin)
}

func TestFormat_CargoMassATS(t *testing.T) {
	snap := &core.Snapshot{
		Game:  core.Game{GameName: core.GameATS},
		Cargo: core.Cargo{Cargo: "Lumber", Mass: 20000},
	}

	d := newTestFormatter(locale.English).Format(snap)
	assert.Equal(t, "44,092 lb", d.CargoMass)
	assert.Equal(t, " _truckBrandATS ", d.ATSClass)
	assert.True(t, d.GameATS)
}

func TestFormat_Distance(t *testing.T) {
	tests := []struct {
		name    string
		metres  float64
		wantKMH string
		wantMPH string
	}{
		{"long", 12345, "12 km, 2 h 30 min", "7 mi, 2 h 30 min"},
		{"between thresholds", 1500, "1 km, 2 h 30 min", "1,640 yd, 2 h 30 min"},
		{"short", 500, "500 m, 2 h 30 min", "546 yd, 2 h 30 min"},
		{"none", 0, "", ""},
	}

	f := newTestFormatter(locale.English)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := sampleSnapshot()
			snap.Navigation.EstimatedDistance = tt.metres

			d := f.Format(snap)
			assert.Equal(t, tt.wantKMH, d.EstimatedDistanceKMH)
			assert.Equal(t, tt.wantMPH, d.EstimatedDistanceMPH)
		})
	}
}

func TestFormat_NavigationAndClock(t *testing.T) {
	d := newTestFormatter(locale.German).Format(sampleSnapshot())

	assert.Equal(t, "2 Std. 30 Min.", d.EstimatedTime)
	assert.Equal(t, "9 Std. 45 Min.", d.NextRestStopTime)
	assert.Equal(t, "14:07", d.Time)
	assert.Equal(t, "1.234.567 km", d.OdometerKMH)
	assert.Equal(t, "767.124 mi", d.OdometerMPH)
}

func TestFormat_ChineseUnits(t *testing.T) {
	d := newTestFormatter(locale.Chinese).Format(sampleSnapshot())

	assert.Equal(t, "12 公里, 2 时 30 分", d.EstimatedDistanceKMH)
	assert.Equal(t, "25 吨", d.CargoMass)
}

func TestFormat_SpeedLimit(t *testing.T) {
	f := newTestFormatter(locale.English)

	d := f.Format(&core.Snapshot{Navigation: core.Navigation{SpeedLimit: 80}})
	require.True(t, d.SpeedLimit)
	require.NotNil(t, d.SpeedLimitKMH)
	require.NotNil(t, d.SpeedLimitMPH)
	assert.Equal(t, 80, *d.SpeedLimitKMH)
	assert.Equal(t, 50, *d.SpeedLimitMPH)
	assert.Equal(t, FontHighwayGothicExpanded, d.SpeedLimitFontKMH)

	d = f.Format(&core.Snapshot{Navigation: core.Navigation{SpeedLimit: 130}})
	assert.Equal(t, FontHighwayGothic, d.SpeedLimitFontKMH)
	assert.Equal(t, FontHighwayGothicExpanded, d.SpeedLimitFontMPH)

	d = f.Format(&core.Snapshot{})
	assert.False(t, d.SpeedLimit)
	assert.Nil(t, d.SpeedLimitKMH)
	assert.Nil(t, d.SpeedLimitMPH)
}

func TestSpeedLimitFont(t *testing.T) {
	intp := func(v int) *int { return &v }

	tests := []struct {
		limit *int
		want  string
	}{
		{nil, FontHighwayGothicExpanded},
		{intp(50), FontHighwayGothicExpanded},
		{intp(99), FontHighwayGothicExpanded},
		{intp(100), FontHighwayGothic},
		{intp(110), FontHighwayGothic},
		{intp(111), FontHighwayGothicExpanded},
		{intp(120), FontHighwayGothic},
		{intp(121), FontHighwayGothicExpanded},
		{intp(171), FontHighwayGothicExpanded},
		{intp(181), FontHighwayGothic},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SpeedLimitFont(tt.limit))
	}
}
