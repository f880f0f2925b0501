// Package influxstorage implements the storage.Backend interface on InfluxDB.
// Every frame becomes one truck_state point; session boundaries become
// session_event points.
package influxstorage

import (
	"context"
	"fmt"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/ets2dash/tdashboard/internal/config"
	"github.com/ets2dash/tdashboard/internal/influx"
	"github.com/ets2dash/tdashboard/pkg/core"
)

const (
	MeasurementTruckState   = "truck_state"
	MeasurementSessionEvent = "session_event"

	connectTimeout = 10 * time.Second
)

// Backend writes frames to InfluxDB through an influx.Manager.
type Backend struct {
	mgr *influx.Manager
}

// New creates the backend. When the server is unreachable at Init, points go
// to the gzipped line protocol file at backupPath.
func New(cfg config.InfluxConfig, backupPath string, logger zerolog.Logger) *Backend {
	return &Backend{mgr: influx.NewManager(logger, cfg, backupPath)}
}

// Manager exposes the underlying manager, e.g. for the monitor.
func (b *Backend) Manager() *influx.Manager {
	return b.mgr
}

func (b *Backend) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := b.mgr.Connect(ctx); err != nil {
		return fmt.Errorf("influx backend: %w", err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.mgr.Close()
}

func (b *Backend) StartSession(s *core.Session) error {
	return b.mgr.WritePoint(sessionPoint(s, "start", s.StartTime))
}

func (b *Backend) EndSession(s *core.Session) error {
	if s == nil {
		return nil
	}
	end := s.EndTime
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if err := b.mgr.WritePoint(sessionPoint(s, "end", end)); err != nil {
		return err
	}
	return b.mgr.Flush()
}

func (b *Backend) RecordFrame(f *core.Frame) error {
	return b.mgr.WritePoint(FramePoint(f))
}

func sessionPoint(s *core.Session, state string, ts time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPoint(MeasurementSessionEvent,
		map[string]string{
			"session": s.ID,
			"game":    s.Game,
			"locale":  s.Locale,
		},
		map[string]any{
			"state":      state,
			"truck_make": s.TruckMake,
			"source":     s.Source,
		},
		ts)
}

// FramePoint builds the truck_state point for f.
func FramePoint(f *core.Frame) *influxdb2_write.Point {
	d := f.Derived
	fields := map[string]any{
		"speed_kmh":         d.SpeedKMH,
		"fuel":              d.Fuel,
		"air_pressure":      d.AirPressure,
		"oil_pressure":      d.OilPressure,
		"water_temperature": d.WaterTemperature,
		"wear_engine":       d.WearEngine,
		"wear_transmission": d.WearTransmission,
		"wear_cabin":        d.WearCabin,
		"wear_chassis":      d.WearChassis,
		"wear_wheels":       d.WearWheels,
		"electric_on":       d.ElectricOn,
		"cruise_control_on": d.CruiseControlOn,
	}
	if d.SpeedLimitKMH != nil {
		fields["speed_limit_kmh"] = *d.SpeedLimitKMH
	}
	if f.Snapshot != nil {
		fields["engine_rpm"] = f.Snapshot.Truck.EngineRpm
		fields["odometer"] = f.Snapshot.Truck.Odometer
	}

	return influxdb2_write.NewPoint(MeasurementTruckState,
		map[string]string{
			"session": f.SessionID,
			"game":    f.Game,
			"locale":  f.Locale,
		},
		fields,
		f.Time)
}
