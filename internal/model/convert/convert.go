// Package convert maps core types to the GORM models and back.
package convert

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/ets2dash/tdashboard/internal/model"
	"github.com/ets2dash/tdashboard/pkg/core"
)

// SessionToModel converts a core session with its frame count.
func SessionToModel(s core.Session, frames uint64) model.Session {
	m := model.Session{
		ID:         s.ID,
		StartTime:  s.StartTime,
		Game:       s.Game,
		Locale:     s.Locale,
		TruckMake:  s.TruckMake,
		Source:     s.Source,
		FrameCount: frames,
	}
	if !s.EndTime.IsZero() {
		m.EndTime = sql.NullTime{Time: s.EndTime, Valid: true}
	}
	return m
}

// SessionFromModel converts a stored session back to its core form.
func SessionFromModel(m model.Session) core.Session {
	s := core.Session{
		ID:        m.ID,
		StartTime: m.StartTime,
		Game:      m.Game,
		Locale:    m.Locale,
		TruckMake: m.TruckMake,
		Source:    m.Source,
	}
	if m.EndTime.Valid {
		s.EndTime = m.EndTime.Time
	}
	return s
}

// FrameToModel flattens a frame into a row. The snapshot itself is not stored.
func FrameToModel(f core.Frame) (model.Frame, error) {
	derived, err := toJSON(f.Derived)
	if err != nil {
		return model.Frame{}, fmt.Errorf("encode derived: %w", err)
	}
	commands := datatypes.JSON("[]")
	if len(f.Commands) > 0 {
		if commands, err = toJSON(f.Commands); err != nil {
			return model.Frame{}, fmt.Errorf("encode commands: %w", err)
		}
	}

	m := model.Frame{
		Time:       f.Time,
		SessionID:  f.SessionID,
		Seq:        f.Seq,
		Game:       f.Game,
		Locale:     f.Locale,
		SpeedKMH:   f.Derived.SpeedKMH,
		Fuel:       f.Derived.Fuel,
		ElectricOn: f.Derived.ElectricOn,
		Derived:    derived,
		Commands:   commands,
	}
	if f.Derived.SpeedLimitKMH != nil {
		m.SpeedLimitKMH = sql.NullInt32{Int32: int32(*f.Derived.SpeedLimitKMH), Valid: true}
	}
	if f.Snapshot != nil {
		m.EngineRPM = f.Snapshot.Truck.EngineRpm
		m.Odometer = f.Snapshot.Truck.Odometer
	}
	return m, nil
}

// FrameFromModel restores the frame stored in m, without its snapshot.
func FrameFromModel(m model.Frame) (core.Frame, error) {
	f := core.Frame{
		Seq:       m.Seq,
		Time:      m.Time,
		SessionID: m.SessionID,
		Locale:    m.Locale,
		Game:      m.Game,
	}
	if len(m.Derived) > 0 {
		if err := json.Unmarshal(m.Derived, &f.Derived); err != nil {
			return core.Frame{}, fmt.Errorf("decode derived: %w", err)
		}
	}
	if len(m.Commands) > 0 {
		if err := json.Unmarshal(m.Commands, &f.Commands); err != nil {
			return core.Frame{}, fmt.Errorf("decode commands: %w", err)
		}
	}
	return f, nil
}

func toJSON(v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
