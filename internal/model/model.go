// Package model holds the GORM models persisted by the database backends.
package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// DatabaseModels lists every table migrated by database.Manager.Setup.
var DatabaseModels = []any{
	&Session{},
	&Frame{},
	&Performance{},
}

// Session is one dashboard run against a game.
type Session struct {
	ID         string       `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt  time.Time    `json:"createdAt"`
	StartTime  time.Time    `json:"startTime" gorm:"index:idx_session_start_time"`
	EndTime    sql.NullTime `json:"endTime"`
	Game       string       `json:"game" gorm:"size:8"`
	Locale     string       `json:"locale" gorm:"size:16"`
	TruckMake  string       `json:"truckMake" gorm:"size:64"`
	Source     string       `json:"source" gorm:"size:16"`
	FrameCount uint64       `json:"frameCount"`
}

func (*Session) TableName() string {
	return "sessions"
}

// Frame is one formatted tick. The hot numeric values get their own columns
// so they can be queried; everything else lives in the JSON columns.
type Frame struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	Time          time.Time      `json:"time" gorm:"index:idx_frame_time"`
	SessionID     string         `json:"sessionId" gorm:"size:36;index:idx_frame_session_id"`
	Session       Session        `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Seq           uint64         `json:"seq"`
	Game          string         `json:"game" gorm:"size:8"`
	Locale        string         `json:"locale" gorm:"size:16"`
	SpeedKMH      float64        `json:"speedKmh"`
	SpeedLimitKMH sql.NullInt32  `json:"speedLimitKmh"`
	EngineRPM     float64        `json:"engineRpm"`
	Fuel          float64        `json:"fuel"`
	Odometer      float64        `json:"odometer"`
	ElectricOn    bool           `json:"electricOn"`
	Derived       datatypes.JSON `json:"derived"`
	Commands      datatypes.JSON `json:"commands"`
}

func (*Frame) TableName() string {
	return "frames"
}

// Performance is a periodic sample of pipeline health written by the monitor.
type Performance struct {
	ID             uint         `json:"id" gorm:"primarykey"`
	Time           time.Time    `json:"time" gorm:"index:idx_performance_time"`
	SessionID      string       `json:"sessionId" gorm:"size:36;index:idx_performance_session_id"`
	FramesProduced uint64       `json:"framesProduced"`
	SourceErrors   uint64       `json:"sourceErrors"`
	DispatchErrors uint64       `json:"dispatchErrors"`
	LastTickMs     float32      `json:"lastTickMs"`
	QueueLengths   QueueLengths `json:"queueLengths" gorm:"embedded;embeddedPrefix:queue_"`
}

func (*Performance) TableName() string {
	return "performances"
}

// QueueLengths holds the dispatcher queue length of each backend.
type QueueLengths struct {
	Memory    int `json:"memory"`
	WebSocket int `json:"websocket"`
	SQLite    int `json:"sqlite"`
	Postgres  int `json:"postgres"`
	Influx    int `json:"influx"`
}
