package storage

import "github.com/ets2dash/tdashboard/pkg/core"

// Backend names accepted in storage.backends.
const (
	NameMemory    = "memory"
	NameWebSocket = "websocket"
	NameSQLite    = "sqlite"
	NamePostgres  = "postgres"
	NameInflux    = "influx"
)

// Backend is the interface all storage implementations must satisfy.
// Calls for one backend are serialized by the dispatcher.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *core.Session) error
	EndSession(s *core.Session) error

	// Frame recording
	RecordFrame(f *core.Frame) error
}

// Exporter is an optional interface for backends that write a file when a
// session ends.
type Exporter interface {
	ExportedFilePath() string
}
