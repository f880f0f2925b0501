// pkg/core/frame.go
package core

import "time"

// CommandKind enumerates the operations a presentation sink applies to a region.
type CommandKind string

const (
	CommandText  CommandKind = "text"
	CommandStyle CommandKind = "style"
	CommandClass CommandKind = "class"
	CommandShow  CommandKind = "show"
	CommandHide  CommandKind = "hide"

	// CommandToggle adds the class in Property when Value is "true" and
	// removes it otherwise.
	CommandToggle CommandKind = "toggle"
	// CommandValue sets the numeric reading of a gauge region.
	CommandValue CommandKind = "value"
	// CommandAttr sets the attribute in Property, e.g. a gauge's data-max.
	CommandAttr CommandKind = "attr"
)

// Command is a single instruction for a named visual region.
// Selector uses CSS selector syntax, e.g. "._jobTitle". A non-nil Index
// restricts the command to that element of the matched set.
type Command struct {
	Kind     CommandKind `json:"kind"`
	Selector string      `json:"selector"`
	Index    *int        `json:"index,omitempty"`
	Property string      `json:"property,omitempty"`
	Value    string      `json:"value,omitempty"`
}

// Session describes one continuous run of the dashboard against a game.
type Session struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime,omitzero"`
	Game      string    `json:"game"`
	Locale    string    `json:"locale"`
	TruckMake string    `json:"truckMake"`
	Source    string    `json:"source"`
}

// Frame is the output of one tick: the formatted fields together with
// the render commands and the snapshot they were built from.
type Frame struct {
	Seq       uint64    `json:"seq"`
	Time      time.Time `json:"time"`
	SessionID string    `json:"sessionId"`
	Locale    string    `json:"locale"`
	Game      string    `json:"game"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
	Derived   Derived   `json:"derived"`
	Commands  []Command `json:"commands,omitempty"`
}
