package worker

import (
	"fmt"

	"github.com/ets2dash/tdashboard/internal/dispatcher"
	"github.com/ets2dash/tdashboard/internal/storage"
)

// RegisterHandlers registers one handler per backend with the dispatcher.
// All event kinds of a backend share one queue so they stay ordered.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher, bufferSize int) {
	for _, nb := range m.backends {
		opts := []dispatcher.Option{dispatcher.Logged()}
		if bufferSize > 0 {
			opts = append(opts, dispatcher.Buffered(bufferSize))
		}
		d.Register(nb.name, handle(nb.backend), opts...)
	}
}

func handle(b storage.Backend) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		switch e.Kind {
		case dispatcher.KindStartSession:
			if e.Session == nil {
				return nil, fmt.Errorf("start_session without session")
			}
			return nil, b.StartSession(e.Session)
		case dispatcher.KindEndSession:
			return nil, b.EndSession(e.Session)
		case dispatcher.KindFrame:
			if e.Frame == nil {
				return nil, fmt.Errorf("frame event without frame")
			}
			return nil, b.RecordFrame(e.Frame)
		default:
			return nil, fmt.Errorf("unknown event kind: %s", e.Kind)
		}
	}
}
