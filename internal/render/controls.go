package render

import (
	"sync"
	"time"

	"github.com/ets2dash/tdashboard/pkg/core"
)

// ControlsConfig sizes the interactive element groups of the skin.
type ControlsConfig struct {
	SwitchButtons int
	BigDials      int
	DialNotices   int
	SpeedNotices  int
	NoticeDelay   time.Duration
	TipsDelay     time.Duration
}

// DefaultControlsConfig matches the stock skin layout.
func DefaultControlsConfig() ControlsConfig {
	return ControlsConfig{
		SwitchButtons: 2,
		BigDials:      2,
		DialNotices:   2,
		SpeedNotices:  2,
		NoticeDelay:   3 * time.Second,
		TipsDelay:     6 * time.Second,
	}
}

// speedToggled are the regions that swap between km/h and mph.
var speedToggled = []struct{ kmh, mph string }{
	{"._speedRoundedKMH", "._speedRoundedMPH"},
	{"._speedRoundedSymbolKMH", "._speedRoundedSymbolMPH"},
	{"._cruiseControlKMH", "._cruiseControlMPH"},
	{"._odometerKMH", "._odometerMPH"},
	{"._estimatedDistanceKMH", "._estimatedDistanceMPH"},
	{"._speedLimitKMH", "._speedLimitMPH"},
	{"._dialScaleKMH", "._dialScaleMPH"},
	{"._speedKMH", "._speedMPH"},
}

// Controls holds the user-driven display state: which big dial is in front,
// which speed unit is visible and the pending notice hides.
// Delayed commands are delivered through the emit callback.
type Controls struct {
	mu   sync.Mutex
	cfg  ControlsConfig
	emit func([]core.Command)

	button, dial, dialNotice, speedNotice int
	mph                                   bool

	dialTimer, speedTimer, tipsTimer *time.Timer
}

// NewControls creates the control state. emit may be nil, in which case
// delayed hides are dropped.
func NewControls(cfg ControlsConfig, emit func([]core.Command)) *Controls {
	if emit == nil {
		emit = func([]core.Command) {}
	}
	return &Controls{cfg: cfg, emit: emit}
}

// Start schedules the tips overlay to hide.
func (c *Controls) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tipsTimer = c.replace(c.tipsTimer, c.cfg.TipsDelay, []core.Command{hide("._tips"), hide("._closeTips")})
}

// SwitchDial rotates the big dial in front and flashes the matching notice.
func (c *Controls) SwitchDial() []core.Command {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.button = next(c.button, c.cfg.SwitchButtons)
	c.dial = next(c.dial, c.cfg.BigDials)
	c.dialNotice = next(c.dialNotice, c.cfg.DialNotices)

	cmds := []core.Command{
		style("._switchButton", "left", "1544px"),
		styleAt("._switchButton", c.button, "left", "154px"),
		style("._bigDial", "left", "1390px"),
		styleAt("._bigDial", c.dial, "left", "0px"),
		hide("._noticeDial"),
		showAt("._noticeDial", c.dialNotice),
	}
	c.dialTimer = c.replace(c.dialTimer, c.cfg.NoticeDelay, []core.Command{hide("._noticeDial")})
	return cmds
}

// SwitchSpeed swaps the visible speed unit and flashes the matching notice.
func (c *Controls) SwitchSpeed() []core.Command {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mph = !c.mph
	cmds := make([]core.Command, 0, len(speedToggled)*2+2)
	for _, pair := range speedToggled {
		if c.mph {
			cmds = append(cmds, hide(pair.kmh), show(pair.mph))
		} else {
			cmds = append(cmds, show(pair.kmh), hide(pair.mph))
		}
	}

	c.speedNotice = next(c.speedNotice, c.cfg.SpeedNotices)
	cmds = append(cmds, hide("._noticeSpeed"), showAt("._noticeSpeed", c.speedNotice))
	c.speedTimer = c.replace(c.speedTimer, c.cfg.NoticeDelay, []core.Command{hide("._noticeSpeed")})
	return cmds
}

// CloseTips hides the tips overlay immediately.
func (c *Controls) CloseTips() []core.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tipsTimer != nil {
		c.tipsTimer.Stop()
		c.tipsTimer = nil
	}
	return []core.Command{hide("._tips"), hide("._closeTips")}
}

// MPH reports whether the mph regions are currently visible.
func (c *Controls) MPH() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mph
}

// Stop cancels every pending delayed hide.
func (c *Controls) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range []*time.Timer{c.dialTimer, c.speedTimer, c.tipsTimer} {
		if t != nil {
			t.Stop()
		}
	}
	c.dialTimer, c.speedTimer, c.tipsTimer = nil, nil, nil
}

// replace stops the pending timer and schedules cmds after delay.
// Caller holds c.mu.
func (c *Controls) replace(t *time.Timer, delay time.Duration, cmds []core.Command) *time.Timer {
	if t != nil {
		t.Stop()
	}
	emit := c.emit
	return time.AfterFunc(delay, func() { emit(cmds) })
}

func next(i, n int) int {
	if n <= 0 {
		return 0
	}
	return (i + 1) % n
}
