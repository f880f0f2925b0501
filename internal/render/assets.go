package render

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/ets2dash/tdashboard/pkg/core"
)

// Reference canvas the skin is laid out on.
const (
	CanvasWidth  = 2048
	CanvasHeight = 1152
)

// PreloadImages lists the skin images fetched before first paint, in load order.
var PreloadImages = []string{
	"images/_bigDial.png",
	"images/_smallDial.png",
	"images/_speedLimit.png",
	"images/_symbol.png",
	"images/_tipsTap.png",
	"images/_truckBrand.png",
	"images/_truckBrandDaf.png",
	"images/_truckBrandFreightliner.png",
	"images/_truckBrandInternational.png",
	"images/_truckBrandIveco.png",
	"images/_truckBrandKenworth.png",
	"images/_truckBrandMack.png",
	"images/_truckBrandMan.png",
	"images/_truckBrandMercedesBenz.png",
	"images/_truckBrandPeterbilt.png",
	"images/_truckBrandRenault.png",
	"images/_truckBrandScania.png",
	"images/_truckBrandTesla.png",
	"images/_truckBrandVolvo.png",
	"images/_truckBrandWesternStar.png",
	"images/_truckBrandFord.png",
	"images/_truckBrandSisu.png",
	"images/_truckBrandKamaz.png",
	"images/_truckBrandHino.png",
}

// MissingAssets returns the preload images absent from fsys, in preload order.
func MissingAssets(fsys fs.FS) ([]string, error) {
	var missing []string
	for _, name := range PreloadImages {
		_, err := fs.Stat(fsys, name)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist):
			missing = append(missing, name)
		default:
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
	}
	return missing, nil
}

// Viewport is the scaled dashboard geometry for a window.
type Viewport struct {
	Scale  float64
	Width  float64
	Height float64
}

// Scale fits the reference canvas into a window of the given size.
func Scale(width, height float64) Viewport {
	ratio := min(height/CanvasHeight, width/CanvasWidth)
	if ratio <= 0 {
		return Viewport{Scale: 1, Width: CanvasWidth, Height: CanvasHeight}
	}
	return Viewport{
		Scale:  ratio,
		Width:  width / ratio,
		Height: height / ratio,
	}
}

// Commands applies the viewport: the page is scaled and the dashboard
// stretched to fill the window at that scale.
func (v Viewport) Commands() []core.Command {
	return []core.Command{
		style("body", "transform", "scale("+strconv.FormatFloat(v.Scale, 'f', -1, 64)+")"),
		style(".dashboard", "width", px(v.Width)),
		style(".dashboard", "height", px(v.Height)),
	}
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
