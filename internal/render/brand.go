package render

import "strings"

// brands maps telemetry truck ids to their logo class.
// "intnational" is the id the game reports for International trucks.
var brands = map[string]string{
	"renault":      "_Renault",
	"scania":       "_Scania",
	"volvo":        "_Volvo",
	"daf":          "_Daf",
	"iveco":        "_Iveco",
	"man":          "_Man",
	"mercedes":     "_MercedesBenz",
	"peterbilt":    "_Peterbilt",
	"kenworth":     "_Kenworth",
	"intnational":  "_International",
	"freightliner": "_Freightliner",
	"mack":         "_Mack",
	"westernstar":  "_WesternStar",
	"tesla":        "_Tesla",
	"ford":         "_Ford",
	"sisu":         "_Sisu",
	"kamaz":        "_Kamaz",
	"hino":         "_Hino",
}

// BrandClass returns the full class attribute for the brand logo region.
// Unknown ids get the generic logo, ATS-flavoured when atsClass says so.
func BrandClass(truckID, atsClass string) string {
	if b, ok := brands[truckID]; ok {
		return "_truckBrand " + b
	}
	return strings.TrimSpace("_truckBrand" + atsClass)
}
