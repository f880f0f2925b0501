package locale

import "github.com/ets2dash/tdashboard/internal/util"

// Strings is the fixed set of words and formatting choices for one locale.
type Strings struct {
	SpeedometerL string
	SpeedometerR string
	Kilometres   string
	Miles        string

	JobSpecial string
	JobNormal  string

	Grouping util.Grouping

	// CurrencyAfter places the euro sign after the amount ("1.000,- €").
	CurrencyAfter bool
	// Marker terminates whole-currency amounts, ",-" or ".-".
	Marker string

	HourWord   string
	MinuteWord string

	Pound     string
	Ton       string
	Kilometre string
	Metre     string
	Mile      string
	Yard      string
}

const (
	englishSpeedometerL = "Speedometer (L) Tachometer (R)"
	englishSpeedometerR = "Tachometer (L) Speedometer (R)"
)

// latin unit words shared by every non-Chinese locale.
var latinUnits = Strings{
	Pound:     "lb",
	Ton:       "t",
	Kilometre: "km",
	Metre:     "m",
	Mile:      "mi",
	Yard:      "yd",
}

func withLatinUnits(s Strings) Strings {
	s.Pound = latinUnits.Pound
	s.Ton = latinUnits.Ton
	s.Kilometre = latinUnits.Kilometre
	s.Metre = latinUnits.Metre
	s.Mile = latinUnits.Mile
	s.Yard = latinUnits.Yard
	return s
}

var table = [numLocales]Strings{
	German: withLatinUnits(Strings{
		SpeedometerL:  englishSpeedometerL,
		SpeedometerR:  englishSpeedometerR,
		Kilometres:    "Längeneinheiten: Kilometer",
		Miles:         "Längeneinheiten: Meilen",
		JobSpecial:    "Spezialtransport",
		JobNormal:     "Akt. Auftrag",
		Grouping:      util.GroupPeriod,
		CurrencyAfter: true,
		Marker:        ",-",
		HourWord:      "Std.",
		MinuteWord:    "Min.",
	}),
	French: withLatinUnits(Strings{
		SpeedometerL:  englishSpeedometerL,
		SpeedometerR:  englishSpeedometerR,
		Kilometres:    "Unités de distance : Kilomètres",
		Miles:         "Unités de distance : Miles",
		JobSpecial:    "Transport exceptionnel",
		JobNormal:     "Mission en cours",
		Grouping:      util.GroupSpace,
		CurrencyAfter: true,
		Marker:        ",-",
		HourWord:      "h",
		MinuteWord:    "min",
	}),
	Italian: withLatinUnits(Strings{
		SpeedometerL: englishSpeedometerL,
		SpeedometerR: englishSpeedometerR,
		Kilometres:   "Unità - lunghezza: Chilometri",
		Miles:        "Unità - lunghezza: Miglia",
		JobSpecial:   "Trasporti Speciali",
		JobNormal:    "Lavoro attuale",
		Grouping:     util.GroupPeriod,
		Marker:       ",-",
		HourWord:     "h",
		MinuteWord:   "min",
	}),
	Polish: withLatinUnits(Strings{
		SpeedometerL:  "Prędkościomierz (L) Tachometr (R)",
		SpeedometerR:  "Tachometr (L) Prędkościomierz (R)",
		Kilometres:    "Jednostki długości: kilometry",
		Miles:         "Jednostki długości: mile",
		JobSpecial:    "Transporty specjalne",
		JobNormal:     "Aktualne zlecenie",
		Grouping:      util.GroupSpace,
		CurrencyAfter: true,
		Marker:        ",-",
		HourWord:      "h",
		MinuteWord:    "min",
	}),
	Czech: withLatinUnits(Strings{
		SpeedometerL:  englishSpeedometerL,
		SpeedometerR:  englishSpeedometerR,
		Kilometres:    "Jednotky délky: kilometry",
		Miles:         "Jednotky délky: míle",
		JobSpecial:    "Speciální přeprava",
		JobNormal:     "Aktuální zakázka",
		Grouping:      util.GroupSpace,
		CurrencyAfter: true,
		Marker:        ",-",
		HourWord:      "h",
		MinuteWord:    "min",
	}),
	Norwegian: withLatinUnits(Strings{
		SpeedometerL: "Speedometer (L) Turteller (R)",
		SpeedometerR: "Turteller (L) Speedometer (R)",
		Kilometres:   "Avstandsenheter: kilometer",
		Miles:        "Avstandsenheter: miles",
		JobSpecial:   "Spesialtransport",
		JobNormal:    "Nåværende jobb",
		Grouping:     util.GroupSpace,
		Marker:       ",-",
		HourWord:     "t",
		MinuteWord:   "min",
	}),
	Swedish: withLatinUnits(Strings{
		SpeedometerL:  "Hastighetsmätare (L) Varvräknare (R)",
		SpeedometerR:  "Varvräknare (L) Hastighetsmätare (R)",
		Kilometres:    "Längdenheter: kilometer",
		Miles:         "Längdenheter: miles",
		JobSpecial:    "Specialtransport",
		JobNormal:     "Nuvarande jobb",
		Grouping:      util.GroupPeriod,
		CurrencyAfter: true,
		Marker:        ",-",
		HourWord:      "t",
		MinuteWord:    "min",
	}),
	Danish: withLatinUnits(Strings{
		SpeedometerL: englishSpeedometerL,
		SpeedometerR: englishSpeedometerR,
		Kilometres:   "Længdeenheder: kilometer",
		Miles:        "Længdeenheder: mil",
		JobSpecial:   "Særlig Transport",
		JobNormal:    "Nuværende job",
		Grouping:     util.GroupPeriod,
		Marker:       ",-",
		HourWord:     "t",
		MinuteWord:   "min",
	}),
	Turkish: withLatinUnits(Strings{
		SpeedometerL:  englishSpeedometerL,
		SpeedometerR:  englishSpeedometerR,
		Kilometres:    "Uzunluk Birimleri: Kilometre",
		Miles:         "Uzunluk Birimleri: Mil",
		JobSpecial:    "Özel Nakliye",
		JobNormal:     "Mevcut iş",
		Grouping:      util.GroupPeriod,
		CurrencyAfter: true,
		Marker:        ",-",
		HourWord:      "sa",
		MinuteWord:    "dk",
	}),
	Dutch: withLatinUnits(Strings{
		SpeedometerL: englishSpeedometerL,
		SpeedometerR: englishSpeedometerR,
		Kilometres:   "Lengte eenheden: kilometers",
		Miles:        "Lengte eenheden: mijlen",
		JobSpecial:   "Uitzonderlijk vervoer",
		JobNormal:    "Huidige opdracht",
		Grouping:     util.GroupPeriod,
		Marker:       ",-",
		HourWord:     "u",
		MinuteWord:   "min",
	}),
	PortugueseBR: withLatinUnits(Strings{
		SpeedometerL: "Velocímetro (E) Tacômetro (D)",
		SpeedometerR: "Tacômetro (E) Velocímetro (D)",
		Kilometres:   "Unidades de comprimento: quilômetros",
		Miles:        "Unidades de comprimento: milhas",
		JobSpecial:   "Transporte Especial",
		JobNormal:    "Trabalho atual",
		Grouping:     util.GroupPeriod,
		Marker:       ",-",
		HourWord:     "hr",
		MinuteWord:   "min",
	}),
	Portuguese: withLatinUnits(Strings{
		SpeedometerL:  "Velocímetro (E) Tacómetro (D)",
		SpeedometerR:  "Tacómetro (E) Velocímetro (D)",
		Kilometres:    "Unidades de distância: Quilómetros",
		Miles:         "Unidades de distância: Milhas",
		JobSpecial:    "Transporte Especial",
		JobNormal:     "Trabalho actual",
		Grouping:      util.GroupPeriod,
		CurrencyAfter: true,
		Marker:        ",-",
		HourWord:      "h",
		MinuteWord:    "min",
	}),
	ChineseTW: {
		SpeedometerL: "時速表 (左) 轉速表 (右)",
		SpeedometerR: "轉速表 (左) 時速表 (右)",
		Kilometres:   "長度單位: 公里",
		Miles:        "長度單位: 英里",
		JobSpecial:   "特殊運輸",
		JobNormal:    "目前工作",
		Grouping:     util.GroupComma,
		Marker:       ".-",
		HourWord:     "時",
		MinuteWord:   "分",
		Pound:        "磅",
		Ton:          "噸",
		Kilometre:    "公里",
		Metre:        "米",
		Mile:         "哩",
		Yard:         "碼",
	},
	Chinese: {
		SpeedometerL: "时速表 (左) 转速表 (右)",
		SpeedometerR: "转速表 (左) 时速表 (右)",
		Kilometres:   "长度单位: 公里",
		Miles:        "长度单位: 英里",
		JobSpecial:   "特种运输",
		JobNormal:    "当前任务",
		Grouping:     util.GroupComma,
		Marker:       ".-",
		HourWord:     "时",
		MinuteWord:   "分",
		Pound:        "磅",
		Ton:          "吨",
		Kilometre:    "公里",
		Metre:        "米",
		Mile:         "英里",
		Yard:         "码",
	},
	English: withLatinUnits(Strings{
		SpeedometerL: englishSpeedometerL,
		SpeedometerR: englishSpeedometerR,
		Kilometres:   "Length Units: Kilometres",
		Miles:        "Length Units: Miles",
		JobSpecial:   "Special Transport",
		JobNormal:    "Current Job",
		Grouping:     util.GroupComma,
		Marker:       ".-",
		HourWord:     "h",
		MinuteWord:   "min",
	}),
}

// Table returns the strings for l. Out-of-range values get the English table.
func Table(l Locale) Strings {
	if l < 0 || l >= numLocales {
		return table[English]
	}
	return table[l]
}

// JobTitle picks the special or normal job title.
func (s Strings) JobTitle(special bool) string {
	if special {
		return s.JobSpecial
	}
	return s.JobNormal
}
