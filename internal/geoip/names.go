package geoip

// GeoIP 英文国名 → 地图要素显示名（世界地图数据中的缩写形式）
var aliases = map[string]string{
	"United States":                    "United States of America",
	"Congo Republic":                   "Congo",
	"Republic of the Congo":            "Congo",
	"DR Congo":                         "Dem. Rep. Congo",
	"Democratic Republic of the Congo": "Dem. Rep. Congo",
	"Central African Republic":         "Central African Rep.",
	"South Sudan":                      "S. Sudan",
	"Bosnia and Herzegovina":           "Bosnia and Herz.",
	"Dominican Republic":               "Dominican Rep.",
	"Equatorial Guinea":                "Eq. Guinea",
	"Ivory Coast":                      "Côte d'Ivoire",
	"Eswatini":                         "eSwatini",
	"Swaziland":                        "eSwatini",
	"North Macedonia":                  "Macedonia",
	"Solomon Islands":                  "Solomon Is.",
	"Western Sahara":                   "W. Sahara",
	"Falkland Islands":                 "Falkland Is.",
	"French Southern Territories":      "Fr. S. Antarctic Lands",
	"Cape Verde":                       "Cabo Verde",
	"Czech Republic":                   "Czechia",
	"Türkiye":                          "Turkey",
	"East Timor":                       "Timor-Leste",
	"Hashemite Kingdom of Jordan":      "Jordan",
	"Republic of Lithuania":            "Lithuania",
	"Republic of Moldova":              "Moldova",
	"Russian Federation":               "Russia",
	"Syrian Arab Republic":             "Syria",
	"Lao People's Democratic Republic": "Laos",
	"Republic of Korea":                "South Korea",
	"Korea, Republic of":               "South Korea",
	"Brunei Darussalam":                "Brunei",
	"Viet Nam":                         "Vietnam",
}

// CanonicalName：未登记的名字原样返回
func CanonicalName(name string) string {
	if v, ok := aliases[name]; ok {
		return v
	}
	return name
}
