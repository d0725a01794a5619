package model

import "strings"

// sportAliases maps a lower_snake_case raw sport string to its normalized
// form. Anything not present here passes through unchanged (lower-cased,
// spaces turned to underscores).
var sportAliases = map[string]string{
	"run":               "running",
	"trail_run":         "running",
	"treadmill_running": "running",
	"running":           "running",

	"ride":               "cycling",
	"cycling":            "cycling",
	"virtual_ride":       "cycling",
	"e_bike_ride":        "cycling",
	"mountain_bike_ride": "cycling",
	"road_bike_ride":     "cycling",

	"swim":                "swimming",
	"open_water_swimming": "swimming",
	"pool_swimming":       "swimming",
	"swimming":            "swimming",

	"walk":    "walking",
	"walking": "walking",
	"hike":    "walking",
	"hiking":  "walking",
}

// similarityGroups lists sets of normalized sport names the Matcher treats
// as "similar enough" (confidence 0.8) when they aren't an exact match.
var similarityGroups = []map[string]bool{
	{"running": true, "trail_running": true, "treadmill_running": true},
	{"cycling": true, "mountain_biking": true, "road_cycling": true, "virtual_cycling": true},
	{"swimming": true, "open_water_swimming": true, "pool_swimming": true},
	{"walking": true, "hiking": true},
}

// NormalizeSport lower-cases, replaces spaces with underscores, and maps
// the result through the known alias table.
func NormalizeSport(sportType string) string {
	normalized := strings.ReplaceAll(strings.ToLower(sportType), " ", "_")
	if mapped, ok := sportAliases[normalized]; ok {
		return mapped
	}
	return normalized
}

// SimilarSports reports whether two already-normalized sport names belong
// to the same similarity group.
func SimilarSports(a, b string) bool {
	for _, group := range similarityGroups {
		if group[a] && group[b] {
			return true
		}
	}
	return false
}
