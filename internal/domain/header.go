package domain

import (
	"regexp"
	"sort"
	"strings"
)

// unnamedPrefix marks a header cell the reader synthesised for a blank cell.
const unnamedPrefix = "Unnamed:"

var (
	// laneBlockRe matches the outer label of a lane coordinate block, e.g. "Lane L1".
	laneBlockRe = regexp.MustCompile(`^Lane [LR]\d+`)

	// laneIDRe matches a lane code: direction letter followed by digits.
	laneIDRe = regexp.MustCompile(`[LR]\d+`)
)

// coordinateSubheaders are the inner labels under a lane block. The ".1"
// variants are the longitude halves of the Start/End pairs.
var coordinateSubheaders = map[string]bool{
	"Start":   true,
	"Start.1": true,
	"End":     true,
	"End.1":   true,
}

// NormalizeHeader collapses a two-level header into one flat column name.
// The inner label wins when present, except under a lane block where Start/End
// are ambiguous and get the lane prefix. An empty result drops the column.
func NormalizeHeader(h HeaderPair) string {
	outer := strings.TrimSpace(h.Outer)
	inner := strings.TrimSpace(h.Inner)

	if isLabel(inner) {
		if laneBlockRe.MatchString(outer) && coordinateSubheaders[inner] {
			return outer + "_" + inner
		}
		return inner
	}
	if isLabel(outer) {
		return outer
	}
	return ""
}

func isLabel(s string) bool {
	return s != "" && s != "nan" && !strings.HasPrefix(s, unnamedPrefix)
}

// DiscoverLanes returns the distinct lane codes found in the headers, sorted.
func DiscoverLanes(headers []string) []string {
	seen := make(map[string]struct{})
	for _, h := range headers {
		if h == "" {
			continue
		}
		for _, id := range laneIDRe.FindAllString(h, -1) {
			seen[id] = struct{}{}
		}
	}

	lanes := make([]string, 0, len(seen))
	for id := range seen {
		lanes = append(lanes, id)
	}
	sort.Strings(lanes)
	return lanes
}
