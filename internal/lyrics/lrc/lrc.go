// Package lrc parses the LRC synced-lyrics format.
package lrc

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"scrolltunes/internal/lyrics/models"
)

var (
	timeTag   = regexp.MustCompile(`^\[(\d{1,3}):(\d{2})(?:[.:](\d{1,3}))?\]`)
	offsetTag = regexp.MustCompile(`^\[offset:\s*([+-]?\d+)\s*\]$`)
)

// Parse converts LRC text into timestamped lines sorted by time. Lines
// without a valid time tag are skipped, as real-world LRC files mix
// metadata tags ([ar:...], [ti:...]) into the body. A line may carry
// several time tags, each producing its own entry. The [offset:ms] tag
// shifts all timestamps (positive means earlier, per the LRC convention).
func Parse(text string) []models.Line {
	var out []models.Line
	offset := 0

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := offsetTag.FindStringSubmatch(trimmed); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				offset = v
			}
			continue
		}

		var times []int
		rest := trimmed
		for {
			m := timeTag.FindStringSubmatch(rest)
			if m == nil {
				break
			}
			times = append(times, tagMillis(m))
			rest = rest[len(m[0]):]
		}
		if len(times) == 0 {
			continue
		}

		text := strings.TrimSpace(rest)
		for _, t := range times {
			t -= offset
			if t < 0 {
				t = 0
			}
			out = append(out, models.Line{TimeMs: t, Text: text})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeMs < out[j].TimeMs })
	return out
}

func tagMillis(m []string) int {
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	ms := 0
	if m[3] != "" {
		frac := m[3]
		switch len(frac) {
		case 1:
			ms, _ = strconv.Atoi(frac)
			ms *= 100
		case 2:
			ms, _ = strconv.Atoi(frac)
			ms *= 10
		default:
			ms, _ = strconv.Atoi(frac[:3])
		}
	}
	return minutes*60_000 + seconds*1_000 + ms
}
