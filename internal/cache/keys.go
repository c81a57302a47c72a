package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MetricsKey builds the cache key for an aggregate-metrics query. Equivalent filters
// produce the same key regardless of argument order or case.
func MetricsKey(policyTable string, statuses []string, priorities []int, from, to *time.Time) string {
	return makeKey(
		"metricas",
		strings.ToLower(strings.TrimSpace(policyTable)),
		canonicalStatuses(statuses),
		canonicalPriorities(priorities),
		canonicalDate(from),
		canonicalDate(to),
	)
}

func canonicalStatuses(statuses []string) string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

func canonicalPriorities(priorities []int) string {
	sorted := append([]int(nil), priorities...)
	sort.Ints(sorted)
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = strconv.Itoa(p)
	}
	return strings.Join(out, ",")
}

func canonicalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func makeKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	h := sha1.Sum([]byte(joined))
	return hex.EncodeToString(h[:])
}
