package tier1

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/operator"
)

// Trend implements the trend operator (§4.3): emits detail.points, one per
// interval bucket, sorted ascending by period.
func Trend(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	metric, _ := argString(args, "metric")
	if metric == "" {
		metric = "count"
	}
	interval, _ := argString(args, "interval")
	if interval == "" {
		interval = "day"
	}

	type bucket struct {
		count      int
		hostile    int
		wordsTotal int
	}
	buckets := make(map[string]*bucket)

	for _, d := range input.Documents() {
		period := periodKey(d.Timestamp, interval)
		b, ok := buckets[period]
		if !ok {
			b = &bucket{}
			buckets[period] = b
		}
		b.count++
		b.wordsTotal += d.Metadata.WordCount
		if isHostile(d, input) {
			b.hostile++
		}
	}

	periods := make([]string, 0, len(buckets))
	for p := range buckets {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	type point struct {
		Period string  `json:"period"`
		Value  float64 `json:"value"`
	}
	points := make([]point, 0, len(periods))
	for _, p := range periods {
		b := buckets[p]
		var v float64
		switch metric {
		case "hostile_count":
			v = float64(b.hostile)
		case "avg_word_count":
			if b.count > 0 {
				v = float64(b.wordsTotal) / float64(b.count)
			}
		default: // "count"
			v = float64(b.count)
		}
		points = append(points, point{Period: p, Value: v})
	}

	out := input.WithAudit(docset.AuditEntry{
		Op:          "trend",
		Args:        args,
		Timestamp:   start,
		InputCount:  input.Len(),
		OutputCount: input.Len(),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	return operator.Result{
		DocSet: out,
		Meta: operator.OpMeta{
			DurationMs:  time.Since(start).Milliseconds(),
			ResultCount: out.Len(),
			Detail:      map[string]interface{}{"points": points},
		},
	}, nil
}

func periodKey(t time.Time, interval string) string {
	t = t.UTC()
	switch interval {
	case "week":
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case "month":
		return t.Format("2006-01")
	default: // "day"
		return t.Format("2006-01-02")
	}
}

func isHostile(d document.Document, ds docset.DocSet) bool {
	labels, ok := ds.Labels(d.ID)
	if !ok {
		return false
	}
	l, ok := labels.Get("tone")
	if !ok {
		return false
	}
	return strings.EqualFold(l.AsString(), "hostile")
}
