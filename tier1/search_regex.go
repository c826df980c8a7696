package tier1

import (
	"context"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/operator"
)

// SearchRegex implements the search_regex operator (§4.3). It compiles with
// regexp2 rather than the RE2-restricted standard library regexp package so
// lookaround patterns a planner may emit are honored. A compile failure is
// reported as a non-fatal operator error per §4.3/§4.7, letting the
// executor pass the input through unchanged.
func SearchRegex(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	pattern, ok := argString(args, "pattern")
	if !ok || pattern == "" {
		return operator.Result{}, errSearchRegex("pattern is required")
	}

	opts := regexp2.None
	if flags, ok := argString(args, "flags"); ok {
		for _, f := range flags {
			switch f {
			case 'i':
				opts |= regexp2.IgnoreCase
			case 'm':
				opts |= regexp2.Multiline
			case 's':
				opts |= regexp2.Singleline
			}
		}
	}

	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return operator.Result{}, errSearchRegex("compile: " + err.Error())
	}

	type matchRecord struct {
		DocID string `json:"doc_id"`
		Match string `json:"match"`
		Index int    `json:"index"`
	}
	var matches []matchRecord

	out := input.Filter(func(d document.Document) bool {
		found := false
		m, _ := re.FindStringMatch(d.Text)
		lastEnd := -1
		for m != nil {
			if m.Index == lastEnd && m.Length == 0 {
				// zero-length match guard: an empty match right where the
				// previous match ended is skipped without being recorded;
				// FindNextMatch steps past empty matches, so patterns like
				// "" or "a*" cannot loop forever.
				next, nerr := re.FindNextMatch(m)
				if nerr != nil || next == nil {
					break
				}
				m = next
				continue
			}
			found = true
			matches = append(matches, matchRecord{DocID: d.ID, Match: m.String(), Index: m.Index})
			lastEnd = m.Index + m.Length
			next, nerr := re.FindNextMatch(m)
			if nerr != nil {
				break
			}
			m = next
		}
		return found
	})

	out = out.WithAudit(docset.AuditEntry{
		Op:          "search_regex",
		Args:        args,
		Timestamp:   start,
		InputCount:  input.Len(),
		OutputCount: out.Len(),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	return operator.Result{
		DocSet: out,
		Meta: operator.OpMeta{
			DurationMs:  time.Since(start).Milliseconds(),
			ResultCount: out.Len(),
			Detail:      map[string]interface{}{"matches": matches},
		},
	}, nil
}

// errSearchRegexType marks a non-fatal search_regex error so the executor's
// fatal-classification (§4.7) never mistakes it for a fatal plan error.
type errSearchRegexType struct{ msg string }

func (e *errSearchRegexType) Error() string { return "search_regex: " + e.msg }

func errSearchRegex(msg string) error { return &errSearchRegexType{msg: msg} }
