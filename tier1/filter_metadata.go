// Package tier1 implements the deterministic, zero-cost operators of §4.3,
// grounded on postprocessor's NodePostprocessor family (functional
// predicates over a node/document slice returning a filtered slice).
package tier1

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/operator"
)

func argString(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func argInt(args map[string]interface{}, key string) (int, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

func argFloat(args map[string]interface{}, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// FilterMetadata is the search_lex-free, structural-metadata predicate
// filter (§4.3 filter_metadata).
func FilterMetadata(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	var after, before time.Time
	var hasAfter, hasBefore bool
	if s, ok := argString(args, "after"); ok {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t, err = time.Parse("2006-01-02", s)
			if err != nil {
				return operator.Result{}, fmt.Errorf("filter_metadata: invalid after: %w", err)
			}
		}
		after, hasAfter = t, true
	}
	if s, ok := argString(args, "before"); ok {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t, err = time.Parse("2006-01-02", s)
			if err != nil {
				return operator.Result{}, fmt.Errorf("filter_metadata: invalid before: %w", err)
			}
		}
		before, hasBefore = t, true
	}

	sender, hasSender := argString(args, "sender")
	recipient, hasRecipient := argString(args, "recipient")
	threadID, hasThread := argString(args, "thread_id")
	minWords, hasMinWords := argInt(args, "min_words")
	maxWords, hasMaxWords := argInt(args, "max_words")

	out := input.Filter(func(d document.Document) bool {
		if hasSender && !strings.EqualFold(d.Metadata.Sender, sender) {
			return false
		}
		if hasRecipient && !strings.EqualFold(d.Metadata.Recipient, recipient) {
			return false
		}
		if hasThread && !strings.EqualFold(d.Metadata.ThreadID, threadID) {
			return false
		}
		if hasAfter && d.Timestamp.Before(after) {
			return false
		}
		if hasBefore && !d.Timestamp.Before(before) {
			return false
		}
		if hasMinWords && d.Metadata.WordCount < minWords {
			return false
		}
		if hasMaxWords && d.Metadata.WordCount > maxWords {
			return false
		}
		return true
	})

	out = out.WithAudit(docset.AuditEntry{
		Op:          "filter_metadata",
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
		},
	}, nil
}
