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

// SearchLex implements the search_lex operator (§4.3): any/all/phrase
// lexical matching over document text, with a matched_terms occurrence
// count in the detail map.
func SearchLex(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	rawTerms, _ := args["terms"].([]interface{})
	terms := make([]string, 0, len(rawTerms))
	for _, t := range rawTerms {
		if s, ok := t.(string); ok {
			terms = append(terms, s)
		}
	}
	if len(terms) == 0 {
		if ss, ok := args["terms"].([]string); ok {
			terms = ss
		}
	}
	if len(terms) == 0 {
		return operator.Result{}, fmt.Errorf("search_lex: terms must be a non-empty list")
	}

	mode, _ := argString(args, "mode")
	if mode == "" {
		mode = "any"
	}
	caseSensitive, _ := args["case_sensitive"].(bool)

	fold := func(s string) string {
		if caseSensitive {
			return s
		}
		return strings.ToLower(s)
	}

	phrase := fold(strings.Join(terms, " "))
	foldedTerms := make([]string, len(terms))
	for i, t := range terms {
		foldedTerms[i] = fold(t)
	}

	matchedTerms := make(map[string]int)

	matches := func(text string) bool {
		ftext := fold(text)
		switch mode {
		case "phrase":
			if strings.Contains(ftext, phrase) {
				matchedTerms[phrase] += strings.Count(ftext, phrase)
				return true
			}
			return false
		case "all":
			for _, t := range foldedTerms {
				if !strings.Contains(ftext, t) {
					return false
				}
			}
			for i, t := range foldedTerms {
				if c := strings.Count(ftext, t); c > 0 {
					matchedTerms[terms[i]] += c
				}
			}
			return true
		default: // "any"
			found := false
			for i, t := range foldedTerms {
				if c := strings.Count(ftext, t); c > 0 {
					matchedTerms[terms[i]] += c
					found = true
				}
			}
			return found
		}
	}

	out := input.Filter(func(d document.Document) bool {
		return matches(d.Text)
	})

	out = out.WithAudit(docset.AuditEntry{
		Op:          "search_lex",
		Args:        args,
		Timestamp:   start,
		InputCount:  input.Len(),
		OutputCount: out.Len(),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	detail := map[string]interface{}{"matched_terms": matchedTerms}

	return operator.Result{
		DocSet: out,
		Meta: operator.OpMeta{
			DurationMs:  time.Since(start).Milliseconds(),
			ResultCount: out.Len(),
			Detail:      detail,
		},
	}, nil
}
