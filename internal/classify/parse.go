package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"taxoclass/internal/textutil"
)

// ErrInvalidOutput marks backend output that does not satisfy the Result schema.
var ErrInvalidOutput = errors.New("invalid structured output")

// Parse extracts the JSON object from raw backend text and decodes it against
// the Result schema. Code fences and surrounding prose are tolerated; missing
// required keys, wrong types, and out-of-domain enum values are not.
func Parse(raw string) (*Result, error) {
	payload := extractObject(raw)
	if payload == "" {
		return nil, invalid("no JSON object in response (snippet: %s)", textutil.Snippet(raw))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, invalid("decode object: %v (snippet: %s)", err, textutil.Snippet(payload))
	}

	result := &Result{}
	for _, f := range schema {
		value, present := fields[f.key]
		if !present || string(value) == "null" {
			if f.required {
				return nil, invalid("missing required key %q", f.key)
			}
			continue
		}
		if err := decodeField(result, f, value); err != nil {
			return nil, err
		}
	}
	if result.SecondaryPillars == nil {
		result.SecondaryPillars = []string{}
	}
	return result, nil
}

func decodeField(r *Result, f schemaField, value json.RawMessage) error {
	switch f.kind {
	case "string":
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return invalid("key %q: want string", f.key)
		}
		if len(f.enum) > 0 {
			c, ok := canonical(f.enum, s)
			if !ok {
				return invalid("key %q: %q is not one of %s", f.key, s, strings.Join(f.enum, ", "))
			}
			s = c
		}
		assignString(r, f.key, s)
	case "array of strings":
		var list []string
		if err := json.Unmarshal(value, &list); err != nil {
			return invalid("key %q: want array of strings", f.key)
		}
		cleaned := make([]string, 0, len(list))
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				cleaned = append(cleaned, item)
			}
		}
		switch f.key {
		case "keyConcepts":
			r.KeyConcepts = cleaned
		case "secondaryPillars":
			r.SecondaryPillars = cleaned
		}
	case "integer":
		var n float64
		if err := json.Unmarshal(value, &n); err != nil {
			return invalid("key %q: want integer", f.key)
		}
		if n != math.Trunc(n) || n < 0 || n > 100 {
			return invalid("key %q: %v is not an integer between 0 and 100", f.key, n)
		}
		r.CompletenessScore = int(n)
	}
	return nil
}

// assignString stores taxonomy names verbatim; they must match the tree byte
// for byte.
func assignString(r *Result, key, value string) {
	switch key {
	case "title":
		r.Title = strings.TrimSpace(value)
	case "summary":
		r.Summary = strings.TrimSpace(value)
	case "contentType":
		r.ContentType = strings.TrimSpace(value)
	case "primaryPillar":
		r.PrimaryPillar = value
	case "sub":
		r.Sub = value
	case "competence":
		r.Competence = value
	case "behavior":
		r.Behavior = value
	case "maturityLevel":
		r.MaturityLevel = value
	case "targetRole":
		r.TargetRole = strings.TrimSpace(value)
	case "duration":
		r.Duration = strings.TrimSpace(value)
	case "intervention":
		r.Intervention = value
	case "moment":
		r.Moment = value
	case "language":
		r.Language = strings.TrimSpace(value)
	case "format":
		r.Format = strings.TrimSpace(value)
	case "observations":
		r.Observations = strings.TrimSpace(value)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOutput, fmt.Sprintf(format, args...))
}

// extractObject strips a surrounding code fence and returns the outermost
// {...} span.
func extractObject(content string) string {
	trimmed := stripCodeFenceBlock(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
