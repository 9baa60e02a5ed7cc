// Package extract locates JSON fragments embedded in the provider's
// script-laden HTML pages and parses them into generic structured values.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrMalformedPayload signals that a marker was found but the embedded JSON
// no longer parses. This usually means the provider changed its page format,
// so it must surface as a refresh failure rather than a silent miss.
var ErrMalformedPayload = errors.New("malformed embedded payload")

// Patterns for the inline script variables the provider embeds in its pages.
// The (?s) flag lets the fragment span multiple lines; the non-greedy
// variants stop at the first closing `};`, the greedy ones run to the last
// closing brace because the variable is the final statement on the page.
var (
	DataSK    = regexp.MustCompile(`(?s)dataSK\s*=\s*(\{.*?\})\s*;`)
	DataZS    = regexp.MustCompile(`(?s)dataZS\s*=\s*(\{.*?\})\s*;`)
	AlarmDZ   = regexp.MustCompile(`(?s)var alarmDZ\w*\s*=\s*(\{.*\})`)
	DailyFC   = regexp.MustCompile(`(?s)fc\s*=\s*(\{.*\})`)
	HourlyFC  = regexp.MustCompile(`(?s)fc180\s*=\s*(\{.*\})`)
	Observe24 = regexp.MustCompile(`(?s)observe24h_data\s*=\s*(\{.*?\})\s*;`)
)

// Extract applies pattern to text and parses the first capture group as JSON.
// A missing marker returns (nil, nil); a marker with invalid JSON returns
// ErrMalformedPayload.
func Extract(text string, pattern *regexp.Regexp) (any, error) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal([]byte(m[1]), &out); err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", ErrMalformedPayload, pattern.String(), err)
	}
	return out, nil
}

// Object is Extract narrowed to a JSON object. Non-object results are
// treated as malformed because every marker in use frames an object.
func Object(text string, pattern *regexp.Regexp) (map[string]any, error) {
	v, err := Extract(text, pattern)
	if err != nil || v == nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: pattern %q: expected object, got %T", ErrMalformedPayload, pattern.String(), v)
	}
	return obj, nil
}

// ListUnder extracts an object and returns the array stored under key,
// or nil when the key is absent or empty.
func ListUnder(text string, pattern *regexp.Regexp, key string) ([]any, error) {
	obj, err := Object(text, pattern)
	if err != nil || obj == nil {
		return nil, err
	}
	lst, _ := obj[key].([]any)
	return lst, nil
}
