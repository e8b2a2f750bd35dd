// Package normalize extracts fields from raw API responses whose exact
// shape varies between backend versions.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
)

// Field returns the value at the dotted path in raw JSON, or def when the
// path is absent or the document is not valid JSON.
func Field(raw []byte, path string, def any) any {
	if !gjson.ValidBytes(raw) {
		return def
	}
	res := gjson.GetBytes(raw, path)
	if !res.Exists() {
		return def
	}
	return res.Value()
}

// Number returns the numeric value at the dotted path. Numeric strings
// ("1250.50") are accepted; NaN, infinities, absent paths and non-numeric
// values report ok=false.
func Number(raw []byte, path string) (float64, bool) {
	if !gjson.ValidBytes(raw) {
		return 0, false
	}
	res := gjson.GetBytes(raw, path)
	switch res.Type {
	case gjson.Number:
		return finite(res.Num)
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(res.Str), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

// Array returns the elements at the dotted path, failing unless the value
// is array-shaped. An empty path addresses the document root.
func Array(raw []byte, path string) ([]json.RawMessage, error) {
	if !gjson.ValidBytes(raw) {
		return nil, eris.New("normalize: invalid json")
	}
	res := gjson.ParseBytes(raw)
	if path != "" {
		res = res.Get(path)
	}
	if !res.Exists() {
		return nil, eris.Errorf("normalize: path %q not present", path)
	}
	if !res.IsArray() {
		return nil, eris.Errorf("normalize: path %q is not an array", path)
	}
	// Non-nil even when empty, so callers can tell "empty list" apart
	// from "no list found".
	out := []json.RawMessage{}
	res.ForEach(func(_, v gjson.Result) bool {
		out = append(out, json.RawMessage(v.Raw))
		return true
	})
	return out, nil
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
