/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
)

// The helpers below never fail: a missing or mistyped field yields def.

func stringField(data map[string]any, key, def string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return def
	}
}

func floatField(data map[string]any, key string, def float64) float64 {
	switch v := data[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	return def
}

func intField(data map[string]any, key string, def int) int {
	if _, ok := data[key]; !ok {
		return def
	}
	f := floatField(data, key, math.NaN())
	if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}

func boolField(data map[string]any, key string, def bool) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// stringsField keeps the string elements of a list and skips the rest.
func stringsField(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// timeField accepts strfmt/time values, RFC3339 strings and unix seconds.
func timeField(data map[string]any, key string) strfmt.DateTime {
	switch v := data[key].(type) {
	case strfmt.DateTime:
		return v
	case time.Time:
		return strfmt.DateTime(v)
	case string:
		if v == "" {
			break
		}
		if dt, err := strfmt.ParseDateTime(v); err == nil {
			return dt
		}
	case float64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return strfmt.DateTime(time.Unix(int64(v), 0).UTC())
		}
	case int64:
		return strfmt.DateTime(time.Unix(v, 0).UTC())
	case int:
		return strfmt.DateTime(time.Unix(int64(v), 0).UTC())
	}
	return strfmt.DateTime{}
}

// documentID prefers the backend id and falls back to an "id" field.
func documentID(id string, data map[string]any) string {
	if id != "" {
		return id
	}
	return stringField(data, "id", "")
}

func formatTime(dt strfmt.DateTime) string {
	if time.Time(dt).IsZero() {
		return ""
	}
	return dt.String()
}

func sameTime(a, b strfmt.DateTime) bool {
	return time.Time(a).Equal(time.Time(b))
}
