// Package types provides type definitions for structured data used throughout the hiring-coach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Score is a numeric field produced by the reasoning collaborator.
// It accepts JSON numbers as well as numeric strings ("7", "7.5", "80%").
// Values that cannot be read as a finite number leave the current value
// untouched, so a shape's default survives a sloppy response.
type Score float64

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		str = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "%"))
		if v, err := strconv.ParseFloat(str, 64); err == nil && finite(v) {
			*s = Score(v)
		}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	*s = Score(v)
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Float returns the score as a float64.
func (s Score) Float() float64 {
	return float64(s)
}

// Clamp bounds v to [lo, hi]. NaN becomes lo.
func Clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampScore bounds a Score to [lo, hi].
func ClampScore(s Score, lo, hi float64) Score {
	return Score(Clamp(float64(s), lo, hi))
}
