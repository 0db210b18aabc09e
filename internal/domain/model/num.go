// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Num is an optional float. The zero value is undefined.
type Num struct {
	Value float64
	Valid bool
}

// Some returns a defined Num.
func Some(v float64) Num { return Num{Value: v, Valid: true} }

// None is the undefined Num.
var None = Num{}

// Or returns the value, or fallback when undefined.
func (n Num) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

// String formats the value with two decimals, or "n/a".
func (n Num) String() string {
	if !n.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(n.Value, 'f', 2, 64)
}

// MarshalJSON encodes undefined and non-finite values as null.
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsInf(n.Value, 0) || math.IsNaN(n.Value) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts a number or null.
func (n *Num) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*n = None
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}
