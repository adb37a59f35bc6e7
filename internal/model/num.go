package model

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Num is a float that may be absent. Absent values are excluded from
// aggregates rather than treated as zero.
type Num struct {
	Float64 float64
	Valid   bool
}

// Some returns a present Num. Non-finite values are reported as absent.
func Some(v float64) Num {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Num{}
	}
	return Num{Float64: v, Valid: true}
}

// None returns an absent Num.
func None() Num { return Num{} }

// MarshalJSON encodes absent values as null.
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON accepts null, numbers and numeric strings.
func (n *Num) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = ParseNum(v)
	return nil
}

// Value implements driver.Valuer so absent values are stored as NULL.
func (n Num) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Float64, nil
}

// ParseNum coerces a raw feed value into a Num. It accepts numbers of any
// width, json.Number, numeric strings (thousands separators and a trailing %
// are tolerated) and Yahoo-style {"raw": x} objects. Anything else, including
// NaN and infinities, is absent.
func ParseNum(v any) Num {
	switch x := v.(type) {
	case nil:
		return Num{}
	case Num:
		return x
	case *Num:
		if x == nil {
			return Num{}
		}
		return *x
	case float64:
		return Some(x)
	case float32:
		return Some(float64(x))
	case int:
		return Some(float64(x))
	case int32:
		return Some(float64(x))
	case int64:
		return Some(float64(x))
	case uint64:
		return Some(float64(x))
	case *float64:
		if x == nil {
			return Num{}
		}
		return Some(*x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Num{}
		}
		return Some(f)
	case string:
		return parseNumString(x)
	case map[string]any:
		if raw, ok := x["raw"]; ok {
			return ParseNum(raw)
		}
		return Num{}
	default:
		return Num{}
	}
}

func parseNumString(s string) Num {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return Num{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Num{}
	}
	return Some(f)
}
