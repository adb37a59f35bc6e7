package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNum(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  float64
		valid bool
	}{
		{"float", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"int64", int64(1_000_000), 1_000_000, true},
		{"numeric string", " 23.4 ", 23.4, true},
		{"thousands separator", "1,234.5", 1234.5, true},
		{"percent string", "-1.25%", -1.25, true},
		{"json number", json.Number("3.5"), 3.5, true},
		{"yahoo raw object", map[string]any{"raw": 18.2, "fmt": "18.20"}, 18.2, true},
		{"nil", nil, 0, false},
		{"garbage", "N/A", 0, false},
		{"empty string", "", 0, false},
		{"nan", math.NaN(), 0, false},
		{"infinity string", "Infinity", 0, false},
		{"object without raw", map[string]any{}, 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNum(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, got.Float64, 1e-9)
			}
		})
	}
}

func TestNumJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Num `json:"a"`
		B Num `json:"b"`
	}{A: Some(1.5), B: None()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(out))

	var back struct {
		A Num `json:"a"`
		B Num `json:"b"`
	}
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, Some(1.5), back.A)
	assert.False(t, back.B.Valid)
}

func TestNumValuer(t *testing.T) {
	v, err := None().Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Some(2).Value()
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}
