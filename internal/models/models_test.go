package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFalsy(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"false", false, true},
		{"true", true, false},
		{"empty string", "", true},
		{"string", "x", false},
		{"zero int", 0, true},
		{"int", 10, false},
		{"zero int64", int64(0), true},
		{"zero uint8", uint8(0), true},
		{"zero float", 0.0, true},
		{"NaN", math.NaN(), true},
		{"negative float", -1.5, false},
		{"zero json.Number", json.Number("0"), true},
		{"json.Number", json.Number("25"), false},
		{"empty json.Number", json.Number(""), true},
		{"slice", []string{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFalsy(tt.value))
		})
	}
}

func TestOptionsSet(t *testing.T) {
	opts := Options{}

	opts.Set("limit", 10)
	opts.Set("filter", "r1")
	assert.Equal(t, Options{"limit": 10, "filter": "r1"}, opts)

	opts.Set("limit", 0)
	assert.Equal(t, Options{"filter": "r1"}, opts)

	// Removing a key that was never present is fine
	opts.Set("missing", false)
	assert.Equal(t, Options{"filter": "r1"}, opts)

	opts.Set("filter", "")
	assert.Empty(t, opts)
}

func TestOptionsClone(t *testing.T) {
	var nilOpts Options
	c := nilOpts.Clone()
	assert.NotNil(t, c)
	assert.Empty(t, c)

	orig := Options{"limit": 5}
	c = orig.Clone()
	c.Set("limit", 7)
	assert.Equal(t, 5, orig["limit"])
	assert.Equal(t, 7, c["limit"])
}
