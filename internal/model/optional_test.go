package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionalInt(t *testing.T) {
	tests := []struct {
		in   string
		want OptionalInt
	}{
		{"3", Some(3)},
		{" 4 ", Some(4)},
		{"", OptionalInt{}},
		{"three", OptionalInt{}},
		{"2.5", OptionalInt{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseOptionalInt(tt.in), "ParseOptionalInt(%q)", tt.in)
	}
}

func TestOptionalIntJSON(t *testing.T) {
	var v struct {
		A OptionalInt `json:"a"`
		B OptionalInt `json:"b"`
		C OptionalInt `json:"c"`
		D OptionalInt `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":2,"b":null,"c":"5","d":"n/a"}`), &v))
	assert.Equal(t, Some(2), v.A)
	assert.False(t, v.B.Valid)
	assert.Equal(t, Some(5), v.C)
	assert.False(t, v.D.Valid)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2,"b":null,"c":5,"d":null}`, string(out))
}

func TestOptionalIntScan(t *testing.T) {
	var o OptionalInt
	require.NoError(t, o.Scan(int64(7)))
	assert.Equal(t, Some(7), o)
	require.NoError(t, o.Scan(nil))
	assert.False(t, o.Valid)
	assert.Error(t, o.Scan(3.5))
}

func TestAtLeast(t *testing.T) {
	assert.True(t, Some(3).AtLeast(3))
	assert.False(t, Some(2).AtLeast(3))
	assert.False(t, OptionalInt{}.AtLeast(0))
}
