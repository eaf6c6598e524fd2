package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTrailingCommas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1,}`, `{"a": 1}`},
		{`[1, 2, 3,]`, `[1, 2, 3]`},
		{`{"a": [1,], "b": 2, }`, `{"a": [1], "b": 2}`},
		{`{"a": "x,y"}`, `{"a": "x,y"}`},
		{`{"a": 1}`, `{"a": 1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripTrailingCommas(tt.in), tt.in)
	}
}

func TestSingleToDoubleQuotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{'a': 'b'}`, `{"a": "b"}`},
		{"apostrophe inside double quotes untouched",
			`{"name": "O'Brien & Sons"}`, `{"name": "O'Brien & Sons"}`},
		{"escaped single quote unescaped",
			`{'name': 'O\'Brien'}`, `{"name": "O'Brien"}`},
		{"double quote inside single literal escaped",
			`{'quote': 'she said "hi"'}`, `{"quote": "she said \"hi\""}`},
		{"mixed", `{"a": 'b', 'c': "d"}`, `{"a": "b", "c": "d"}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SingleToDoubleQuotes(tt.in))
		})
	}
}

func TestStripControlChars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a": "b"}`, StripControlChars("{\"a\": \x00\"b\"\x01}"))
	// Tab, newline and carriage return survive.
	assert.Equal(t, "{\n\t\"a\": 1\r\n}", StripControlChars("{\n\t\"a\": 1\r\n}"))
	assert.Equal(t, "ab", StripControlChars("a\x7fb"))
}
