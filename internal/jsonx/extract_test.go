package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObjectCleanJSON(t *testing.T) {
	t.Parallel()

	obj, err := ExtractObject(`{"name": "Acme", "year": 2015}`)
	require.NoError(t, err)
	assert.Equal(t, "Acme", obj["name"])
	assert.Equal(t, float64(2015), obj["year"])
}

func TestExtractObjectFencedAndProseWrapped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"markdown fence", "Here is the data:\n```json\n{\"name\": \"Acme\"}\n```\nLet me know if you need more."},
		{"prose wrapped", `Sure! The extracted profile is {"name": "Acme"} as requested.`},
		{"leading chatter", "I analyzed the site.\n\n{\"name\": \"Acme\"}"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			obj, err := ExtractObject(tt.in)
			require.NoError(t, err)
			assert.Equal(t, "Acme", obj["name"])
		})
	}
}

func TestExtractObjectRepairLadder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"trailing comma", `{"name": "Acme", "tags": ["a", "b",],}`},
		{"single quotes", `{'name': 'Acme'}`},
		{"control chars", "{\"name\": \x01\"Acme\"}"},
		{"all three", "{'name': 'Acme',\x02}"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			obj, err := ExtractObject(tt.in)
			require.NoError(t, err)
			assert.Equal(t, "Acme", obj["name"])
		})
	}
}

func TestExtractObjectBracesInsideStrings(t *testing.T) {
	t.Parallel()

	obj, err := ExtractObject(`{"desc": "uses {braces} and \"quotes\"", "ok": true}`)
	require.NoError(t, err)
	assert.Equal(t, `uses {braces} and "quotes"`, obj["desc"])
}

// Truncated output falls back to the widest span, which still fails;
// the error is ErrNoObject, never a panic.
func TestExtractObjectNeverPanics(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"no json here at all",
		"{",
		"}",
		`{"unterminated": "str`,
		"{{{{",
		"\x00\x01\x02",
		`{"a": }`,
	}
	for _, in := range inputs {
		obj, err := ExtractObject(in)
		if err != nil {
			assert.ErrorIs(t, err, ErrNoObject, in)
			assert.Nil(t, obj)
		}
	}
}

func TestExtractInto(t *testing.T) {
	t.Parallel()

	var target struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	err := ExtractInto("```json\n{\"name\": \"Acme\", \"tags\": [\"widgets\"],}\n```", &target)
	require.NoError(t, err)
	assert.Equal(t, "Acme", target.Name)
	assert.Equal(t, []string{"widgets"}, target.Tags)

	err = ExtractInto("nothing structured", &target)
	assert.ErrorIs(t, err, ErrNoObject)
}
