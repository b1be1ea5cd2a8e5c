package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int    `json:"id" yaml:"id" toml:"id" xml:"id"`
	Name string `json:"name" yaml:"name" toml:"name" xml:"name"`
}

func TestForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		body        string
	}{
		{"application/json", `{"id":1,"name":"first"}`},
		{"application/json; charset=utf-8", `{"id":1,"name":"first"}`},
		{"application/problem+json", `{"id":1,"name":"first"}`},
		{"", `{"id":1,"name":"first"}`},
		{"text/plain", `{"id":1,"name":"first"}`},
		{"application/yaml", "id: 1\nname: first\n"},
		{"text/x-yaml", "id: 1\nname: first\n"},
		{"application/toml", "id = 1\nname = \"first\"\n"},
		{"application/xml", "<item><id>1</id><name>first</name></item>"},
		{"application/atom+xml", "<item><id>1</id><name>first</name></item>"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, err := Decode[item](ForContentType(tt.contentType), []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, item{ID: 1, Name: "first"}, got)
		})
	}
}

func TestDecodeFailures(t *testing.T) {
	_, err := Decode[item](JSON, []byte(`{"id": "not a number"`))
	assert.Error(t, err)

	_, err = Decode[item](JSON, nil)
	assert.Error(t, err)

	_, err = Decode[[]item](JSON, []byte(`{"id":1}`))
	assert.Error(t, err)
}

func TestMarshalJSON(t *testing.T) {
	data, err := MarshalJSON(map[string]interface{}{"b": 2, "a": "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":2}`, string(data))
}

func TestLookupString(t *testing.T) {
	body := []byte(`{"message":"token expired","code":401}`)
	assert.Equal(t, "token expired", LookupString(body, "message"))
	assert.Equal(t, "", LookupString(body, "missing"))
	assert.Equal(t, "", LookupString(body, "code"))
	assert.Equal(t, "", LookupString([]byte("<html>"), "message"))
	assert.Equal(t, "", LookupString(nil, "message"))
}
