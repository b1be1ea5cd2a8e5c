// Package codec turns response bodies into typed values.
//
// The decoder is chosen from the response Content-Type; JSON is the default
// when the header is absent or unrecognized.
//
//	application/json, */*+json   -> JSON (bytedance/sonic)
//	application/yaml, text/yaml  -> YAML (goccy/go-yaml)
//	application/toml             -> TOML (pelletier/go-toml/v2)
//	application/xml, */*+xml     -> XML  (encoding/xml)
package codec

import (
	"encoding/xml"
	"fmt"
	"mime"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Decoder parses data into v
type Decoder interface {
	Decode(data []byte, v interface{}) error
}

// DecoderFunc adapts a function to Decoder
type DecoderFunc func(data []byte, v interface{}) error

// Decode calls f
func (f DecoderFunc) Decode(data []byte, v interface{}) error {
	return f(data, v)
}

var (
	JSON Decoder = DecoderFunc(sonic.ConfigStd.Unmarshal)
	YAML Decoder = DecoderFunc(func(data []byte, v interface{}) error { return yaml.Unmarshal(data, v) })
	TOML Decoder = DecoderFunc(toml.Unmarshal)
	XML  Decoder = DecoderFunc(xml.Unmarshal)
)

// ForContentType picks the decoder for a Content-Type header value
func ForContentType(contentType string) Decoder {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	case mediaType == "application/yaml", mediaType == "application/x-yaml",
		mediaType == "text/yaml", mediaType == "text/x-yaml", strings.HasSuffix(mediaType, "+yaml"):
		return YAML
	case mediaType == "application/toml", mediaType == "text/toml":
		return TOML
	case mediaType == "application/xml", mediaType == "text/xml", strings.HasSuffix(mediaType, "+xml"):
		return XML
	default:
		return JSON
	}
}

// Decode parses data as T
func Decode[T any](d Decoder, data []byte) (T, error) {
	var out T
	if len(data) == 0 {
		return out, fmt.Errorf("empty response body")
	}
	if err := d.Decode(data, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// MarshalJSON encodes request parameters
func MarshalJSON(v interface{}) ([]byte, error) {
	return sonic.ConfigStd.Marshal(v)
}

// LookupString returns the string at key in a JSON object, or "" when the
// body is not JSON or the key is missing
func LookupString(body []byte, key string) string {
	if len(body) == 0 || key == "" {
		return ""
	}
	node, err := sonic.Get(body, key)
	if err != nil {
		return ""
	}
	s, err := node.StrictString()
	if err != nil {
		return ""
	}
	return s
}
