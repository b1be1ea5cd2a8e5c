package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/GriffinCanCode/apimanager/internal/codec"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded; charset=utf-8"
)

// encodedRequest is a RequestSpec ready for the wire
type encodedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// encodeRequest applies headers and parameters to spec. GET and HEAD always
// carry parameters in the query string; other methods use spec.Encoding.
func encodeRequest(spec types.RequestSpec, userAgent string) (*encodedRequest, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	u, err := url.Parse(spec.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: scheme and host required", spec.URL)
	}

	header := make(http.Header, len(spec.Headers)+2)
	for k, v := range spec.Headers {
		header.Set(k, v)
	}
	if header.Get("User-Agent") == "" && userAgent != "" {
		header.Set("User-Agent", userAgent)
	}

	req := &encodedRequest{Method: spec.Method.String(), Header: header}

	switch {
	case len(spec.Params) == 0:
	case spec.Method.QueryOnly():
		query := u.Query()
		addFormValues(query, spec.Params)
		u.RawQuery = query.Encode()
	case spec.Encoding == types.EncodingURL:
		form := url.Values{}
		addFormValues(form, spec.Params)
		req.Body = []byte(form.Encode())
		setDefault(header, "Content-Type", contentTypeForm)
	default:
		body, err := codec.MarshalJSON(spec.Params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode parameters: %w", err)
		}
		req.Body = body
		setDefault(header, "Content-Type", contentTypeJSON)
	}

	req.URL = u.String()
	return req, nil
}

func setDefault(header http.Header, key, value string) {
	if header.Get(key) == "" {
		header.Set(key, value)
	}
}

// addFormValues flattens params: slices become key[]=v, maps become key[sub]=v.
// url.Values.Encode sorts by key, so map iteration order does not leak.
func addFormValues(values url.Values, params map[string]interface{}) {
	for k, v := range params {
		addFormValue(values, k, v)
	}
}

func addFormValue(values url.Values, key string, value interface{}) {
	switch v := value.(type) {
	case nil:
		values.Add(key, "")
	case map[string]interface{}:
		for sub, item := range v {
			addFormValue(values, key+"["+sub+"]", item)
		}
	case map[string]string:
		for k, s := range v {
			values.Add(key+"["+k+"]", s)
		}
	case []interface{}:
		for _, item := range v {
			addFormValue(values, key+"[]", item)
		}
	case []string:
		for _, item := range v {
			values.Add(key+"[]", item)
		}
	default:
		values.Add(key, formScalar(v))
	}
}

func formScalar(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}
