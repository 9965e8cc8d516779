// Package api describes outbound REST calls as plain data.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// PlainObject is a loosely typed JSON object.
type PlainObject = map[string]any

// Request describes a single REST call. Method and URL are mandatory.
type Request struct {
	Method  string      `json:"method" yaml:"method"`
	URL     string      `json:"url" yaml:"url"`
	Params  PlainObject `json:"params,omitempty" yaml:"params,omitempty"`
	Data    PlainObject `json:"data,omitempty" yaml:"data,omitempty"`
	Headers PlainObject `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Expect is checked against the response when the request is sent.
	Expect *ExpectedResponse `json:"expect,omitempty" yaml:"expect,omitempty"`
}

// ExpectedResponse is the status and body a caller expects back.
// A zero StatusCode or empty Data is not checked.
type ExpectedResponse struct {
	StatusCode int         `json:"statusCode" yaml:"statusCode"`
	Data       PlainObject `json:"data" yaml:"data"`
}

// ErrUnexpectedResponse is returned by Check when the response does not match.
var ErrUnexpectedResponse = errors.New("unexpected response")

// Check compares a response status and JSON body with the expectation. Every key
// in Data must be present in the body with an equal value; extra keys are fine.
func (x ExpectedResponse) Check(statusCode int, body []byte) error {
	if x.StatusCode != 0 && statusCode != x.StatusCode {
		return fmt.Errorf("%w: status %d, want %d", ErrUnexpectedResponse, statusCode, x.StatusCode)
	}
	if len(x.Data) == 0 {
		return nil
	}

	var got PlainObject
	if err := json.Unmarshal(body, &got); err != nil {
		return fmt.Errorf("%w: body is not a JSON object: %v", ErrUnexpectedResponse, err)
	}
	want, err := normalize(x.Data)
	if err != nil {
		return fmt.Errorf("encoding expected data: %w", err)
	}
	for _, k := range sortedKeys(want) {
		v, ok := got[k]
		if !ok {
			return fmt.Errorf("%w: missing key %q", ErrUnexpectedResponse, k)
		}
		if !reflect.DeepEqual(v, want[k]) {
			return fmt.Errorf("%w: %s = %v, want %v", ErrUnexpectedResponse, k, v, want[k])
		}
	}
	return nil
}

// normalize round-trips through JSON so numbers and nested maps compare like a decoded body.
func normalize(m PlainObject) (PlainObject, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out PlainObject
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RequiredFields lists the request fields that must be set.
var RequiredFields = []string{"url", "method"}

// ErrMissingField is returned by Validate when a required field is empty.
var ErrMissingField = errors.New("missing required field")

// Validate checks that every required field is present.
func (r Request) Validate() error {
	for _, field := range RequiredFields {
		var v string
		switch field {
		case "url":
			v = r.URL
		case "method":
			v = r.Method
		}
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}
	return nil
}

// NewHTTPRequest turns the descriptor into an *http.Request. Params are merged
// into the query string, Data is sent as a JSON body.
func (r Request) NewHTTPRequest(ctx context.Context) (*http.Request, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if len(r.Params) > 0 {
		q := u.Query()
		for _, k := range sortedKeys(r.Params) {
			q.Set(k, fmt.Sprint(r.Params[k]))
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if r.Data != nil {
		b, err := json.Marshal(r.Data)
		if err != nil {
			return nil, fmt.Errorf("encoding data: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(r.Method), u.String(), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, fmt.Sprint(v))
	}
	return req, nil
}

func sortedKeys(m PlainObject) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
