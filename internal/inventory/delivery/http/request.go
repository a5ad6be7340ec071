package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// maxBodyBytes caps request bodies; every payload is a handful of fields.
const maxBodyBytes = 1 << 20

var (
	errNotObject = errors.New("request body must be a JSON object")
	errWrongType = errors.New("field has the wrong type")
)

// requestFields is a decoded JSON object whose values are checked one by
// one, so a wrong type can be told apart from a missing field.
type requestFields map[string]json.RawMessage

func decodeFields(r *http.Request) (requestFields, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, errNotObject
	}

	var fields requestFields
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errNotObject
	}
	return fields, nil
}

// present reports whether key was sent with a non-null value.
func (f requestFields) present(key string) bool {
	raw, ok := f[key]
	return ok && !bytes.Equal(raw, []byte("null"))
}

// str returns a JSON string field. Missing, null and non-string values all
// yield ok=false.
func (f requestFields) str(key string) (string, bool) {
	if !f.present(key) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(f[key], &s); err != nil {
		return "", false
	}
	return s, true
}

// integer returns a JSON integer literal field. Strings, booleans, fractions,
// exponents and values outside the int range are rejected with errWrongType;
// a missing or null field returns (nil, nil).
func (f requestFields) integer(key string) (*int, error) {
	if !f.present(key) {
		return nil, nil
	}
	literal := string(f[key])
	if strings.ContainsAny(literal, ".eE") {
		return nil, errWrongType
	}

	v, err := strconv.ParseInt(literal, 10, strconv.IntSize)
	if err != nil {
		return nil, errWrongType
	}
	i := int(v)
	return &i, nil
}
