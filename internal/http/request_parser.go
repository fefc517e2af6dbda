package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"budget/internal/query"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// listParams is what a list endpoint reads from the query string.
type listParams struct {
	Parameters  *query.Parameters
	WithDeleted bool
}

// parseListParams reads role, name, status, year, asc, desc, page, limit and
// with_deleted. Parameters stays nil when none of the filter keys are set.
func parseListParams(values url.Values) (listParams, error) {
	var (
		out listParams
		p   query.Parameters
		set bool
	)

	for key, dst := range map[string]*string{
		"role":   &p.Role,
		"name":   &p.Name,
		"status": &p.Status,
		"asc":    &p.Asc,
		"desc":   &p.Desc,
	} {
		if v := sanitizeInput(values.Get(key)); v != "" {
			*dst = v
			set = true
		}
	}

	for key, dst := range map[string]*int{
		"year":  &p.Year,
		"page":  &p.Page,
		"limit": &p.Limit,
	} {
		v := strings.TrimSpace(values.Get(key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return out, badRequest("invalid %s %q", key, v)
		}
		*dst = n
		set = true
	}

	if v := strings.TrimSpace(values.Get("with_deleted")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return out, badRequest("invalid with_deleted %q", v)
		}
		out.WithDeleted = b
	}

	if set {
		out.Parameters = &p
	}
	return out, nil
}

// parseBoolParam returns def when key is absent.
func parseBoolParam(values url.Values, key string, def bool) (bool, error) {
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest("invalid %s %q", key, v)
	}
	return b, nil
}

// parseIntParam parses a required positive integer.
func parseIntParam(key, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, badRequest("invalid %s %q", key, v)
	}
	return n, nil
}

// decodeJSON decodes a single JSON object from the body into dst, rejecting
// unknown fields and bodies over maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &requestError{status: http.StatusRequestEntityTooLarge, msg: "request body too large"}
		case errors.Is(err, io.EOF):
			return badRequest("empty request body")
		default:
			return badRequest("invalid JSON: %v", err)
		}
	}
	if dec.More() {
		return badRequest("request body must hold a single JSON object")
	}
	return nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// requestError is a client error detected before reaching a service.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}
