// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating request data:
// bounded JSON bodies, month parameters and transaction filters.

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

	"budget/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var (
	errEmptyBody      = errors.New("request body is empty")
	errTrailingData   = errors.New("request body must contain a single JSON object")
	errIncompleteSpan = errors.New("from and to must be given together")
	errInvertedSpan   = errors.New("from must not be after to")
	errFilterType     = errors.New("type must be income, expense or all")
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using
// today as the default. Out-of-range or malformed values are ignored.
func ParseMonthParams(query url.Values, today core.Date) MonthParams {
	params := MonthParams{
		Year:  today.Year(),
		Month: today.Month(),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y >= 1 && y <= 9999 {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = m
		}
	}

	return params
}

// ParseFilter builds a transaction filter from query parameters. An explicit
// from/to span wins over year/month; with neither the current month is used.
// category and type default to all.
func ParseFilter(query url.Values, today core.Date) (core.Filter, error) {
	from := strings.TrimSpace(query.Get("from"))
	to := strings.TrimSpace(query.Get("to"))

	var f core.Filter
	switch {
	case from == "" && to == "":
		m := ParseMonthParams(query, today)
		f = core.MonthFilter(m.Year, m.Month)
	case from == "" || to == "":
		return core.Filter{}, errIncompleteSpan
	default:
		var err error
		if f.DateFrom, err = core.ParseDate(from); err != nil {
			return core.Filter{}, fmt.Errorf("from: %w", err)
		}
		if f.DateTo, err = core.ParseDate(to); err != nil {
			return core.Filter{}, fmt.Errorf("to: %w", err)
		}
		if f.DateFrom.After(f.DateTo) {
			return core.Filter{}, errInvertedSpan
		}
	}

	f.Category = core.FilterAll
	if c := sanitizeInput(query.Get("category")); c != "" {
		f.Category = c
	}
	f.Type = core.FilterAll
	if t := sanitizeInput(query.Get("type")); t != "" {
		if t != core.FilterAll && !core.TransactionType(t).Valid() {
			return core.Filter{}, errFilterType
		}
		f.Type = t
	}
	return f, nil
}

// decodeJSON reads a single JSON object from the request body into v.
// Unknown fields are rejected so typos do not silently drop data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
