// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package tracker

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tomtom215/waypost/internal/models"
)

// SignalLayout is the vendor's wall-clock format for the signal field.
const SignalLayout = "2006/01/02 15:04:05"

// VendorLocation is the zone of signal times for a timezonemins offset. The
// offset follows the browser convention (minutes behind UTC), so -180 is UTC+3.
func VendorLocation(timezoneMinutes int) *time.Location {
	return time.FixedZone("vendor", -timezoneMinutes*60)
}

const (
	previewChars = 200
	maxBodySize  = 8 << 20
)

type markerPayload struct {
	AAData []json.RawMessage `json:"aaData"`
}

type rawMarker struct {
	IMEI   json.RawMessage `json:"imei"`
	Lat    json.RawMessage `json:"lat_google"`
	Lng    json.RawMessage `json:"lng_google"`
	Speed  json.RawMessage `json:"speed"`
	Signal json.RawMessage `json:"signal"`
}

// DecodeMarkers turns a marker list body into reports.
//
// The body must be a valid UTF-8 JSON object; a leading byte order mark is
// dropped. A missing or null aaData yields an empty slice. Any malformed
// record fails the whole payload. Signal times are read as wall-clock times
// in loc.
func DecodeMarkers(body []byte, loc *time.Location) ([]models.LocationReport, error) {
	if !utf8.Valid(body) {
		return nil, &DecodeError{Index: -1, Preview: preview(body), Err: errors.New("body is not valid UTF-8")}
	}

	text, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), body)
	if err != nil {
		return nil, &DecodeError{Index: -1, Preview: preview(body), Err: err}
	}

	if isNull(text) {
		return nil, &DecodeError{Index: -1, Preview: preview(text), Err: errors.New("payload is not a JSON object")}
	}

	var payload markerPayload
	if err := json.Unmarshal(text, &payload); err != nil {
		return nil, &DecodeError{Index: -1, Preview: preview(text), Err: err}
	}

	reports := make([]models.LocationReport, 0, len(payload.AAData))
	for i, raw := range payload.AAData {
		r, field, err := decodeMarker(raw, loc)
		if err != nil {
			return nil, &DecodeError{Index: i, Field: field, Preview: preview(raw), Err: err}
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func decodeMarker(raw json.RawMessage, loc *time.Location) (models.LocationReport, string, error) {
	var m rawMarker
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.LocationReport{}, "record", fmt.Errorf("record is not an object: %w", err)
	}

	var (
		r   models.LocationReport
		err error
	)
	if r.IMEI, err = flexString(m.IMEI); err != nil {
		return r, "imei", err
	}
	if r.Lat, err = flexFloat(m.Lat); err != nil {
		return r, "lat_google", err
	}
	if r.Lng, err = flexFloat(m.Lng); err != nil {
		return r, "lng_google", err
	}
	if r.Speed, err = flexFloat(m.Speed); err != nil {
		return r, "speed", err
	}

	var signal string
	if err = json.Unmarshal(m.Signal, &signal); err != nil || signal == "" {
		return r, "signal", errors.New("missing or non-string signal")
	}
	if r.Signal, err = time.ParseInLocation(SignalLayout, strings.TrimSpace(signal), loc); err != nil {
		return r, "signal", err
	}
	return r, "", nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// flexFloat accepts a JSON number or a string holding one.
func flexFloat(raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return 0, errors.New("missing value")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

// flexString accepts a non-empty JSON string or a JSON number.
func flexString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", errors.New("missing value")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		if s = strings.TrimSpace(s); s == "" {
			return "", errors.New("empty string")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number: %w", err)
	}
	return n.String(), nil
}

// decompress undoes Content-Encoding. The explicit Accept-Encoding header
// turns off net/http's transparent gzip handling.
func decompress(encoding string, raw []byte) ([]byte, error) {
	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case "deflate":
		br := bufio.NewReader(bytes.NewReader(raw))
		if isZlibHeader(br) {
			zr, err := zlib.NewReader(br)
			if err != nil {
				return nil, err
			}
			defer zr.Close()
			r = zr
		} else {
			fr := flate.NewReader(br)
			defer fr.Close()
			r = fr
		}
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}

	out, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > maxBodySize {
		return nil, fmt.Errorf("decompressed body exceeds %d bytes", maxBodySize)
	}
	return out, nil
}

// isZlibHeader reports whether the stream starts with an RFC 1950 header.
// Some servers send raw RFC 1951 data for "deflate".
func isZlibHeader(br *bufio.Reader) bool {
	h, err := br.Peek(2)
	if err != nil {
		return false
	}
	return h[0]&0x0f == 8 && (uint16(h[0])<<8|uint16(h[1]))%31 == 0
}

func preview(body []byte) string {
	s := strings.ToValidUTF8(string(body), "\uFFFD")
	if utf8.RuneCountInString(s) <= previewChars {
		return s
	}
	n := 0
	for i := range s {
		if n == previewChars {
			return s[:i]
		}
		n++
	}
	return s
}
