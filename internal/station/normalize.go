package station

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// RawRecord is one undecoded station entry from a feed. Field values keep their
// original JSON encoding so numbers and numeric strings can both be accepted.
type RawRecord map[string]json.RawMessage

type feedEnvelope struct {
	Results json.RawMessage `json:"results"`
	Station json.RawMessage `json:"station"`
}

// DecodeFeed reads a feed document. The station array may be under "results"
// (upstream API) or "station" (reshaped proxy); "results" wins when both are
// arrays. Array elements that are not objects decode to nil records and are
// rejected later by ParseRecord.
func DecodeFeed(r io.Reader) ([]RawRecord, error) {
	var env feedEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedFeed, err.Error())
	}

	var payload json.RawMessage
	switch {
	case isArray(env.Results):
		payload = env.Results
	case isArray(env.Station):
		payload = env.Station
	default:
		return nil, fmt.Errorf("%w: missing results or station array", ErrMalformedFeed)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(payload, &elems); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedFeed, err.Error())
	}

	records := make([]RawRecord, len(elems))
	for i, elem := range elems {
		var rec RawRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			continue
		}
		records[i] = rec
	}
	return records, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// RecordError describes why a single feed record was rejected.
type RecordError struct {
	Index  int
	ID     string
	Field  string
	Reason string
}

func (e *RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (id %s): %s: %s", e.Index, e.ID, e.Field, e.Reason)
	}
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Reason)
}

// NormalizeResult holds the accepted stations, in input order, and the
// rejected records.
type NormalizeResult struct {
	Stations []Station
	Rejected []*RecordError
}

// Normalize parses every raw record, keeping valid stations in input order.
func Normalize(raw []RawRecord) NormalizeResult {
	result := NormalizeResult{
		Stations: make([]Station, 0, len(raw)),
	}
	for i, rec := range raw {
		s, err := parseRecord(rec)
		if err != nil {
			err.Index = i
			result.Rejected = append(result.Rejected, err)
			continue
		}
		result.Stations = append(result.Stations, s)
	}
	return result
}

// ParseRecord validates a single record, returning a *RecordError on failure.
func ParseRecord(rec RawRecord) (Station, error) {
	s, err := parseRecord(rec)
	if err != nil {
		return Station{}, err
	}
	return s, nil
}

func parseRecord(rec RawRecord) (Station, *RecordError) {
	if rec == nil {
		return Station{}, &RecordError{Field: "record", Reason: "not an object"}
	}

	id, ok := coerceID(rec["id"])
	if !ok {
		return Station{}, &RecordError{Field: "id", Reason: "missing or not a string or number"}
	}
	fail := func(field, reason string) (Station, *RecordError) {
		return Station{}, &RecordError{ID: id, Field: field, Reason: reason}
	}

	name := parseText(rec["name"])
	if name == "" {
		return fail("name", "missing")
	}
	address := parseText(rec["address"])
	if address == "" {
		return fail("address", "missing")
	}

	lat, ok := parseFinite(rec["x_pos"])
	if !ok {
		return fail("x_pos", "not a finite number")
	}
	lon, ok := parseFinite(rec["y_pos"])
	if !ok {
		return fail("y_pos", "not a finite number")
	}

	count, ok := parseFinite(rec["parking_count"])
	if !ok {
		return fail("parking_count", "not a finite number")
	}

	return Station{
		ID:           id,
		Name:         name,
		Address:      address,
		Lat:          lat,
		Lon:          lon,
		ParkingCount: bikeCount(count),
	}, nil
}

// bikeCount truncates a finite count toward zero. Negative counts mean no
// bikes.
func bikeCount(v float64) int {
	switch {
	case v <= 0:
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(v)
}

// coerceID accepts a JSON string or number and returns its string form.
func coerceID(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil && n != "" {
		return n.String(), true
	}
	return "", false
}

func parseText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// parseFinite accepts a JSON number or a string holding a number.
func parseFinite(raw json.RawMessage) (float64, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, false
		}
		text = n.String()
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Records converts stations back into raw feed records.
func Records(stations []Station) []RawRecord {
	records := make([]RawRecord, 0, len(stations))
	for _, s := range stations {
		records = append(records, RawRecord{
			"id":            quote(s.ID),
			"name":          quote(s.Name),
			"address":       quote(s.Address),
			"x_pos":         json.RawMessage(strconv.FormatFloat(s.Lat, 'g', -1, 64)),
			"y_pos":         json.RawMessage(strconv.FormatFloat(s.Lon, 'g', -1, 64)),
			"parking_count": json.RawMessage(strconv.Itoa(s.ParkingCount)),
		})
	}
	return records
}

func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s) //nolint:errcheck // strings always marshal
	return b
}
