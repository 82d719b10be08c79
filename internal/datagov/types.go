package datagov

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/five82/epiwatch/internal/surveillance"
)

// searchResponse mirrors the datastore_search envelope.
type searchResponse struct {
	Success *bool           `json:"success"`
	Result  json.RawMessage `json:"result"`
}

type searchResult struct {
	Records json.RawMessage `json:"records"`
	Total   json.RawMessage `json:"total"`
}

// rawRecord keeps every field raw so numeric strings and numbers can both be
// coerced, and so missing fields can be told apart from zero values.
type rawRecord struct {
	ID             json.RawMessage `json:"_id"`
	AgeGroups      json.RawMessage `json:"age_groups"`
	ClinicalStatus json.RawMessage `json:"clinical_status"`
	Count          json.RawMessage `json:"count"`
	EpiYear        json.RawMessage `json:"epi_year"`
	EpiWeek        json.RawMessage `json:"epi_week"`
}

// page is one decoded datastore_search response.
type page struct {
	Records  []surveillance.Record
	Total    int
	HasTotal bool
}

var errMissing = errors.New("missing or null")

func decodePage(body []byte) (page, error) {
	var envelope searchResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return page{}, malformed(err, "decode body")
	}
	if isNull(envelope.Result) {
		if envelope.Success != nil && !*envelope.Success {
			return page{}, malformed(nil, "api reported success=false without a result")
		}
		return page{}, malformed(nil, "result is missing")
	}

	var result searchResult
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return page{}, malformed(err, "result is not an object")
	}
	if isNull(result.Records) {
		return page{}, malformed(nil, "result.records is missing")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(result.Records, &items); err != nil {
		return page{}, malformed(err, "result.records is not an array")
	}

	records := make([]surveillance.Record, 0, len(items))
	seen := make(map[string]int, len(items))
	for i, item := range items {
		rec, err := decodeRecord(item)
		if err != nil {
			return page{}, malformed(err, "record %d", i)
		}
		if prev, dup := seen[rec.ID]; dup {
			return page{}, malformed(nil, "record %d: duplicate _id %q (first seen at record %d)", i, rec.ID, prev)
		}
		seen[rec.ID] = i
		records = append(records, rec)
	}

	out := page{Records: records}
	if !isNull(result.Total) {
		if total, err := coerceInt(result.Total); err == nil {
			out.Total = total
			out.HasTotal = true
		}
	}
	return out, nil
}

func decodeRecord(raw json.RawMessage) (surveillance.Record, error) {
	if isNull(raw) {
		return surveillance.Record{}, errors.New("record is null")
	}
	var r rawRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return surveillance.Record{}, fmt.Errorf("record is not an object: %w", err)
	}

	var (
		rec surveillance.Record
		err error
	)
	if rec.ID, err = decodeID(r.ID); err != nil {
		return rec, fmt.Errorf("_id: %w", err)
	}
	if rec.AgeGroup, err = decodeString(r.AgeGroups); err != nil {
		return rec, fmt.Errorf("age_groups: %w", err)
	}
	if rec.ClinicalStatus, err = decodeString(r.ClinicalStatus); err != nil {
		return rec, fmt.Errorf("clinical_status: %w", err)
	}
	if rec.Count, err = decodeInt(r.Count); err != nil {
		return rec, fmt.Errorf("count: %w", err)
	}
	if rec.Count < 0 {
		return rec, fmt.Errorf("count: %d is negative", rec.Count)
	}
	if rec.EpiYear, err = decodeInt(r.EpiYear); err != nil {
		return rec, fmt.Errorf("epi_year: %w", err)
	}
	if rec.EpiWeek, err = decodeInt(r.EpiWeek); err != nil {
		return rec, fmt.Errorf("epi_week: %w", err)
	}
	if rec.EpiWeek < 1 || rec.EpiWeek > 53 {
		return rec, fmt.Errorf("epi_week: %d outside 1-53", rec.EpiWeek)
	}
	return rec, nil
}

// decodeID accepts a non-empty string or an integral number.
func decodeID(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", errMissing
	}
	if isString(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		if strings.TrimSpace(s) == "" {
			return "", errors.New("empty id")
		}
		return s, nil
	}
	n, err := coerceInt(raw)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", errMissing
	}
	if !isString(raw) {
		return "", fmt.Errorf("want string, got %s", truncateRaw(raw))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeInt(raw json.RawMessage) (int, error) {
	if isNull(raw) {
		return 0, errMissing
	}
	return coerceInt(raw)
}

// coerceInt converts a JSON number or numeric string into an int. Integral
// floats ("5.0", 5e1) are accepted; fractions and non-numeric values are not.
func coerceInt(raw json.RawMessage) (int, error) {
	var text string
	switch {
	case isString(raw):
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, fmt.Errorf("want integer, got %s", truncateRaw(raw))
		}
		text = n.String()
	}
	if text == "" {
		return 0, errors.New("want integer, got empty string")
	}
	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("want integer, got %q", text)
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("want integer, got %q", text)
	}
	return int(f), nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

func truncateRaw(raw json.RawMessage) string {
	s := string(bytes.TrimSpace(raw))
	if len(s) > 32 {
		return s[:29] + "..."
	}
	return s
}
