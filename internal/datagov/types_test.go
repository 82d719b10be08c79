package datagov

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestCoerceInt(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: `5`, want: 5},
		{raw: `"5"`, want: 5},
		{raw: `" 42 "`, want: 42},
		{raw: `5.0`, want: 5},
		{raw: `"5.0"`, want: 5},
		{raw: `5e1`, want: 50},
		{raw: `-3`, want: -3},
		{raw: `5.5`, wantErr: true},
		{raw: `"abc"`, wantErr: true},
		{raw: `""`, wantErr: true},
		{raw: `true`, wantErr: true},
		{raw: `{}`, wantErr: true},
		{raw: `"NaN"`, wantErr: true},
		{raw: `1e300`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := coerceInt(json.RawMessage(tc.raw))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("coerceInt(%s) = %d, want error", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("coerceInt(%s) error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("coerceInt(%s) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestDecodePage_Valid(t *testing.T) {
	p, err := decodePage([]byte(`{"success":true,"result":{"total":"10","records":[
		{"_id":"a","age_groups":"Age 50+","clinical_status":"Hospitalised","count":"7","epi_year":2024,"epi_week":"1"},
		{"_id":9,"age_groups":"","clinical_status":"Active","count":0,"epi_year":"2024","epi_week":53}
	]}}`))
	if err != nil {
		t.Fatalf("decodePage error: %v", err)
	}
	if len(p.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(p.Records))
	}
	if !p.HasTotal || p.Total != 10 {
		t.Fatalf("HasTotal=%v Total=%d, want true/10", p.HasTotal, p.Total)
	}

	first, second := p.Records[0], p.Records[1]
	if first.ID != "a" || first.AgeGroup != "Age 50+" || first.Count != 7 {
		t.Fatalf("first record = %#v", first)
	}
	if second.ID != "9" || second.AgeGroup != "" || second.EpiWeek != 53 {
		t.Fatalf("second record = %#v", second)
	}
}

func TestDecodePage_EmptyRecordsIsNotAnError(t *testing.T) {
	p, err := decodePage([]byte(`{"result":{"records":[]}}`))
	if err != nil {
		t.Fatalf("decodePage error: %v", err)
	}
	if p.Records == nil || len(p.Records) != 0 {
		t.Fatalf("Records = %#v, want empty non-nil slice", p.Records)
	}
	if p.HasTotal {
		t.Fatalf("HasTotal = true for a page without total")
	}
}

func TestDecodePage_UnparseableTotalIsIgnored(t *testing.T) {
	p, err := decodePage([]byte(`{"result":{"total":"lots","records":[]}}`))
	if err != nil {
		t.Fatalf("decodePage error: %v", err)
	}
	if p.HasTotal {
		t.Fatalf("HasTotal = true, want unparseable total ignored")
	}
}

func TestDecodePage_Malformed(t *testing.T) {
	record := func(fields string) string {
		return `{"result":{"records":[` + fields + `]}}`
	}
	cases := []struct {
		name   string
		body   string
		reason string
	}{
		{"not json", `<html>`, "decode body"},
		{"missing result", `{"success":true}`, "result is missing"},
		{"success false", `{"success":false,"error":{"message":"x"}}`, "success=false"},
		{"result not object", `{"result":[1,2]}`, "result is not an object"},
		{"missing records", `{"result":{"total":0}}`, "result.records is missing"},
		{"records not array", `{"result":{"records":{"a":1}}}`, "not an array"},
		{"null record", record(`null`), "record 0"},
		{"missing id", record(`{"age_groups":"a","clinical_status":"b","count":1,"epi_year":2023,"epi_week":1}`), "record 0"},
		{"numeric status", record(`{"_id":"1","age_groups":"a","clinical_status":3,"count":1,"epi_year":2023,"epi_week":1}`), "record 0"},
		{"bad count", record(`{"_id":"1","age_groups":"a","clinical_status":"b","count":"many","epi_year":2023,"epi_week":1}`), "record 0"},
		{"negative count", record(`{"_id":"1","age_groups":"a","clinical_status":"b","count":-1,"epi_year":2023,"epi_week":1}`), "record 0"},
		{"week zero", record(`{"_id":"1","age_groups":"a","clinical_status":"b","count":1,"epi_year":2023,"epi_week":0}`), "record 0"},
		{"week 54", record(`{"_id":"1","age_groups":"a","clinical_status":"b","count":1,"epi_year":2023,"epi_week":54}`), "record 0"},
		{"duplicate id", record(
			`{"_id":"1","age_groups":"a","clinical_status":"b","count":1,"epi_year":2023,"epi_week":1},` +
				`{"_id":1,"age_groups":"a","clinical_status":"b","count":1,"epi_year":2023,"epi_week":2}`), "duplicate _id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodePage([]byte(tc.body))
			if err == nil {
				t.Fatalf("decodePage(%s) succeeded, want error", tc.body)
			}

			var malformedErr *MalformedResponseError
			if !errors.As(err, &malformedErr) {
				t.Fatalf("want *MalformedResponseError, got %T", err)
			}
			if !strings.Contains(err.Error(), tc.reason) {
				t.Fatalf("error %q does not mention %q", err, tc.reason)
			}
		})
	}
}

func TestDecodeRecord_MissingFieldWrapsErrMissing(t *testing.T) {
	_, err := decodeRecord(json.RawMessage(`{"_id":"1","age_groups":"a","clinical_status":"b","epi_year":2023,"epi_week":1}`))
	if !errors.Is(err, errMissing) {
		t.Fatalf("error = %v, want errMissing", err)
	}
	if !strings.Contains(err.Error(), "count") {
		t.Fatalf("error %q does not name the field", err)
	}
}
