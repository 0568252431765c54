package service

import "testing"

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{
		OK:            "OK",
		InvalidParams: "INVALID_PARAMS",
		AuthError:     "AUTH_ERROR",
		NotFound:      "NOT_FOUND",
		Forbidden:     "FORBIDDEN",
		DBError:       "DB_ERROR",
		MemoryError:   "MEMORY_ERROR",
		JSONError:     "JSON_ERROR",
	}
	for outcome, want := range cases {
		if got := outcome.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", outcome, got, want)
		}
	}
}

func TestEmptyArray(t *testing.T) {
	if !emptyArray([]byte("[]")) {
		t.Error("expected \"[]\" to be recognized as empty")
	}
	if emptyArray([]byte(`[{"a":1}]`)) {
		t.Error("expected a non-empty array not to be recognized as empty")
	}
	if emptyArray([]byte(`{"a":1}`)) {
		t.Error("expected a bare object not to be recognized as the empty array")
	}
}

func TestParseTimestampUsesZone(t *testing.T) {
	madrid, err := parseTimestamp("2026-06-01T12:00:00", "Europe/Madrid")
	if err != nil {
		t.Fatal(err)
	}
	utc, err := parseTimestamp("2026-06-01T12:00:00", "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if madrid.Equal(utc) {
		t.Error("the same wall clock in different zones should not be the same instant")
	}
}

func TestParseTimestampRejectsUnknownZone(t *testing.T) {
	if _, err := parseTimestamp("2026-06-01T12:00:00", "Not/AZone"); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}
