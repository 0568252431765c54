package query

import (
	"strings"
	"testing"
	"time"
)

func TestParseFieldsRoundTrip(t *testing.T) {
	mask, err := ParseFields("temperature,wind_speed, rain")
	if err != nil {
		t.Fatalf("ParseFields: %v", err)
	}
	want := FieldTemperature | FieldWindSpeed | FieldRain
	if mask != want {
		t.Fatalf("mask = %b, want %b", mask, want)
	}
}

func TestParseFieldsEmpty(t *testing.T) {
	mask, err := ParseFields("")
	if err != nil || mask != 0 {
		t.Fatalf("ParseFields(\"\") = %b, %v, want 0, nil", mask, err)
	}
}

func TestParseFieldsRejectsUnknown(t *testing.T) {
	if _, err := ParseFields("temperature,bogus"); err == nil {
		t.Fatal("expected error for unknown field name")
	}
}

func TestParseGranularity(t *testing.T) {
	for _, ok := range []string{"raw", "hour", "day", "month", "year"} {
		if _, valid := ParseGranularity(ok); !valid {
			t.Errorf("ParseGranularity(%q) rejected a valid value", ok)
		}
	}
	if _, valid := ParseGranularity("week"); valid {
		t.Error("ParseGranularity(\"week\") accepted an invalid value")
	}
}

func TestBuildStaticProjectsRequestedFieldsOnly(t *testing.T) {
	sqlText := BuildStatic(Day, FieldTemperature|FieldRain)

	for _, want := range []string{"temperature_avg", "temperature_min", "temperature_max", "rain_total", "weather_daily_summary"} {
		if !strings.Contains(sqlText, want) {
			t.Errorf("static query missing %q:\n%s", want, sqlText)
		}
	}
	for _, unwanted := range []string{"humidity", "pressure", "gust_speed"} {
		if strings.Contains(sqlText, unwanted) {
			t.Errorf("static query unexpectedly contains %q:\n%s", unwanted, sqlText)
		}
	}
}

func TestBuildStaticHourHasNoMinMax(t *testing.T) {
	sqlText := BuildStatic(Hour, FieldTemperature)
	if strings.Contains(sqlText, "temperature_min") {
		t.Errorf("hourly static query should not project min/max:\n%s", sqlText)
	}
}

func TestBuildStaticRawUsesBareColumns(t *testing.T) {
	sqlText := BuildStatic(Raw, FieldTemperature|FieldWindDirection)
	if !strings.Contains(sqlText, "FROM weather.weather_data") {
		t.Errorf("raw static query should hit the raw table:\n%s", sqlText)
	}
	if strings.Contains(sqlText, "temperature_avg") {
		t.Errorf("raw static query should select bare columns, not aggregates:\n%s", sqlText)
	}
}

func TestBuildDynamicAliasesMatchStaticColumns(t *testing.T) {
	fields := FieldTemperature | FieldWindDirection | FieldRain | FieldGustSpeed | FieldGustDirection

	staticSQL := BuildStatic(Day, fields)
	dynamicSQL := BuildDynamic(Day, fields)

	for _, alias := range []string{"temperature_avg", "temperature_min", "temperature_max", "wind_direction_avg", "rain_total", "gust_speed_max", "gust_direction_max"} {
		if !strings.Contains(staticSQL, alias) {
			t.Errorf("static query missing alias %q", alias)
		}
		if !strings.Contains(dynamicSQL, alias) {
			t.Errorf("dynamic query missing alias %q", alias)
		}
	}
}

func TestBuildDynamicIncludesWindRunOnlyForDay(t *testing.T) {
	day := BuildDynamic(Day, FieldWindSpeed)
	if !strings.Contains(day, "wind_run") {
		t.Errorf("daily dynamic query with wind_speed should include wind_run:\n%s", day)
	}

	hour := BuildDynamic(Hour, FieldWindSpeed)
	if strings.Contains(hour, "wind_run") {
		t.Errorf("hourly dynamic query should not include wind_run:\n%s", hour)
	}
}

func TestEquivalentSameZoneAlwaysTrue(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	eq, err := Equivalent("UTC", "UTC", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Fatal("UTC should be equivalent to itself across any range")
	}
}

func TestEquivalentDetectsDSTMismatch(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	eq, err := Equivalent("Europe/London", "UTC", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if eq {
		t.Fatal("Europe/London matches UTC in winter but observes DST and should not be offset-equivalent to UTC year round")
	}
}

func TestEquivalentRejectsUnknownZone(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := Equivalent("Not/AZone", "UTC", start, start); err == nil {
		t.Fatal("expected error for unknown zone name")
	}
}

func TestDecideStaticRawAlwaysStatic(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	static, err := DecideStatic(Raw, "America/New_York", "UTC", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if !static {
		t.Fatal("raw granularity must always use the static path")
	}
}

func TestDecideStaticSameZoneShortCircuits(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	static, err := DecideStatic(Day, "Europe/Madrid", "Europe/Madrid", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if !static {
		t.Fatal("identical requested and default zones should always take the static path")
	}
}
