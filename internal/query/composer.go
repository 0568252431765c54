// Package query is the dynamic SQL composer for historical weather
// queries. It builds SELECTs from a field bitmask and a requested
// granularity, and decides between the pre-aggregated summary tables and
// an on-the-fly aggregation over the raw table based on timezone
// equivalence across the requested range.
package query

import (
	"fmt"
	"strings"
)

// Granularity is the requested aggregation bucket width.
type Granularity string

const (
	Raw   Granularity = "raw"
	Hour  Granularity = "hour"
	Day   Granularity = "day"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// ParseGranularity validates and normalizes a granularity query parameter.
func ParseGranularity(s string) (Granularity, bool) {
	switch Granularity(s) {
	case Raw, Hour, Day, Month, Year:
		return Granularity(s), true
	default:
		return "", false
	}
}

// Field is a single bit in the projection bitmask. Each bit names one
// logical sensor quantity; the composer maps it to either a bare raw
// column (granularity == Raw), a pre-aggregated summary column (static
// path), or a computed aggregate expression (dynamic path), depending on
// the granularity in play.
type Field uint16

const (
	FieldTemperature Field = 1 << iota
	FieldHumidity
	FieldPressure
	FieldIlluminance
	FieldUVIndex
	FieldWindSpeed
	FieldWindDirection
	FieldRain
	FieldGustSpeed
	FieldGustDirection
)

// fieldOrder fixes the deterministic projection order shared by every
// granularity and both the static and dynamic paths.
var fieldOrder = []struct {
	bit  Field
	name string
}{
	{FieldTemperature, "temperature"},
	{FieldHumidity, "humidity"},
	{FieldPressure, "pressure"},
	{FieldIlluminance, "illuminance"},
	{FieldUVIndex, "uv_index"},
	{FieldWindSpeed, "wind_speed"},
	{FieldWindDirection, "wind_direction"},
	{FieldRain, "rain"},
	{FieldGustSpeed, "gust_speed"},
	{FieldGustDirection, "gust_direction"},
}

// ParseFields parses a comma-separated list of field names (as carried on
// the weather-data endpoint's "fields" query parameter) into a bitmask.
// An unknown name is reported as an error; an empty string yields a zero
// bitmask (only period_start/period_end are projected).
func ParseFields(csv string) (Field, error) {
	var mask Field
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return 0, nil
	}
	for _, part := range strings.Split(csv, ",") {
		name := strings.TrimSpace(part)
		bit, ok := fieldByName(name)
		if !ok {
			return 0, fmt.Errorf("query: unknown field %q", name)
		}
		mask |= bit
	}
	return mask, nil
}

func fieldByName(name string) (Field, bool) {
	for _, f := range fieldOrder {
		if f.name == name {
			return f.bit, true
		}
	}
	return 0, false
}

// summaryTable maps a granularity to its pre-aggregated table name.
func summaryTable(g Granularity) string {
	switch g {
	case Raw:
		return "weather_data"
	case Hour:
		return "weather_hourly_summary"
	case Day:
		return "weather_daily_summary"
	case Month:
		return "weather_monthly_summary"
	case Year:
		return "weather_yearly_summary"
	default:
		return ""
	}
}

// bucketInterval returns the generate_series step / date_trunc unit for a
// summary granularity. Raw has no bucket — it is never used on the dynamic
// path.
func bucketInterval(g Granularity) string {
	switch g {
	case Hour:
		return "1 hour"
	case Day:
		return "1 day"
	case Month:
		return "1 month"
	case Year:
		return "1 year"
	default:
		return ""
	}
}

func truncUnit(g Granularity) string {
	switch g {
	case Hour:
		return "hour"
	case Day:
		return "day"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return ""
	}
}

// windDirectionAvgExpr computes the vector-sum circular mean of wind
// direction, undefined (NULL) when the bucket has no wind observations.
const windDirectionAvgExpr = "CASE WHEN COUNT(wind_speed) = 0 THEN NULL ELSE " +
	"MOD(DEGREES(ATAN2(SUM(wind_speed * SIN(RADIANS(wind_direction))), " +
	"SUM(wind_speed * COS(RADIANS(wind_direction))))) + 360, 360) END"

// staticColumns returns, for a set field bit and granularity, the ordered
// list of bare column names to select from the pre-aggregated summary
// table (or the raw table, for granularity == Raw).
func staticColumns(bit Field, name string, g Granularity) []string {
	if g == Raw {
		return []string{name}
	}
	switch bit {
	case FieldWindDirection:
		return []string{name + "_avg"}
	case FieldRain:
		return []string{name + "_total"}
	case FieldGustSpeed:
		return []string{name + "_max"}
	case FieldGustDirection:
		return []string{name + "_max"}
	default:
		cols := []string{name + "_avg", name + "_stddev"}
		if g == Day || g == Month || g == Year {
			cols = append(cols, name+"_min", name+"_max")
			if bit == FieldWindSpeed && g == Day {
				cols = append(cols, "wind_run")
			}
		}
		return cols
	}
}

// dynamicExprs returns, for a set field bit and granularity, the ordered
// list of "<expr> AS <alias>" aggregate fragments computed over the raw
// table for the dynamic (on-the-fly bucketing) path. Aliases exactly
// match the static path's column names so both paths shape identical
// JSON.
func dynamicExprs(bit Field, name string, g Granularity) []string {
	switch bit {
	case FieldWindDirection:
		return []string{fmt.Sprintf("%s AS %s_avg", windDirectionAvgExpr, name)}
	case FieldRain:
		return []string{fmt.Sprintf("SUM(r.%s) AS %s_total", name, name)}
	case FieldGustSpeed:
		return []string{fmt.Sprintf("MAX(r.%s) AS %s_max", name, name)}
	case FieldGustDirection:
		return []string{fmt.Sprintf(
			"(SELECT r2.gust_direction FROM readings r2 WHERE r2.ts >= b.bucket_start AND r2.ts < b.bucket_start + interval '%s' ORDER BY r2.gust_speed DESC NULLS LAST LIMIT 1) AS %s_max",
			bucketInterval(g), name,
		)}
	default:
		exprs := []string{
			fmt.Sprintf("AVG(r.%s) AS %s_avg", name, name),
			fmt.Sprintf("STDDEV(r.%s) AS %s_stddev", name, name),
		}
		if g == Day || g == Month || g == Year {
			exprs = append(exprs,
				fmt.Sprintf("MIN(r.%s) AS %s_min", name, name),
				fmt.Sprintf("MAX(r.%s) AS %s_max", name, name),
			)
			if bit == FieldWindSpeed && g == Day {
				exprs = append(exprs, "SUM(r.wind_speed * EXTRACT(EPOCH FROM r.delta) / 3600.0) AS wind_run")
			}
		}
		return exprs
	}
}

// rawColumns is the full projection available on the raw table, always
// selected into the dynamic path's "readings" CTE so every aggregate
// expression above has its source column in scope.
var rawColumns = []string{
	"temperature", "humidity", "pressure", "illuminance", "uv_index",
	"wind_speed", "wind_direction", "rain", "gust_speed", "gust_direction",
}

// BuildStatic renders the static-path query: a SELECT against the
// appropriate pre-aggregated table (or the raw table for granularity ==
// Raw), projecting only the requested fields, per the frozen §6.4 SQL
// contract. Parameters are $1 = station reference, $2 = start time,
// $3 = end time.
func BuildStatic(g Granularity, fields Field) string {
	cols := []string{"lower(time_range) AS period_start", "upper(time_range) AS period_end"}
	for _, f := range fieldOrder {
		if fields&f.bit == 0 {
			continue
		}
		cols = append(cols, staticColumns(f.bit, f.name, g)...)
	}

	return fmt.Sprintf(
		"SELECT %s FROM weather.%s WHERE station_id = (SELECT station_id FROM stations.stations WHERE name = $1 OR uuid::text = $1) AND time_range && tstzrange($2,$3) ORDER BY lower(time_range)",
		strings.Join(cols, ", "), summaryTable(g),
	)
}

// BuildDynamic renders the dynamic-path query: local-timezone buckets
// generated with generate_series, aggregating the raw table into them.
// Parameters are $1 = station reference, $2 = start time, $3 = end time.
// The caller must have already issued SET TIME ZONE on the borrowed
// connection so date_trunc/generate_series operate in the requester's
// zone.
func BuildDynamic(g Granularity, fields Field) string {
	interval := bucketInterval(g)
	unit := truncUnit(g)

	readingsCTE := fmt.Sprintf(`readings AS (
  SELECT
    lower(time_range) AS ts,
    %s,
    lower(time_range) - LAG(lower(time_range)) OVER (ORDER BY lower(time_range)) AS delta
  FROM weather.weather_data
  WHERE station_id = (SELECT station_id FROM stations.stations WHERE name = $1 OR uuid::text = $1)
    AND time_range && tstzrange($2,$3)
)`, strings.Join(rawColumns, ", "))

	bucketsCTE := fmt.Sprintf(`buckets AS (
  SELECT generate_series(date_trunc('%s', $2::timestamptz), date_trunc('%s', $3::timestamptz), interval '%s') AS bucket_start
)`, unit, unit, interval)

	cols := []string{
		"b.bucket_start AS period_start",
		fmt.Sprintf("b.bucket_start + interval '%s' AS period_end", interval),
	}
	for _, f := range fieldOrder {
		if fields&f.bit == 0 {
			continue
		}
		cols = append(cols, dynamicExprs(f.bit, f.name, g)...)
	}

	return fmt.Sprintf(`WITH %s,
%s
SELECT %s
FROM buckets b
LEFT JOIN readings r ON r.ts >= b.bucket_start AND r.ts < b.bucket_start + interval '%s'
GROUP BY b.bucket_start
ORDER BY b.bucket_start`, readingsCTE, bucketsCTE, strings.Join(cols, ",\n  "), interval)
}
