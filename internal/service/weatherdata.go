package service

import (
	"context"
	"time"

	"github.com/ljn0099/picoweather/internal/query"
	"github.com/ljn0099/picoweather/internal/validate"
)

const timestampLayout = "2006-01-02T15:04:05"

func parseTimestamp(s, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(timestampLayout, s, loc)
}

// WeatherDataList implements weather_data_list: drives the query composer
// (C4) to decide between the static and dynamic SQL paths, then runs the
// composed query against the borrowed connection.
func (s *Services) WeatherDataList(ctx context.Context, stationRef, granularityStr, startStr, endStr, timezone, fieldsCSV string) Result {
	granularity, ok := query.ParseGranularity(granularityStr)
	if !ok {
		return outcome(InvalidParams)
	}
	if !validate.Timestamp(startStr) || !validate.Timestamp(endStr) {
		return outcome(InvalidParams)
	}
	fields, err := query.ParseFields(fieldsCSV)
	if err != nil {
		return outcome(InvalidParams)
	}

	tz := timezone
	if tz == "" {
		tz = s.defaultTZ
	}

	start, err := parseTimestamp(startStr, tz)
	if err != nil {
		return outcome(InvalidParams)
	}
	end, err := parseTimestamp(endStr, tz)
	if err != nil {
		return outcome(InvalidParams)
	}

	useStatic, err := query.DecideStatic(granularity, tz, s.defaultTZ, start, end)
	if err != nil {
		return outcome(InvalidParams)
	}

	h := s.pool.Acquire()
	defer h.Release()

	if err := query.ResetTimeZone(ctx, h, tz); err != nil {
		return outcome(DBError)
	}

	var sqlText string
	if useStatic {
		sqlText = query.BuildStatic(granularity, fields)
	} else {
		sqlText = query.BuildDynamic(granularity, fields)
	}

	rows, err := h.QueryContext(ctx, sqlText, stationRef, start, end)
	if err != nil {
		return outcome(DBError)
	}
	body, err := validate.RowsToJSON(rows, false)
	if err != nil {
		return outcome(JSONError)
	}
	return ok(body)
}
