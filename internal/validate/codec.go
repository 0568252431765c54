package validate

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
)

// RowsToJSON converts the remainder of rows into a JSON value. Column types
// are mapped by the database's reported type name: BOOL -> JSON boolean;
// INT2/INT4/INT8 -> JSON integer; FLOAT4/FLOAT8 -> JSON number; anything
// else -> JSON string; SQL NULL -> JSON null. An empty result set encodes
// as an empty array. A multi-row result encodes as an array of objects
// keyed by column name. A single-row result encodes as that single object,
// not wrapped in an array, only when canBeObject is true — callers doing a
// singleton lookup pass true; list endpoints always pass false.
func RowsToJSON(rows *sql.Rows, canBeObject bool) (json.RawMessage, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	n := len(colTypes)
	names := make([]string, n)
	kinds := make([]columnKind, n)
	for i, ct := range colTypes {
		names[i] = ct.Name()
		kinds[i] = classify(ct.DatabaseTypeName())
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		raw := make([]sql.RawBytes, n)
		ptrs := make([]any, n)
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		obj := make(map[string]any, n)
		for i := range raw {
			obj[names[i]] = convert(kinds[i], raw[i])
		}
		results = append(results, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(results) == 1 && canBeObject {
		return json.Marshal(results[0])
	}
	return json.Marshal(results)
}

type columnKind int

const (
	kindString columnKind = iota
	kindBool
	kindInt
	kindFloat
)

func classify(dbType string) columnKind {
	switch strings.ToUpper(dbType) {
	case "BOOL", "BOOLEAN":
		return kindBool
	case "INT2", "INT4", "INT8", "SMALLINT", "INTEGER", "BIGINT":
		return kindInt
	case "FLOAT4", "FLOAT8", "REAL", "DOUBLE PRECISION":
		return kindFloat
	default:
		return kindString
	}
}

func convert(kind columnKind, raw sql.RawBytes) any {
	if raw == nil {
		return nil
	}
	s := string(raw)
	switch kind {
	case kindBool:
		return s == "t" || s == "true" || s == "1"
	case kindInt:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return s
		}
		return v
	case kindFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return s
		}
		return v
	default:
		return s
	}
}
