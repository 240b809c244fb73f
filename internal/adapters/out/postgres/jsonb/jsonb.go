// Package jsonb maps Go values onto PostgreSQL JSONB columns.
package jsonb

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Value wraps V so that GORM stores it as JSON. A NULL column scans into the zero
// value of T.
type Value[T any] struct {
	V T
}

func Of[T any](v T) Value[T] {
	return Value[T]{V: v}
}

func (j Value[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *Value[T]) Scan(src any) error {
	var zero T
	j.V = zero
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, &j.V)
	case string:
		return json.Unmarshal([]byte(v), &j.V)
	default:
		return fmt.Errorf("jsonb: cannot scan %T", src)
	}
}
