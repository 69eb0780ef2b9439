package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"ratesvc/internal/domain/fees"
)

// RateEntries stores a rate list as a single JSON column.
type RateEntries []fees.RateEntry

// Value implements the driver.Valuer interface
func (r RateEntries) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (r *RateEntries) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*r = RateEntries{}
		return nil
	default:
		return fmt.Errorf("unsupported rate list column type %T", value)
	}
	return json.Unmarshal(data, r)
}
