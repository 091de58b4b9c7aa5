// rawjson.go defines RawJSON, the column type for nullable JSONB data.
package models

import (
	"database/sql/driver"
	"fmt"
)

// RawJSON holds a JSONB column's document verbatim. Unlike json.RawMessage it
// scans a SQL NULL (to nil), which the platforms.api and projects.source_api
// columns both allow; a nil value round-trips back to NULL on write.
type RawJSON []byte

// Scan implements sql.Scanner. The driver's byte buffer is copied because it
// may be reused for the next row.
func (r *RawJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = nil
	case []byte:
		*r = append((*r)[:0], v...)
	case string:
		*r = RawJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into RawJSON", src)
	}
	return nil
}

// Value implements driver.Valuer, writing NULL for an empty document.
func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return []byte(r), nil
}

// MarshalJSON emits the stored document as-is.
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return []byte(r), nil
}

// UnmarshalJSON stores the document as-is.
func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}
