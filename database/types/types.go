package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// StringList stores a list of short strings (emotion tags) as a JSONB array.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("StringList: cannot scan type %T", value)
	}
}

// GormDataType maps StringList to a jsonb column
func (StringList) GormDataType() string {
	return "jsonb"
}

// Document stores one raw JSON value in a JSONB column. It is used for the
// market snapshot sub-sections, which hold either provider data (an object
// or an array) or an error marker object. The payload is persisted exactly
// as received and echoed back verbatim on reads.
type Document []byte

// Value implements driver.Valuer
func (d Document) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return []byte(d), nil
}

// Scan implements sql.Scanner
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*d = append((*d)[:0], v...)
		return nil
	case string:
		*d = Document(v)
		return nil
	default:
		return fmt.Errorf("Document: cannot scan type %T", value)
	}
}

// MarshalJSON emits the stored payload verbatim
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON stores the payload verbatim
func (d *Document) UnmarshalJSON(data []byte) error {
	if d == nil {
		return errors.New("Document: UnmarshalJSON on nil pointer")
	}
	*d = append((*d)[:0], data...)
	return nil
}

// GormDataType maps Document to a jsonb column
func (Document) GormDataType() string {
	return "jsonb"
}
