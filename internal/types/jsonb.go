package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

var (
	_ sql.Scanner   = (*ConditionsSnapshot)(nil)
	_ driver.Valuer = ConditionsSnapshot{}
)

// scanJSONB decodes a JSONB column value into dest. Drivers hand JSONB back as
// either []byte or string depending on the protocol in use.
func scanJSONB(dest any, value any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, dest)
}

func valueJSONB(v any) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner.
func (s *ConditionsSnapshot) Scan(value any) error {
	if value == nil {
		*s = ConditionsSnapshot{}
		return nil
	}
	return scanJSONB(s, value)
}

// Value implements driver.Valuer.
func (s ConditionsSnapshot) Value() (driver.Value, error) {
	return valueJSONB(s)
}
