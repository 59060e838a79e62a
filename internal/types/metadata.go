package types

import (
	"database/sql/driver"
	"encoding/json"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
)

// Metadata is a string key-value bag persisted as JSONB
type Metadata map[string]string

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return ierr.NewError("unsupported metadata column type").
			Mark(ierr.ErrDatabase)
	}
	return json.Unmarshal(data, m)
}
