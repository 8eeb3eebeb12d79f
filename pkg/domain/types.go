package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDArray maps an ordered id list onto a postgres uuid[] column.
type UUIDArray []uuid.UUID

func (u UUIDArray) Value() (driver.Value, error) {
	if u == nil {
		return nil, nil
	}
	strs := make([]string, len(u))
	for i, id := range u {
		strs[i] = id.String()
	}
	return pq.Array(strs).Value()
}

func (u *UUIDArray) Scan(value interface{}) error {
	if value == nil {
		*u = nil
		return nil
	}

	var strs []string
	if err := pq.Array(&strs).Scan(value); err != nil {
		return fmt.Errorf("failed to scan UUID array: %w", err)
	}

	ids := make([]uuid.UUID, len(strs))
	for i, str := range strs {
		id, err := uuid.Parse(strings.TrimSpace(str))
		if err != nil {
			return fmt.Errorf("failed to parse UUID %s: %w", str, err)
		}
		ids[i] = id
	}
	*u = ids
	return nil
}
