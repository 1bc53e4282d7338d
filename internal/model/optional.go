package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// OptionalInt is an integer that may be absent. Absent values are stored as
// NULL and encoded as JSON null.
type OptionalInt struct {
	Int   int
	Valid bool
}

// Some returns a present OptionalInt.
func Some(v int) OptionalInt {
	return OptionalInt{Int: v, Valid: true}
}

// ParseOptionalInt reads free-text form input. Blank or unparseable text is
// absent rather than an error.
func ParseOptionalInt(s string) OptionalInt {
	s = strings.TrimSpace(s)
	if s == "" {
		return OptionalInt{}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return OptionalInt{}
	}
	return Some(n)
}

// AtLeast reports whether the value is present and >= min.
func (o OptionalInt) AtLeast(min int) bool {
	return o.Valid && o.Int >= min
}

func (o OptionalInt) String() string {
	if !o.Valid {
		return ""
	}
	return strconv.Itoa(o.Int)
}

// Scan implements sql.Scanner.
func (o *OptionalInt) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*o = OptionalInt{}
	case int64:
		*o = Some(int(v))
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return fmt.Errorf("OptionalInt.Scan: %w", err)
		}
		*o = Some(n)
	default:
		return fmt.Errorf("OptionalInt.Scan: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (o OptionalInt) Value() (driver.Value, error) {
	if !o.Valid {
		return nil, nil
	}
	return int64(o.Int), nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(o.Int)), nil
}

// UnmarshalJSON accepts null, a number, or numeric text. Text that does not
// parse is treated as absent, same as form input.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = OptionalInt{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = ParseOptionalInt(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		*o = OptionalInt{}
		return nil
	}
	*o = Some(n)
	return nil
}
