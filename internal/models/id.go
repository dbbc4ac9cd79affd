package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is the canonical string form of an entity id. The remote API sends
// ids as strings in some queries and numbers in others; both decode to the
// same ID, so ids are compared with == everywhere else.
type ID string

// NewID normalizes a string or numeric id
func NewID(v any) ID {
	switch x := v.(type) {
	case nil:
		return ""
	case ID:
		return ID(strings.TrimSpace(string(x)))
	case string:
		return ID(strings.TrimSpace(x))
	case int:
		return ID(strconv.Itoa(x))
	case int64:
		return ID(strconv.FormatInt(x, 10))
	case uint64:
		return ID(strconv.FormatUint(x, 10))
	case float64:
		return ID(strconv.FormatFloat(x, 'f', -1, 64))
	case json.Number:
		return numberID(x)
	case fmt.Stringer:
		return ID(strings.TrimSpace(x.String()))
	default:
		return ID(strings.TrimSpace(fmt.Sprint(x)))
	}
}

// numberID formats whole numbers as integers, so 7, 7.0 and 7e0 are one id
func numberID(n json.Number) ID {
	if i, err := n.Int64(); err == nil {
		return ID(strconv.FormatInt(i, 10))
	}
	f, err := n.Float64()
	if err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return ID(strconv.FormatInt(int64(f), 10))
	}
	return ID(strings.TrimSpace(n.String()))
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the id is empty
func (id ID) IsZero() bool { return id == "" }

// UnmarshalJSON accepts a JSON string, a JSON number or null
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = NewID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: expected string or number, got %s", b)
	}
	*id = NewID(n)
	return nil
}
