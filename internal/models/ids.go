package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/myrjola/interrogation/internal/errors"
)

// SecretSet is an immutable set of secret ids. The zero value is the empty set.
//
// Every SuspectState owns its own set. Mutating operations return a new set and never touch the receiver.
type SecretSet struct {
	ids []int64
}

// NewSecretSet returns a set with the given ids.
func NewSecretSet(ids ...int64) SecretSet {
	return SecretSet{}.With(ids...)
}

// With returns a copy of the set extended with ids.
func (s SecretSet) With(ids ...int64) SecretSet {
	merged := make([]int64, 0, len(s.ids)+len(ids))
	merged = append(merged, s.ids...)
	merged = append(merged, ids...)
	slices.Sort(merged)
	return SecretSet{ids: slices.Compact(merged)}
}

// Contains reports whether id is in the set.
func (s SecretSet) Contains(id int64) bool {
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// Len returns the number of ids in the set.
func (s SecretSet) Len() int {
	return len(s.ids)
}

// IDs returns the ids in ascending order. The caller owns the returned slice.
func (s SecretSet) IDs() []int64 {
	return slices.Clone(s.ids)
}

// Value stores the set as a JSON array.
func (s SecretSet) Value() (driver.Value, error) {
	return IDList(s.ids).Value()
}

// Scan reads a JSON array of ids.
func (s *SecretSet) Scan(src any) error {
	var ids IDList
	if err := ids.Scan(src); err != nil {
		return errors.Wrap(err, "scan secret set")
	}
	*s = NewSecretSet(ids...)
	return nil
}

func (s SecretSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(IDList(s.ids))
}

// IDList is a list of ids stored as a JSON array column.
type IDList []int64

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	b, err := json.Marshal([]int64(l))
	if err != nil {
		return nil, errors.Wrap(err, "marshal id list")
	}
	return string(b), nil
}

func (l *IDList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New(fmt.Sprintf("unsupported id list source %T", src))
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return errors.Wrap(err, "unmarshal id list")
	}
	*l = ids
	return nil
}
