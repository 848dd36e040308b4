package repo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound reports a missing record where absence is not a
	// normal outcome (e.g. destroying a post that does not exist).
	ErrNotFound = errors.New("record not found")

	// ErrNotOwner reports an attempt to destroy a record owned by
	// someone else.
	ErrNotOwner = errors.New("not the owner")

	// ErrSelfFollow reports an attempt to follow oneself.
	ErrSelfFollow = errors.New("cannot follow yourself")
)

// ValidationErrors maps a field name to its failure message. It is
// returned by create operations so callers can surface per-field
// messages instead of a single opaque failure.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(v))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", f, v[f]))
	}
	return strings.Join(parts, "; ")
}

func (v ValidationErrors) add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}
