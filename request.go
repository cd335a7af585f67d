package keysetpager

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/samber/lo"
)

// Direction defines which side of the cursor is fetched.
type Direction string

const (
	// DirectionForward fetches rows after the cursor ("first"/"after").
	DirectionForward Direction = "forward"
	// DirectionBackward fetches rows before the cursor ("last"/"before").
	DirectionBackward Direction = "backward"
)

func (d Direction) Valid() bool {
	return d == DirectionForward || d == DirectionBackward
}

// ValidationError reports pagination arguments rejected by NewRequest.
// It is the only error kind caused by end-user input; cursor decoding, sort
// resolution and query execution failures are reported through other errors.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid pagination arguments: " + e.Reason
}

// IsValidationError reports whether err (or any error it wraps) is a *ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Request is the canonical, immutable form of pagination arguments.
type Request struct {
	sortName  string
	cursor    string
	direction Direction
	limit     int
}

// NewRequest validates raw pagination options and normalizes them into a
// Request. Rules are checked in this order:
//
//  1. Exactly one of first/last is supplied with an integer value.
//  2. after only pairs with first, before only pairs with last, and after
//     never pairs with before.
//  3. 0 <= count <= maxLimit. maxLimit is required.
//
// When a key is supplied more than once the first occurrence wins.
// The cursor is not decoded here. Failures are *ValidationError.
func NewRequest(sortName string, opts ...Option) (*Request, error) {
	args := make(map[string]any, len(opts))
	for _, opt := range opts {
		if !lo.Contains(_knownOptions, opt.Key) {
			return nil, invalidf("unknown pagination option '%s'", opt.Key)
		}

		if _, seen := args[opt.Key]; seen {
			continue
		}

		args[opt.Key] = opt.Value
	}

	first, hasFirst := args[OptionFirst]
	last, hasLast := args[OptionLast]
	if hasFirst == hasLast {
		return nil, invalidf("exactly one of '%s' or '%s' must be supplied", OptionFirst, OptionLast)
	}

	direction := lo.Ternary(hasFirst, DirectionForward, DirectionBackward)
	countOption := lo.Ternary(hasFirst, OptionFirst, OptionLast)

	count, ok := parseInt(lo.Ternary(hasFirst, first, last))
	if !ok {
		return nil, invalidf("'%s' must be an integer", countOption)
	}

	after, err := cursorArg(args, OptionAfter)
	if err != nil {
		return nil, err
	}

	before, err := cursorArg(args, OptionBefore)
	if err != nil {
		return nil, err
	}

	switch {
	case after != "" && before != "":
		return nil, invalidf("'%s' and '%s' cannot be combined", OptionAfter, OptionBefore)
	case direction == DirectionForward && before != "":
		return nil, invalidf("'%s' cannot be combined with '%s'", OptionBefore, OptionFirst)
	case direction == DirectionBackward && after != "":
		return nil, invalidf("'%s' cannot be combined with '%s'", OptionAfter, OptionLast)
	}

	rawMaxLimit, ok := args[OptionMaxLimit]
	if !ok {
		return nil, invalidf("'%s' is required", OptionMaxLimit)
	}

	maxLimit, ok := parseInt(rawMaxLimit)
	if !ok {
		return nil, invalidf("'%s' must be an integer", OptionMaxLimit)
	}

	if err = checkLimit(countOption, count, maxLimit); err != nil {
		return nil, err
	}

	return &Request{
		sortName:  sortName,
		cursor:    lo.Ternary(direction == DirectionForward, after, before),
		direction: direction,
		limit:     count,
	}, nil
}

// MustNewRequest is like NewRequest but panics on invalid arguments.
func MustNewRequest(sortName string, opts ...Option) *Request {
	req, err := NewRequest(sortName, opts...)
	if err != nil {
		panic(err)
	}

	return req
}

// SortName returns the name of the sort the provider resolves.
func (r *Request) SortName() string {
	if r == nil {
		return ""
	}

	return r.sortName
}

// Cursor returns the after/before cursor as supplied, or "" when absent.
func (r *Request) Cursor() string {
	if r == nil {
		return ""
	}

	return r.cursor
}

// HasCursor reports whether pagination resumes from a cursor.
func (r *Request) HasCursor() bool {
	return r.Cursor() != ""
}

// Direction returns DirectionForward for first/after and DirectionBackward
// for last/before.
func (r *Request) Direction() Direction {
	if r == nil {
		return DirectionForward
	}

	return r.direction
}

// Limit returns the number of rows requested by the caller.
func (r *Request) Limit() int {
	if r == nil {
		return 0
	}

	return r.limit
}

// DatasetLimit returns the number of rows fetched from the store: one more
// than Limit, the extra row probing whether more data exists.
func (r *Request) DatasetLimit() int {
	return r.Limit() + 1
}

func cursorArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}

	cursor, ok := v.(string)
	if !ok {
		return "", invalidf("'%s' must be a cursor string", key)
	}

	return cursor, nil
}

func parseInt(v any) (int, bool) {
	switch vt := v.(type) {
	case int:
		return vt, true
	case int8:
		return int(vt), true
	case int16:
		return int(vt), true
	case int32:
		return int(vt), true
	case int64:
		if vt < math.MinInt || vt > math.MaxInt {
			return 0, false
		}

		return int(vt), true
	case uint:
		if vt > math.MaxInt {
			return 0, false
		}

		return int(vt), true
	case uint8:
		return int(vt), true
	case uint16:
		return int(vt), true
	case uint32:
		if uint64(vt) > math.MaxInt {
			return 0, false
		}

		return int(vt), true
	case uint64:
		if vt > math.MaxInt {
			return 0, false
		}

		return int(vt), true
	case string:
		n, err := strconv.Atoi(vt)
		return n, err == nil
	default:
		return 0, false
	}
}
