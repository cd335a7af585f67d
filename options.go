package keysetpager

import "net/url"

// Recognized pagination option keys.
const (
	OptionFirst    = "first"
	OptionAfter    = "after"
	OptionLast     = "last"
	OptionBefore   = "before"
	OptionMaxLimit = "maxLimit"
)

var _knownOptions = []string{OptionFirst, OptionAfter, OptionLast, OptionBefore, OptionMaxLimit}

// Option is a single raw pagination argument as supplied by a caller.
//
// Options are an ordered list rather than a map: when the same key appears
// more than once, the first occurrence is authoritative and the later ones
// are ignored.
type Option struct {
	Key   string
	Value any
}

// First requests the first count rows after the cursor (forward pagination).
func First(count int) Option {
	return Option{Key: OptionFirst, Value: count}
}

// After sets the cursor forward pagination starts after.
func After(cursor string) Option {
	return Option{Key: OptionAfter, Value: cursor}
}

// Last requests the last count rows before the cursor (backward pagination).
func Last(count int) Option {
	return Option{Key: OptionLast, Value: count}
}

// Before sets the cursor backward pagination ends before.
func Before(cursor string) Option {
	return Option{Key: OptionBefore, Value: cursor}
}

// MaxLimit sets the upper bound on the requested count.
func MaxLimit(limit int) Option {
	return Option{Key: OptionMaxLimit, Value: limit}
}

// OptionsFromQuery extracts pagination options from URL query parameters.
// Counts are kept as strings and parsed during normalization. Every value of
// a repeated parameter is kept in order. maxLimit is never read from the
// query: the bound belongs to the server, not to the client.
func OptionsFromQuery(query url.Values) []Option {
	var opts []Option
	for _, key := range []string{OptionFirst, OptionAfter, OptionLast, OptionBefore} {
		for _, value := range query[key] {
			opts = append(opts, Option{Key: key, Value: value})
		}
	}

	return opts
}

// Args is intended for API payloads. For proper code generation, inline it:
//
//	type ListUsersRequest struct {
//	    Paging keysetpager.Args `json:",inline"`
//	}
type Args struct {
	// First - number of rows to return after After.
	First *int `json:"first,omitempty"`
	// After - cursor obtained from Page.EndCursor.
	After string `json:"after,omitempty"`
	// Last - number of rows to return before Before.
	Last *int `json:"last,omitempty"`
	// Before - cursor obtained from Page.StartCursor.
	Before string `json:"before,omitempty"`
}

// Options converts the payload into raw pagination options. Fields that were
// not supplied are omitted.
func (a Args) Options() []Option {
	var opts []Option
	if a.First != nil {
		opts = append(opts, First(*a.First))
	}
	if a.After != "" {
		opts = append(opts, After(a.After))
	}
	if a.Last != nil {
		opts = append(opts, Last(*a.Last))
	}
	if a.Before != "" {
		opts = append(opts, Before(a.Before))
	}

	return opts
}
