package soapysdr

import (
	"iter"
	"strings"

	"github.com/kevinmehall/go-soapysdr/hal"
)

// Args is an ordered list of key=value string pairs, used to identify
// devices and to parameterize operations.
//
// The zero value is an empty, usable list. Keys are conventionally unique,
// but duplicates arriving from parsing or from the native layer are
// tolerated; Get returns the first match.
type Args struct {
	kw hal.Kwargs
}

// ParseArgs builds an Args from a markup string such as
// "driver=lime, serial=123456". The string is split on commas and each
// segment on its first '='; segments without '=' are skipped. Keys and
// values are trimmed of surrounding whitespace.
func ParseArgs(s string) Args {
	var a Args
	for _, seg := range strings.Split(s, ",") {
		key, val, ok := strings.Cut(seg, "=")
		if !ok {
			continue
		}
		a.Set(strings.TrimSpace(key), strings.TrimSpace(val))
	}
	return a
}

// ArgsFromMap builds an Args from a map. Ordering of the result is
// unspecified.
func ArgsFromMap(m map[string]string) Args {
	var a Args
	for k, v := range m {
		a.Set(k, v)
	}
	return a
}

// Set stores a value under key, overwriting the first existing match or
// appending if the key is absent.
//
// Set panics if key or value contains a NUL byte: such strings cannot be
// represented in the native call, so passing one is a caller error.
func (a *Args) Set(key, value string) {
	if strings.IndexByte(key, 0) >= 0 {
		panic("soapysdr: argument key contains NUL byte")
	}
	if strings.IndexByte(value, 0) >= 0 {
		panic("soapysdr: argument value contains NUL byte")
	}
	a.kw.Set(key, value)
}

// Get returns the value of the first pair matching key.
func (a Args) Get(key string) (string, bool) {
	return a.kw.Get(key)
}

// Len returns the number of stored pairs.
func (a Args) Len() int {
	return len(a.kw.Keys)
}

// Iter returns an iterator over the (key, value) pairs in storage order.
func (a Args) Iter() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for i, k := range a.kw.Keys {
			if !yield(k, a.kw.Vals[i]) {
				return
			}
		}
	}
}

// Map converts the list to a map, losing ordering. For duplicate keys the
// last occurrence wins.
func (a Args) Map() map[string]string {
	m := make(map[string]string, len(a.kw.Keys))
	for i, k := range a.kw.Keys {
		m[k] = a.kw.Vals[i]
	}
	return m
}

// String renders the list as "key=value" pairs joined by ", ". This is the
// inverse of ParseArgs for keys and values free of ',' and '='.
func (a Args) String() string {
	var b strings.Builder
	for i, k := range a.kw.Keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(a.kw.Vals[i])
	}
	return b.String()
}

// argsFromKwargs wraps an already-populated native list. The wrapper takes
// ownership of the slices.
func argsFromKwargs(kw hal.Kwargs) Args {
	return Args{kw: kw}
}

// kwargs exposes the native representation for a HAL call.
func (a Args) kwargs() hal.Kwargs {
	return a.kw
}
