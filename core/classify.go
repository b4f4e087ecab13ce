// Package core detects request URIs that were corrupted by extraneous bytes
// and computes a best-effort fallback for them.
//
// Everything in this package works on raw bytes and never fails: a corrupted
// identifier is a classification result, not an error. All functions are
// safe for concurrent use.
package core

import "unicode/utf8"

// Classifier decides whether a candidate URI can be handed to strict
// downstream parsing. The zero value validates against UTF-8.
//
// Two checks must both pass: the candidate must match the RFC 3986
// URI-reference grammar, and the bytes obtained by decoding every %XX
// escape must be valid text. The second check catches garbage smuggled in
// through well-formed escapes such as "%C2".
type Classifier struct {
	// ValidText reports whether the fully unescaped candidate is acceptable
	// text. Nil means UTF-8.
	ValidText func([]byte) bool
}

var defaultClassifier = &Classifier{}

// IsParseable classifies candidate with the UTF-8 classifier.
//
// Example:
//
//	core.IsParseable([]byte("/items/457?foo=bar")) // true
//	core.IsParseable([]byte("/items/457%C2"))      // false
func IsParseable(candidate []byte) bool { return defaultClassifier.IsParseable(candidate) }

// IsParseable reports whether candidate passes both the syntax and the
// escape-decodability check. The empty candidate passes. A panicking
// ValidText is treated as a failed check.
func (cl *Classifier) IsParseable(candidate []byte) (ok bool) {
	if !validReference(candidate) {
		return false
	}
	decoded, ok := unescape(candidate)
	if !ok {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return cl.validText(decoded)
}

func (cl *Classifier) validText(b []byte) bool {
	if cl == nil || cl.ValidText == nil {
		return utf8.Valid(b)
	}
	return cl.ValidText(b)
}

// unescape decodes every %XX escape in b. It reports false for a '%' that
// is not followed by two hex digits.
func unescape(b []byte) ([]byte, bool) {
	n := 0
	for i := 0; i < len(b); i++ {
		if b[i] == '%' {
			if !validEscapeAt(b, i) {
				return nil, false
			}
			n++
			i += 2
		}
	}
	if n == 0 {
		return b, true
	}
	out := make([]byte, 0, len(b)-2*n)
	for i := 0; i < len(b); i++ {
		if b[i] == '%' {
			out = append(out, unhex(b[i+1])<<4|unhex(b[i+2]))
			i += 2
			continue
		}
		out = append(out, b[i])
	}
	return out, true
}
