package core

import (
	"bytes"
	"net/netip"
)

// validReference reports whether b matches the RFC 3986 URI-reference rule,
// that is either an absolute URI or a relative reference. Only the ASCII
// characters allowed by the grammar are accepted; any other byte fails.
func validReference(b []byte) bool {
	rest := b
	hasScheme := false
	if n := schemeLen(b); n > 0 {
		rest = b[n+1:]
		hasScheme = true
	}

	if i := bytes.IndexByte(rest, '#'); i >= 0 {
		if !validQuery(rest[i+1:]) {
			return false
		}
		rest = rest[:i]
	}
	if i := bytes.IndexByte(rest, '?'); i >= 0 {
		if !validQuery(rest[i+1:]) {
			return false
		}
		rest = rest[:i]
	}

	hasAuthority := false
	if bytes.HasPrefix(rest, []byte("//")) {
		end := bytes.IndexByte(rest[2:], '/')
		if end < 0 {
			end = len(rest) - 2
		}
		if !validAuthority(rest[2 : 2+end]) {
			return false
		}
		rest = rest[2+end:]
		hasAuthority = true
	}

	return validPath(rest, hasScheme || hasAuthority)
}

// schemeLen returns the index of the ':' terminating a leading scheme, or 0
// when b does not start with one.
func schemeLen(b []byte) int {
	if len(b) == 0 || !isAlpha(b[0]) {
		return 0
	}
	for i := 1; i < len(b); i++ {
		c := b[i]
		switch {
		case c == ':':
			return i
		case isAlpha(c) || isDigit(c) || c == '+' || c == '-' || c == '.':
		default:
			return 0
		}
	}
	return 0
}

// validPath checks path segments. Without a scheme or authority the first
// segment must not contain ':' (path-noscheme).
func validPath(p []byte, colonInFirstSegment bool) bool {
	firstSegment := true
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '/':
			firstSegment = false
		case c == ':':
			if firstSegment && !colonInFirstSegment {
				return false
			}
		case c == '%':
			if !validEscapeAt(p, i) {
				return false
			}
			i += 2
		case !isPchar(c):
			return false
		}
	}
	return true
}

// validQuery checks query and fragment components, which share a grammar.
func validQuery(q []byte) bool {
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case c == '/' || c == '?':
		case c == '%':
			if !validEscapeAt(q, i) {
				return false
			}
			i += 2
		case !isPchar(c):
			return false
		}
	}
	return true
}

func validAuthority(a []byte) bool {
	if i := bytes.LastIndexByte(a, '@'); i >= 0 {
		if !validUserinfo(a[:i]) {
			return false
		}
		a = a[i+1:]
	}

	host, port := a, []byte(nil)
	if len(a) > 0 && a[0] == '[' {
		end := bytes.IndexByte(a, ']')
		if end < 0 || !validIPLiteral(a[1:end]) {
			return false
		}
		host, port = nil, a[end+1:]
		if len(port) > 0 {
			if port[0] != ':' {
				return false
			}
			port = port[1:]
		}
	} else if i := bytes.IndexByte(a, ':'); i >= 0 {
		host, port = a[:i], a[i+1:]
	}

	for _, c := range port {
		if !isDigit(c) {
			return false
		}
	}
	return validRegName(host)
}

func validUserinfo(u []byte) bool {
	for i := 0; i < len(u); i++ {
		c := u[i]
		switch {
		case c == ':':
		case c == '%':
			if !validEscapeAt(u, i) {
				return false
			}
			i += 2
		case !isUnreserved(c) && !isSubDelim(c):
			return false
		}
	}
	return true
}

func validRegName(h []byte) bool {
	for i := 0; i < len(h); i++ {
		c := h[i]
		switch {
		case c == '%':
			if !validEscapeAt(h, i) {
				return false
			}
			i += 2
		case !isUnreserved(c) && !isSubDelim(c):
			return false
		}
	}
	return true
}

// validIPLiteral checks the inside of "[...]": an IPv6 address without zone
// or an IPvFuture literal.
func validIPLiteral(lit []byte) bool {
	if len(lit) > 0 && (lit[0] == 'v' || lit[0] == 'V') {
		dot := bytes.IndexByte(lit, '.')
		if dot < 2 || dot == len(lit)-1 {
			return false
		}
		for _, c := range lit[1:dot] {
			if !isHex(c) {
				return false
			}
		}
		for _, c := range lit[dot+1:] {
			if c != ':' && !isUnreserved(c) && !isSubDelim(c) {
				return false
			}
		}
		return true
	}
	addr, err := netip.ParseAddr(string(lit))
	return err == nil && addr.Is6() && addr.Zone() == ""
}

func validEscapeAt(b []byte, i int) bool {
	return i+2 < len(b) && isHex(b[i+1]) && isHex(b[i+2])
}

func isPchar(c byte) bool {
	return isUnreserved(c) || isSubDelim(c) || c == ':' || c == '@'
}

func isUnreserved(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '-' || c == '.' || c == '_' || c == '~'
}

func isSubDelim(c byte) bool {
	switch c {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	}
	return false
}

func isAlpha(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	}
	return c - 'A' + 10
}
