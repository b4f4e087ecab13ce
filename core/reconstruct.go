package core

// Components are the raw parts a request URI is assembled from. They are
// never decoded or normalized.
type Components struct {
	Prefix []byte // script or mount prefix
	Path   []byte
	Query  []byte // without the leading '?'
}

// Candidate returns the reconstructed URI for c.
func (c Components) Candidate() []byte { return Reconstruct(c.Prefix, c.Path, c.Query) }

// Reconstruct joins prefix and path and, when query is non-empty, appends
// '?' and query. The bytes are copied as-is into a new slice.
//
// Example:
//
//	core.Reconstruct([]byte("myscript"), []byte("/items/457"), []byte("foo=bar"))
//	// "myscript/items/457?foo=bar"
func Reconstruct(prefix, path, query []byte) []byte {
	n := len(prefix) + len(path)
	if len(query) > 0 {
		n += 1 + len(query)
	}
	out := make([]byte, 0, n)
	out = append(out, prefix...)
	out = append(out, path...)
	if len(query) > 0 {
		out = append(out, '?')
		out = append(out, query...)
	}
	return out
}
