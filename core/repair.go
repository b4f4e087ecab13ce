package core

// LongestParseablePrefix repairs candidate with the UTF-8 classifier.
func LongestParseablePrefix(candidate []byte) []byte {
	return defaultClassifier.LongestParseablePrefix(candidate)
}

// LongestParseablePrefix returns the longest byte prefix of candidate that
// passes IsParseable, starting from the full candidate and dropping one byte
// at a time from the end. It returns an empty slice when no non-empty prefix
// passes. The result is a copy and never aliases candidate.
//
// Truncation is byte-granular: a multi-byte character straddling the cut is
// simply cut. Cost is len(candidate) classifications in the worst case;
// callers worried about adversarial input should cap its length first.
func (cl *Classifier) LongestParseablePrefix(candidate []byte) []byte {
	for n := len(candidate); n > 0; n-- {
		if cl.IsParseable(candidate[:n]) {
			out := make([]byte, n)
			copy(out, candidate)
			return out
		}
	}
	return []byte{}
}
