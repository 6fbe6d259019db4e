package dry

import "github.com/cespare/xxhash/v2"

// fingerprintSalt distinguishes this rule's k-gram digests from a bare
// xxhash sum; it is a fixed constant, not a per-run secret. Fingerprints
// must be stable across runs and across processes — the on-disk cache
// (drycache) persists fingerprints computed in a previous run and they
// must still collide with freshly tokenised files in a later run, which
// spec §8's determinism property requires. A per-run random salt would
// make every cache entry a guaranteed miss the moment it was read back
// alongside a freshly tokenised sibling file.
const fingerprintSalt = "thailint.dry.v1"

// fingerprint hashes a contiguous token window with a fast keyed hash
// (spec §4.7 step 3), resolving the "fast keyed hash" open question with
// xxhash rather than SipHash: both are fast non-cryptographic keyed
// hashes, and xxhash is the one already present across the retrieval pack.
func fingerprint(tokens []token) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(fingerprintSalt)
	for _, t := range tokens {
		_, _ = h.WriteString(t.norm)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// fpWindow is one tokenised k-gram: its fingerprint and the source line
// span it covers (spec §4.7 step 2).
type fpWindow struct {
	fp        uint64
	startLine int
	endLine   int
}

// buildWindows emits every contiguous window of exactly minTokens tokens
// (spec §4.7 step 2: "emit every contiguous window of exactly min_tokens
// tokens"). A file shorter than minTokens produces no windows.
func buildWindows(tokens []token, minTokens int) []fpWindow {
	if minTokens <= 0 || len(tokens) < minTokens {
		return nil
	}
	windows := make([]fpWindow, 0, len(tokens)-minTokens+1)
	for i := 0; i+minTokens <= len(tokens); i++ {
		win := tokens[i : i+minTokens]
		windows = append(windows, fpWindow{
			fp:        fingerprint(win),
			startLine: win[0].line,
			endLine:   win[len(win)-1].line,
		})
	}
	return windows
}
