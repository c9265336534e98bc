package field

import "crypto/sha256"

// sum256 is a private helper for PRNG seed expansion; it intentionally does
// not route through the pluggable hashfn.Hasher since PRNG derivation here
// is a field-adapter concern (seeding static tables, domain separators
// computed before an AIR is known) rather than a transcript operation.
func sum256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}
