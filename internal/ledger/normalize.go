package ledger

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName canonicalizes a name for exact-match lookup: NFC
// normalization, Unicode case folding, and whitespace trim. Stored in
// the name_norm columns at write time so lookups stay index-backed.
func NormalizeName(s string) string {
	folded := cases.Fold().String(norm.NFC.String(s))
	return strings.TrimSpace(folded)
}
