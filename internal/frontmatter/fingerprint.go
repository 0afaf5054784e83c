package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
)

// Fingerprint identifies a document by its raw front matter block and body.
// Two saves of identical content produce the same fingerprint.
func Fingerprint(front, body []byte) string {
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(front), "\n"), string(body))
}
