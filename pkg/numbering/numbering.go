// Package numbering mints the public identifiers handed to candidates.
package numbering

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

const (
	base36      = "0123456789abcdefghijklmnopqrstuvwxyz"
	upperAlnum  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	nupcanChars = 8
)

var (
	// ApplicationNumberPattern matches PART_<unix ms>_<9 base36 chars>.
	ApplicationNumberPattern = regexp.MustCompile(`^PART_[0-9]{13}_[0-9a-z]{9}$`)
	// NupcanPattern matches GC<yyyymmdd>-<8 chars>.
	NupcanPattern = regexp.MustCompile(`^GC[0-9]{8}-[A-Z2-9]{8}$`)
)

// ApplicationNumber returns a time-prefixed, unguessable participation number.
func ApplicationNumber(now time.Time) string {
	return fmt.Sprintf("PART_%d_%s", now.UnixMilli(), randomString(base36, 9))
}

// Nupcan returns a candidate registration number. Ambiguous glyphs (0/O, 1/I) are excluded.
func Nupcan(now time.Time) string {
	return fmt.Sprintf("GC%s-%s", now.Format("20060102"), randomString(upperAlnum, nupcanChars))
}

// TemporaryPassword is emailed to newly created admins.
func TemporaryPassword() string {
	return randomString(base36+upperAlnum, 12)
}

func randomString(alphabet string, n int) string {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("numbering: crypto/rand failed: %v", err))
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}
