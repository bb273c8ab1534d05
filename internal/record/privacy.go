package record

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
)

func (r *Recorder) privacy(c Candidate) Privacy {
	p := Privacy{PolicyVersion: PolicyVersion}

	if c.Email != "" {
		p.EmailMasked = MaskEmail(c.Email)
		p.EmailHash = Hash(r.hashKey, strings.ToLower(c.Email))
	}
	if c.Phone != "" {
		p.PhoneMasked = MaskPhone(c.Phone)
		p.PhoneHash = Hash(r.hashKey, digitsOnly(c.Phone))
	}
	if c.Email != "" || c.Name != "" {
		key := strings.ReplaceAll(strings.ToLower(c.Email+c.Name), " ", "")
		p.CandidateKey = Hash(r.hashKey, key)[:16]
	}

	return p
}

// Hash returns the hex BLAKE2b-256 digest of value, keyed when key is set.
// Keys longer than 64 bytes are first reduced with an unkeyed digest.
func Hash(key []byte, value string) string {
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}

	h, err := blake2b.New256(key)
	if err != nil {
		sum := blake2b.Sum256([]byte(value))
		return hex.EncodeToString(sum[:])
	}
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))
}

// MaskEmail keeps the first and last character of the local part:
// "jane@example.com" becomes "j**e@example.com".
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return strings.Repeat("*", len(email))
	}

	runes := []rune(local)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes)) + "@" + domain
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1]) + "@" + domain
}

// MaskPhone hides every digit except the last four, keeping separators.
func MaskPhone(phone string) string {
	total := len(digitsOnly(phone))

	var b strings.Builder
	seen := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			seen++
			if seen <= total-4 {
				b.WriteRune('*')
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
