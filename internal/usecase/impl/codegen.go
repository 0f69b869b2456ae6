// Package impl contains the implementation of the application's business logic.
package impl

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
)

const (
	referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralPrefixLen    = 3
	referralSuffixLen    = 4
	orderNumberDigits    = 5
)

// generateReferralCode builds a candidate referral code: the first three
// letters of the name (spaces stripped, uppercased, X-padded) followed by four
// random characters from [A-Z0-9]. Uniqueness is the caller's responsibility.
func generateReferralCode(name string) (string, error) {
	suffix, err := randomString(referralCodeAlphabet, referralSuffixLen)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate referral code suffix")
	}

	return referralPrefix(name) + suffix, nil
}

// referralPrefix extracts the letter prefix from an account name. Letters are
// counted as runes, so accented names contribute three letters, not fewer.
func referralPrefix(name string) string {
	var prefix strings.Builder
	letters := 0
	for _, r := range name {
		if !unicode.IsLetter(r) {
			continue
		}
		prefix.WriteRune(unicode.ToUpper(r))
		letters++
		if letters >= referralPrefixLen {
			break
		}
	}

	for ; letters < referralPrefixLen; letters++ {
		prefix.WriteByte('X')
	}

	return prefix.String()
}

// generateOrderNumber builds a candidate order number in the form
// ORD-YYYYMMDD-NNNNN where NNNNN is five random digits. Uniqueness is the
// caller's responsibility.
func generateOrderNumber(now time.Time) (string, error) {
	suffix, err := randomString("0123456789", orderNumberDigits)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate order number suffix")
	}

	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix), nil
}

// randomString draws length characters uniformly from the given alphabet.
func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)
	for range length {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[idx.Int64()])
	}

	return builder.String(), nil
}
