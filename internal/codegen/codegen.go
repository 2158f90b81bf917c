// Package codegen produces the human-readable identifiers printed on assets,
// receipts, membership cards and gate passes.
//
// Sequenced codes are derived by counting the records already created in the
// code's temporal scope. Two concurrent creators can count the same number;
// the store's unique index rejects the loser, which re-counts through Retry.
package codegen

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

type Scope int

const (
	ScopeYear Scope = iota
	ScopeMonth
)

// Scheme is a prefix + scope + zero-padded sequence layout.
type Scheme struct {
	Name   string
	Prefix string
	Scope  Scope
	Width  int
}

var (
	// AssetCode renders ASSET{yyyy}{seq:05d}.
	AssetCode = Scheme{Name: "asset", Prefix: "ASSET", Scope: ScopeYear, Width: 5}
	// DonationReceipt and MembershipID are layouts for records issued by the
	// donations and membership systems; nothing in this service stores them.

	// DonationReceipt renders NISHAD{yyyy}{mm}{seq:05d}.
	DonationReceipt = Scheme{Name: "donation_receipt", Prefix: "NISHAD", Scope: ScopeMonth, Width: 5}
	// MembershipID renders NISHAD{yyyy}{seq:06d}.
	MembershipID = Scheme{Name: "membership", Prefix: "NISHAD", Scope: ScopeYear, Width: 6}
)

// Counter reports how many records were created in [from, to).
type Counter func(from, to time.Time) (int64, error)

// Window returns the UTC scope containing at as a half-open interval.
func (s Scheme) Window(at time.Time) (time.Time, time.Time) {
	at = at.UTC()
	switch s.Scope {
	case ScopeMonth:
		from := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0)
	default:
		from := time.Date(at.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0)
	}
}

func (s Scheme) Format(at time.Time, seq int64) string {
	at = at.UTC()
	width := s.Width
	if width <= 0 {
		width = 5
	}
	var stamp string
	switch s.Scope {
	case ScopeMonth:
		stamp = fmt.Sprintf("%04d%02d", at.Year(), int(at.Month()))
	default:
		stamp = fmt.Sprintf("%04d", at.Year())
	}
	return fmt.Sprintf("%s%s%0*d", s.Prefix, stamp, width, seq)
}

// Next counts the scope and returns the code for sequence count+1+attempt.
// attempt is zero on the first try and grows with every conflict retry.
func (s Scheme) Next(at time.Time, attempt int, count Counter) (string, error) {
	if count == nil {
		return "", errors.New("codegen: nil counter")
	}
	if attempt < 0 {
		attempt = 0
	}
	from, to := s.Window(at)
	n, err := count(from, to)
	if err != nil {
		return "", fmt.Errorf("codegen: count %s: %w", s.Name, err)
	}
	return s.Format(at, n+1+int64(attempt)), nil
}

// EventPassCode returns GP{yyyymmdd}{6 upper-case hex}. A nil entropy source
// uses crypto/rand.
func EventPassCode(at time.Time, entropy io.Reader) (string, error) {
	if entropy == nil {
		entropy = rand.Reader
	}
	var b [3]byte
	if _, err := io.ReadFull(entropy, b[:]); err != nil {
		return "", fmt.Errorf("codegen: read entropy: %w", err)
	}
	return "GP" + at.UTC().Format("20060102") + strings.ToUpper(hex.EncodeToString(b[:])), nil
}

// VisitorPassNumber returns GP{yyyymmddHHMMSS}. seq counts the passes that
// already hold this second (plus conflict retries); any seq > 0 gets a
// -{seq} suffix.
func VisitorPassNumber(at time.Time, seq int64) string {
	base := "GP" + at.UTC().Format("20060102150405")
	if seq <= 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, seq)
}

// SecondWindow is the half-open second containing at, the scope of a
// visitor pass number.
func SecondWindow(at time.Time) (time.Time, time.Time) {
	from := at.UTC().Truncate(time.Second)
	return from, from.Add(time.Second)
}

// Retry runs fn with attempt = 0, 1, ... until it succeeds, fails with an
// error retryable rejects, or maxAttempts is reached. It returns the number
// of attempts made.
func Retry(ctx context.Context, maxAttempts int, retryable func(error) bool, fn func(attempt int) error) (int, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctx != nil {
			if cerr := ctx.Err(); cerr != nil {
				if err != nil {
					return attempt, err
				}
				return attempt, cerr
			}
		}
		err = fn(attempt)
		if err == nil {
			return attempt + 1, nil
		}
		if retryable == nil || !retryable(err) {
			return attempt + 1, err
		}
	}
	return maxAttempts, fmt.Errorf("codegen: gave up after %d attempts: %w", maxAttempts, err)
}
