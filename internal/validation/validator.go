// Package validation performs the syntactic checks the auth core runs
// before touching storage: identity format, sanitisation and the password
// policy.
package validation

import (
	"crypto/subtle"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// IdentityScheme selects what an identity is for a deployment.
type IdentityScheme string

const (
	SchemeEmail    IdentityScheme = "email"
	SchemeUsername IdentityScheme = "username"
)

// ParseScheme accepts "email" or "username", case-insensitively.
func ParseScheme(s string) (IdentityScheme, error) {
	switch IdentityScheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeEmail:
		return SchemeEmail, nil
	case SchemeUsername:
		return SchemeUsername, nil
	default:
		return "", fmt.Errorf("unknown identity scheme %q", s)
	}
}

// Label is the word used for the identity in user-facing messages.
func (s IdentityScheme) Label() string {
	if s == SchemeUsername {
		return "username"
	}
	return "email"
}

const (
	MinPasswordLength = 8
	MaxEmailLength    = 254
	SpecialCharacters = "!@#$%^&*()_+"
)

var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{4,20}$`)

	scriptPattern    = regexp.MustCompile(`(?i)javascript:|script`)
	sanitizeReplacer  = strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
		"/", "&#x2F;",
		"(", "&#40;",
		")", "&#41;",
		"{", "&#123;",
		"}", "&#125;",
	)
)

// Policy feedback messages, in the order they are reported.
const (
	FeedbackLength     = "Password must be at least 8 characters long"
	FeedbackDigit      = "Password must contain at least one digit"
	FeedbackLower      = "Password must contain at least one lowercase letter"
	FeedbackUpper      = "Password must contain at least one uppercase letter"
	FeedbackSpecial    = "Password must contain at least one special character"
	FeedbackWhitespace = "Password must not contain spaces"
)

// Validator is stateless apart from the configured scheme.
type Validator struct {
	scheme IdentityScheme
}

func NewValidator(scheme IdentityScheme) *Validator {
	if scheme != SchemeUsername {
		scheme = SchemeEmail
	}
	return &Validator{scheme: scheme}
}

func (v *Validator) Scheme() IdentityScheme {
	return v.scheme
}

// IsValidIdentity checks s against the scheme's format. s is expected to be
// normalised already.
func (v *Validator) IsValidIdentity(s string) bool {
	if v.scheme == SchemeUsername {
		return usernamePattern.MatchString(s)
	}
	return len(s) <= MaxEmailLength && emailPattern.MatchString(s)
}

// Normalize trims surrounding whitespace and lower-cases the identity.
func (v *Validator) Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Sanitize strips script markers and escapes HTML-significant characters.
// It is meant for identities only; passwords must never pass through it.
func (v *Validator) Sanitize(s string) string {
	for {
		out := scriptPattern.ReplaceAllString(s, "")
		if out == s {
			break
		}
		s = out
	}
	return sanitizeReplacer.Replace(s)
}

// PasswordMeetsPolicy reports whether p satisfies every policy rule.
func (v *Validator) PasswordMeetsPolicy(p []byte) bool {
	return len(PolicyFeedback(p)) == 0
}

// PolicyFeedback lists every unmet rule for p.
func (v *Validator) PolicyFeedback(p []byte) []string {
	return PolicyFeedback(p)
}

// PasswordsMatch compares in constant time.
func (v *Validator) PasswordsMatch(p, confirm []byte) bool {
	return subtle.ConstantTimeCompare(p, confirm) == 1
}

// PolicyFeedback lists every unmet password rule, in a fixed order.
func PolicyFeedback(p []byte) []string {
	var digit, lower, upper, special, space bool
	n := 0
	for _, r := range string(p) {
		n++
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsSpace(r):
			space = true
		}
		if strings.ContainsRune(SpecialCharacters, r) {
			special = true
		}
	}

	var feedback []string
	if n < MinPasswordLength {
		feedback = append(feedback, FeedbackLength)
	}
	if !digit {
		feedback = append(feedback, FeedbackDigit)
	}
	if !lower {
		feedback = append(feedback, FeedbackLower)
	}
	if !upper {
		feedback = append(feedback, FeedbackUpper)
	}
	if !special {
		feedback = append(feedback, FeedbackSpecial)
	}
	if space {
		feedback = append(feedback, FeedbackWhitespace)
	}
	return feedback
}
