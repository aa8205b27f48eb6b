package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/researchdt/internal/server/apierror"
)

const (
	minPasswordLength   = 8
	maxSimilarity       = 0.7
	minSimilarityLength = 3
)

var nonWord = regexp.MustCompile(`\W+`)

// checkPassword applies the password policy and records at most one problem
// on path. Similarity is checked against the email and its word parts.
func checkPassword(fields apierror.FieldErrors, path, password, email string) {
	if tooSimilar(password, email) {
		fields.Add(path, apierror.CodePasswordTooSimilar, "The password is too similar to the email.")
		return
	}
	if len([]rune(password)) < minPasswordLength {
		fields.Add(path, apierror.CodePasswordTooShort, "This password is too short. It must contain at least 8 characters.")
		return
	}
	if isNumeric(password) {
		fields.Add(path, apierror.CodePasswordNumeric, "This password is entirely numeric.")
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func tooSimilar(password, email string) bool {
	if email == "" {
		return false
	}
	p := strings.ToLower(password)
	candidates := append([]string{strings.ToLower(email)}, nonWord.Split(strings.ToLower(email), -1)...)
	for _, c := range candidates {
		if len(c) < minSimilarityLength {
			continue
		}
		if similarity(p, c) >= maxSimilarity {
			return true
		}
	}
	return false
}

// similarity returns 2*M/T where M is the length of the longest common
// substring and T the combined length, in [0, 1].
func similarity(a, b string) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	best := 0
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return 2 * float64(best) / float64(len(ra)+len(rb))
}
