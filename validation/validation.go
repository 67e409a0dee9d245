package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnintelligible is returned for prompts that look like keyboard noise.
var ErrUnintelligible = errors.New("prompt does not look like a request")

const (
	minPromptLen = 3
	maxPromptLen = 10000
)

type promptStats struct {
	text     string
	lower    string
	words    []string
	nonSpace int
	letters  int
	digits   int
	punct    int
	symbols  int
}

func newPromptStats(prompt string) promptStats {
	trimmed := strings.TrimSpace(prompt)
	st := promptStats{text: trimmed, lower: strings.ToLower(trimmed), words: strings.Fields(trimmed)}
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			continue
		}
		st.nonSpace++
		switch {
		case unicode.IsLetter(r):
			st.letters++
		case unicode.IsDigit(r):
			st.digits++
		case unicode.IsPunct(r):
			st.punct++
		default:
			st.symbols++
		}
	}
	return st
}

func (st promptStats) ratio(n int) float64 {
	if st.nonSpace == 0 {
		return 0
	}
	return float64(n) / float64(st.nonSpace)
}

// A promptRule returns a non-empty reason when the prompt fails it.
type promptRule func(st promptStats) string

var promptRules = []promptRule{
	func(st promptStats) string {
		if len(st.text) < minPromptLen {
			return "too short"
		}
		if len(st.text) > maxPromptLen {
			return "too long"
		}
		return ""
	},
	func(st promptStats) string {
		if len(st.words) == 1 && isRepeatedCharacters(st.words[0]) {
			return "single repeated character"
		}
		return ""
	},
	func(st promptStats) string {
		if hasLetterRun(st.lower, 4) {
			return "repeated letters"
		}
		if hasRepeatedChunk(st.lower, 2, 4) || hasRepeatedChunk(st.lower, 3, 4) {
			return "repeated pattern"
		}
		return ""
	},
	func(st promptStats) string {
		if st.ratio(st.punct+st.symbols) > 0.5 {
			return "mostly symbols"
		}
		if st.ratio(st.punct) > 0.3 {
			return "excessive punctuation"
		}
		return ""
	},
	func(st promptStats) string {
		if st.nonSpace > 0 && st.ratio(st.letters) < 0.3 {
			return "too few letters"
		}
		if st.ratio(st.digits) > 0.5 {
			return "mostly digits"
		}
		return ""
	},
	func(st promptStats) string {
		if len(st.words) < 2 {
			return ""
		}
		short, long := 0, 0
		for _, w := range st.words {
			w = strings.Trim(w, ".,!?;:()[]{}\"'")
			switch {
			case len(w) > 30:
				long++
			case len(w) > 0 && len(w) <= 2:
				short++
			}
		}
		n := float64(len(st.words))
		if float64(short)/n > 0.7 {
			return "mostly one- and two-letter words"
		}
		if float64(long)/n > 0.3 {
			return "implausibly long words"
		}
		return ""
	},
	func(st promptStats) string {
		if len(st.text) >= 30 {
			return ""
		}
		for _, p := range keyboardRuns {
			if strings.Contains(st.lower, p) {
				return "keyboard mashing"
			}
		}
		return ""
	},
}

var keyboardRuns = []string{"asdf", "qwer", "zxcv", "hjkl", "fghj", "dfgh"}

// CheckPrompt returns nil when prompt reads like a natural-language request
// and an error wrapping ErrUnintelligible naming the first failed check
// otherwise. The check is lenient: anything that passes the noise filters is
// accepted.
func CheckPrompt(prompt string) error {
	st := newPromptStats(prompt)
	for _, rule := range promptRules {
		if reason := rule(st); reason != "" {
			return fmt.Errorf("%w: %s", ErrUnintelligible, reason)
		}
	}
	return nil
}

// IsValidPrompt checks if a prompt makes sense (not gibberish)
func IsValidPrompt(prompt string) bool {
	return CheckPrompt(prompt) == nil
}

func isRepeatedCharacters(s string) bool {
	if len(s) < 2 {
		return false
	}
	return strings.Count(s, s[:1]) == len(s)
}

// hasLetterRun reports n or more identical consecutive letters. Digit runs
// are allowed so amounts like 10000 pass.
func hasLetterRun(s string, n int) bool {
	run := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] && s[i] >= 'a' && s[i] <= 'z' {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// hasRepeatedChunk reports a size-byte chunk of letters repeated at least
// times back to back, as in "abababab".
func hasRepeatedChunk(s string, size, times int) bool {
	span := size * times
	for i := 0; i+span <= len(s); i++ {
		chunk := s[i : i+size]
		if strings.TrimFunc(chunk, unicode.IsLetter) != "" {
			continue
		}
		if strings.Repeat(chunk, times) == s[i:i+span] {
			return true
		}
	}
	return false
}
