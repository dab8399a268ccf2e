// Package safety post-processes generated text before it leaves the service.
package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/config"
)

// DefaultDisclaimer is appended to any response that does not already carry
// a disclaimer of its own.
const DefaultDisclaimer = "This information is for educational purposes only " +
	"and is not a substitute for professional medical advice. " +
	"Always consult your doctor."

// Phrases that indicate the model produced a definitive diagnosis or an
// instruction that must never reach a patient unreviewed.
var defaultDisallowedPatterns = []string{
	`(?i)\byou (definitely|certainly|clearly) have\b`,
	`(?i)\bthe diagnosis is\b`,
	`(?i)\bi (can |hereby )?diagnose you\b`,
	`(?i)\bno need to (see|consult|visit) a doctor\b`,
	`(?i)\bstop taking your (medication|medicine|prescription)\b`,
}

// disclaimerMarker is the part of the disclaimer checked for presence, so a
// response that already carries the boilerplate is not double-stamped.
var disclaimerMarker = regexp.MustCompile(`(?i)not a substitute for professional medical advice`)

type Verdict struct {
	Accepted bool
	Text     string
}

type Validator struct {
	disallowed []*regexp.Regexp
	disclaimer string
}

func NewValidator(cfg config.Safety) (*Validator, error) {
	patterns := cfg.DisallowedPatterns
	if len(patterns) == 0 {
		patterns = defaultDisallowedPatterns
	}

	disallowed := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile disallowed pattern %q: %w", p, err)
		}
		disallowed = append(disallowed, re)
	}

	disclaimer := cfg.Disclaimer
	if disclaimer == "" {
		disclaimer = DefaultDisclaimer
	}

	return &Validator{
		disallowed: disallowed,
		disclaimer: disclaimer,
	}, nil
}

// Check scans text for disallowed claims and guarantees the disclaimer. A
// rejected verdict means the caller must treat generation as failed; an
// accepted verdict carries the final text to return, disclaimer included.
func (v *Validator) Check(text string) Verdict {
	for _, re := range v.disallowed {
		if re.MatchString(text) {
			return Verdict{Accepted: false, Text: text}
		}
	}

	if !disclaimerMarker.MatchString(text) {
		text = strings.TrimRight(text, "\n ") + "\n\n" + v.disclaimer
	}

	return Verdict{Accepted: true, Text: text}
}
