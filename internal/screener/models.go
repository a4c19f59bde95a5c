package screener

import (
	"errors"
	"strings"
)

const (
	MinLength = 50
	MaxLength = 400

	LabelUnknown   = "UNKNOWN"
	LabelInjection = "INJECTION"
)

var (
	ErrPitchTooShort       = errors.New("Please ensure your pitch is at least 50 characters.")
	ErrPitchTooLong        = errors.New("Please ensure your pitch is less than 400 characters.")
	ErrForbiddenCharacters = errors.New("No special characters allowed in the pitch.")
)

// Classification is the top label reported by the injection classifier
type Classification struct {
	Label string
	Score float64
}

func Unknown() Classification {
	return Classification{Label: LabelUnknown}
}

func (c Classification) IsInjection() bool {
	return strings.EqualFold(c.Label, LabelInjection)
}
