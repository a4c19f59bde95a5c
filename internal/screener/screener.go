package screener

import (
	"context"
	"errors"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/ai-capital/ai-capital-backend/pkg/sdk/inference"
)

var allowedCharacters = regexp.MustCompile(`^[A-Za-z0-9\s.,!?;:'"()—\-]*$`)

type Classifier interface {
	Classify(ctx context.Context, text string, waitForModel bool) ([]inference.Label, error)
}

type Screener struct {
	classifier Classifier
	timeout    time.Duration
}

// New returns a screener, a nil classifier disables injection detection
func New(classifier Classifier, timeout time.Duration) *Screener {
	return &Screener{
		classifier: classifier,
		timeout:    timeout,
	}
}

// Validate checks the pitch length and character set.
// ErrForbiddenCharacters is the only error that should be penalized.
func Validate(text string) error {
	length := utf8.RuneCountInString(text)
	if length < MinLength {
		return ErrPitchTooShort
	}

	if length > MaxLength {
		return ErrPitchTooLong
	}

	if !allowedCharacters.MatchString(text) {
		return ErrForbiddenCharacters
	}

	return nil
}

// Screen validates the pitch and runs the injection classifier on valid text
func (s *Screener) Screen(ctx context.Context, text string) (Classification, error) {
	if err := Validate(text); err != nil {
		return Unknown(), err
	}

	return s.Classify(ctx, text), nil
}

// Classify never fails: an unavailable or broken classifier results in UNKNOWN
// with zero score. A loading model or a timed out first attempt is retried
// once with the wait flag.
func (s *Screener) Classify(ctx context.Context, text string) Classification {
	if s.classifier == nil {
		return Unknown()
	}

	labels, err := s.attempt(ctx, text, false)
	if err != nil && ctx.Err() == nil && isTransient(err) {
		log.Debug().Err(err).Msg("retry injection classification with wait for model")

		labels, err = s.attempt(ctx, text, true)
	}

	if err != nil {
		log.Warn().Err(err).Msg("injection classifier is unavailable")

		return Unknown()
	}

	return top(labels)
}

func (s *Screener) attempt(ctx context.Context, text string, wait bool) ([]inference.Label, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.classifier.Classify(ctx, text, wait)
}

func isTransient(err error) bool {
	return errors.Is(err, inference.ErrModelLoading) || errors.Is(err, context.DeadlineExceeded)
}

func top(labels []inference.Label) Classification {
	res := Unknown()
	found := false
	for _, l := range labels {
		if l.Label == "" {
			continue
		}

		if !found || l.Score > res.Score {
			res = Classification{Label: l.Label, Score: l.Score}
			found = true
		}
	}

	return res
}
