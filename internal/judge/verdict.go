package judge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FallbackText is stored when the model reply can not be decoded
const FallbackText = "No AI response."

var (
	ErrEmptyReply = errors.New("empty model reply")
)

type Verdict struct {
	Success        bool
	AIResponseText string
}

// Result is the outcome of a judged pitch. ParseErr is set when the model
// reply was not a valid verdict and the fallback verdict was used instead.
type Result struct {
	Verdict
	Raw      string
	ParseErr error
}

func (r Result) Parsed() bool {
	return r.ParseErr == nil
}

func FallbackVerdict() Verdict {
	return Verdict{
		Success:        false,
		AIResponseText: FallbackText,
	}
}

type verdictPayload struct {
	Success        *bool   `json:"success"`
	AIResponseText *string `json:"aiResponseText"`
}

// ParseVerdict strictly decodes {"success": bool, "aiResponseText": string}.
// Markdown code fences around the object are tolerated.
func ParseVerdict(content string) (Verdict, error) {
	content = unwrapCodeFence(content)
	if content == "" {
		return Verdict{}, ErrEmptyReply
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.DisallowUnknownFields()

	var payload verdictPayload
	if err := dec.Decode(&payload); err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}

	if dec.More() {
		return Verdict{}, errors.New("decode verdict: trailing data")
	}

	if payload.Success == nil {
		return Verdict{}, errors.New("decode verdict: missing success")
	}

	if payload.AIResponseText == nil || strings.TrimSpace(*payload.AIResponseText) == "" {
		return Verdict{}, errors.New("decode verdict: missing aiResponseText")
	}

	return Verdict{
		Success:        *payload.Success,
		AIResponseText: *payload.AIResponseText,
	}, nil
}

// NewResult never fails: malformed replies turn into the fallback verdict
func NewResult(content string) Result {
	v, err := ParseVerdict(content)
	if err != nil {
		return Result{
			Verdict:  FallbackVerdict(),
			Raw:      content,
			ParseErr: err,
		}
	}

	return Result{Verdict: v, Raw: content}
}

func unwrapCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[idx+1:]
	} else {
		content = ""
	}

	content = strings.TrimSpace(content)

	return strings.TrimSpace(strings.TrimSuffix(content, "```"))
}
