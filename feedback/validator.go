package feedback

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Output is the structured body the model must return
type Output struct {
	Analysis      string  `json:"analysis"`
	Questions     string  `json:"questions"`
	PrimaryType   string  `json:"primary_type"`
	SecondaryType *string `json:"secondary_type"`
}

// ParseError reports a model response that does not satisfy the output
// contract. Model output is not deterministic, so the invoker treats
// parse failures as transient and retries them.
type ParseError struct {
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid model response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid model response: %s", e.Reason)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseOutput validates the model's raw text against the output contract.
// The mandatory primary_type must be present and non-empty; the optional
// secondary_type is normalized so that textual "none" sentinels become a
// true null. Taxonomy membership is only enforced when strictTaxonomy is
// set - by default the model's categories pass through unverified.
func ParseOutput(raw string, strictTaxonomy bool) (*Output, error) {
	var out Output
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &ParseError{Reason: "not a JSON object", Err: err}
	}

	if strings.TrimSpace(out.PrimaryType) == "" {
		return nil, &ParseError{Reason: "missing primary_type"}
	}

	out.SecondaryType = normalizeSecondary(out.SecondaryType)

	if strictTaxonomy {
		if !FailureType(out.PrimaryType).Valid() {
			return nil, &ParseError{Reason: fmt.Sprintf("unknown primary_type %q", out.PrimaryType)}
		}
		if out.SecondaryType != nil && !FailureType(*out.SecondaryType).Valid() {
			return nil, &ParseError{Reason: fmt.Sprintf("unknown secondary_type %q", *out.SecondaryType)}
		}
	}

	return &out, nil
}

// normalizeSecondary coerces the textual sentinels meaning "no secondary
// cause" to an explicit nil
func normalizeSecondary(s *string) *string {
	if s == nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(*s)) {
	case "", "null", "none":
		return nil
	}
	return s
}
