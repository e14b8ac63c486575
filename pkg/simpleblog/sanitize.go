package simpleblog

import "github.com/microcosm-cc/bluemonday"

// strictSanitizer strips all HTML from plain-text fields (comments, profile
// text) before they are stored. Post content is stored verbatim: it is
// markdown, and rendering is a display-time collaborator concern.
type strictSanitizer struct {
	policy *bluemonday.Policy
}

// NewStrictSanitizer returns the default Sanitizer. The strict policy removes
// every tag and attribute, leaving only text content.
func NewStrictSanitizer() Sanitizer {
	return &strictSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *strictSanitizer) Sanitize(in string) string {
	return s.policy.Sanitize(in)
}
