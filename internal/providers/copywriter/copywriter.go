// Package copywriter produces the script, caption and hashtags that
// accompany a rendered ad.
package copywriter

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Copy is the stateless result of one generation call.
type Copy struct {
	Script   string   `json:"script"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// Request carries the brief for one copy generation.
type Request struct {
	Prompt string
	Tone   string
	Locale string
}

// Generator is the contract implemented by all copy providers.
type Generator interface {
	GenerateCopy(ctx context.Context, req Request) (*Copy, error)
}

// Static serves deterministic copy when no language-model key is configured,
// keeping the wizard usable end-to-end in demo environments.
type Static struct{}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) GenerateCopy(ctx context.Context, req Request) (*Copy, error) {
	c := cases.Title(language.Und)
	subject := strings.TrimSpace(req.Prompt)
	if subject == "" {
		subject = "your product"
	}
	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = "upbeat"
	}
	script := fmt.Sprintf("Open on %s. Quick cuts, %s energy, end card with the logo and a call to action.", subject, strings.ToLower(tone))
	caption := fmt.Sprintf("%s — made in seconds.", c.String(subject))
	return &Copy{
		Script:   script,
		Caption:  caption,
		Hashtags: PrefixHashtags([]string{"ad", "shortform", "video", "creative"}),
	}, nil
}

var _ Generator = (*Static)(nil)

// PrefixHashtags ensures every tag carries exactly one leading #.
func PrefixHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		out = append(out, tag)
	}
	return out
}
