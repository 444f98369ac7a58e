package supabase

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// sanitizeForTerminal removes escape sequences and control characters from
// user-supplied text so it cannot drive the terminal. Newlines and tabs stay.
func sanitizeForTerminal(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
}

func cleanAuthor(a *domain.AuthorSummary) {
	a.Username = sanitizeForTerminal(a.Username)
	a.FullName = sanitizeForTerminal(a.FullName)
}

func cleanPost(p *domain.Post) {
	if p.Caption != nil {
		c := sanitizeForTerminal(*p.Caption)
		p.Caption = &c
	}
	cleanAuthor(&p.Author)
}

func cleanProfile(p *domain.Profile) {
	p.Username = sanitizeForTerminal(p.Username)
	p.FullName = sanitizeForTerminal(p.FullName)
	p.Bio = sanitizeForTerminal(p.Bio)
}
