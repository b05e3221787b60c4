// Package querylang recognises the advanced search syntax (boolean operators,
// quoted phrases, platform:term scopes, @mentions, #hashtags) and classifies
// each query into a search_type. Unrecognised syntax degrades to plain
// full-text matching; Parse never fails.
package querylang

import (
	"regexp"
	"strings"
)

// Search type labels echoed in search responses.
const (
	TypeBoolean        = "boolean"
	TypePhrase         = "phrase"
	TypePlatformScoped = "platform-scoped"
	TypeMention        = "mention"
	TypeHashtag        = "hashtag"
	TypePlain          = "plain"
	TypeSemantic       = "semantic"
)

// Query is the parsed form of a free-text search query.
type Query struct {
	Raw  string
	Type string

	Terms        []string
	ExcludeTerms []string
	Phrase       string
	// MatchAll is set for AND-joined boolean queries.
	MatchAll bool
	// Platforms collects platform:term scopes naming a known platform.
	Platforms []string
}

var phrasePattern = regexp.MustCompile(`"([^"]*)"`)

// Parse classifies a sanitized query string. validPlatform decides whether a
// scoped token like instagram:launch names a real platform; scopes that do
// not are folded back into plain terms.
func Parse(raw string, validPlatform func(string) bool) Query {
	q := Query{Raw: raw, Type: TypePlain}

	rest := raw
	if m := phrasePattern.FindStringSubmatch(rest); m != nil {
		q.Phrase = strings.ToLower(strings.TrimSpace(m[1]))
		rest = phrasePattern.ReplaceAllString(rest, " ")
	}

	var (
		sawAnd, sawOr, sawNot  bool
		sawMention, sawHashtag bool
		negateNext             bool
	)

	for _, tok := range strings.Fields(rest) {
		switch tok {
		case "AND":
			sawAnd = true
			continue
		case "OR":
			sawOr = true
			continue
		case "NOT":
			sawNot = true
			negateNext = true
			continue
		}

		term := tok
		switch {
		case strings.HasPrefix(tok, "@") && len(tok) > 1:
			sawMention = true
			term = tok[1:]
		case strings.HasPrefix(tok, "#") && len(tok) > 1:
			sawHashtag = true
			term = tok[1:]
		case strings.Contains(tok, ":"):
			scope, val, _ := strings.Cut(tok, ":")
			scope = strings.ToLower(scope)
			if validPlatform != nil && validPlatform(scope) {
				q.Platforms = append(q.Platforms, scope)
				term = val
			}
			// Unknown scope: keep the whole token as a plain term.
		}

		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if negateNext {
			q.ExcludeTerms = append(q.ExcludeTerms, term)
			negateNext = false
			continue
		}
		q.Terms = append(q.Terms, term)
	}

	// AND joins everything; a mixed AND/OR query keeps the looser OR
	// semantics so it never returns fewer results than either branch.
	q.MatchAll = sawAnd && !sawOr

	switch {
	case sawAnd || sawOr || sawNot:
		q.Type = TypeBoolean
	case q.Phrase != "":
		q.Type = TypePhrase
	case len(q.Platforms) > 0:
		q.Type = TypePlatformScoped
	case sawMention:
		q.Type = TypeMention
	case sawHashtag:
		q.Type = TypeHashtag
	default:
		q.Type = TypePlain
	}
	return q
}
