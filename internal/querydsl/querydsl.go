// Package querydsl parses the "key:value freetext" query grammar from
// spec.md §4.4: a sequence of whitespace-separated terms, each either a
// recognised filter (key:value[,value...]) or free text. No parser
// library appears anywhere in the retrieved corpus for this kind of small
// fixed grammar, so this is a hand-rolled scanner, matching how the
// teacher itself never reaches for a parser-combinator library even for
// its config/CLI flag parsing.
package querydsl

import (
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/codemate/internal/cmerrors"
)

// Keys recognised as filters; anything else is treated as free text.
const (
	KeyLang   = "lang"
	KeyAuthor = "author"
	KeyFile   = "file"
	KeyPath   = "path"
	KeyAfter  = "after"
	KeyBefore = "before"
	KeyIn     = "in"
	KeyType   = "type"
	KeyLimit  = "limit"
)

var knownKeys = map[string]bool{
	KeyLang: true, KeyAuthor: true, KeyFile: true, KeyPath: true,
	KeyAfter: true, KeyBefore: true, KeyIn: true, KeyType: true, KeyLimit: true,
}

// globKeys permit glob patterns in their values.
var globKeys = map[string]bool{KeyFile: true, KeyPath: true, KeyIn: true}

// Query is a parsed DSL query: free text plus a set of filters, each
// filter's values forming a membership set ("lang:rust,go" => lang is in
// {rust, go}"; a repeated key is unioned into the same set).
type Query struct {
	Freetext string
	Filters  map[string][]string
}

// Values returns the CSV-expanded value set for key, or nil if absent.
func (q Query) Values(key string) []string {
	return q.Filters[key]
}

// Parse tokenizes and parses input per spec.md §4.4's grammar.
func Parse(input string) (Query, error) {
	q := Query{Filters: make(map[string][]string)}
	var freetext []string

	for _, token := range tokenize(input) {
		key, rest, isFilter := splitFilter(token)
		if !isFilter || !knownKeys[key] {
			freetext = append(freetext, unquote(token))
			continue
		}

		values, err := parseValues(rest)
		if err != nil {
			return Query{}, err
		}

		if key == KeyAfter || key == KeyBefore {
			for _, v := range values {
				if _, err := parseISODate(v); err != nil {
					return Query{}, cmerrors.New(cmerrors.ErrInvalidDate, cmerrors.KindInvalidQuery,
						key+": "+v+" is not a valid ISO-8601 date", err)
				}
			}
		}

		q.Filters[key] = append(q.Filters[key], values...)
	}

	q.Freetext = strings.Join(freetext, " ")
	return q, nil
}

// tokenize splits input on unquoted whitespace, treating a double-quoted
// run (including its internal whitespace) as part of one token.
func tokenize(input string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n':
			if inQuotes {
				cur.WriteRune(r)
			} else {
				flush()
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// splitFilter finds the first ':' that appears before any quote, treating
// that as the key/value boundary. A token with no such colon, or whose
// colon is inside a quoted run, is not a filter.
func splitFilter(token string) (key, rest string, ok bool) {
	for i, r := range token {
		if r == '"' {
			return "", "", false
		}
		if r == ':' {
			return token[:i], token[i+1:], true
		}
	}
	return "", "", false
}

// parseValues splits a filter's value on unquoted commas (CSV), unquoting
// each scalar.
func parseValues(raw string) ([]string, error) {
	var values []string
	var cur strings.Builder
	inQuotes := false

	flush := func() {
		values = append(values, unquote(cur.String()))
		cur.Reset()
	}

	for _, r := range raw {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ',' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, cmerrors.New(cmerrors.ErrInvalidQuerySyntax, cmerrors.KindInvalidQuery, "unterminated quote in: "+raw, nil)
	}
	flush()
	return values, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func parseISODate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// CompileGlobs compiles a filter key's values into matchers. Only
// file/path/in accept globs per spec.md §4.4; other keys are matched
// literally by their caller and never passed here.
func CompileGlobs(values []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(values))
	for _, v := range values {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return nil, cmerrors.Wrap(cmerrors.ErrInvalidGlob, cmerrors.KindInvalidQuery, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// IsGlobKey reports whether key accepts glob patterns.
func IsGlobKey(key string) bool {
	return globKeys[key]
}
