package chunk

import (
	"fmt"
	"strings"
)

// FQN is a fully-qualified symbol name: "<language>:<native_path>". The
// native path preserves each language's own convention:
//
//	rust:       rust:<crate>::<path>::<item>
//	python:     python:<dotted.path>
//	typescript: typescript:<module>#<export>[.member]
//	go:         go:<package>.<symbol>
//	java:       java:<fqcn>[#method]
//
// Invariant: ParseFQN(fqn.String()) == fqn for every FQN produced by this
// package.
type FQN struct {
	Language Language
	Native   string
}

// String renders the canonical "<language>:<native_path>" form.
func (f FQN) String() string {
	return string(f.Language) + ":" + f.Native
}

// ParseFQN splits a canonical FQN string back into its language and native
// path. The language prefix is the text before the first ':'; everything
// after (which may itself contain ':' for Rust's "::") is the native path.
func ParseFQN(s string) (FQN, error) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return FQN{}, fmt.Errorf("chunk: %q is not a valid FQN (missing language prefix)", s)
	}
	lang := Language(s[:idx])
	native := s[idx+1:]
	if native == "" {
		return FQN{}, fmt.Errorf("chunk: %q is not a valid FQN (empty native path)", s)
	}
	return FQN{Language: lang, Native: native}, nil
}

// separator returns the separator this language uses between path
// components, for ShortName/Parent purposes.
func (f FQN) separator() string {
	switch f.Language {
	case LangRust:
		return "::"
	case LangPython:
		return "."
	case LangTypeScript, LangJavaScript:
		if strings.Contains(f.Native, "#") {
			return "."
		}
		return "#"
	case LangGo:
		return "."
	case LangJava:
		if strings.Contains(f.Native, "#") {
			return "#"
		}
		return "."
	default:
		return "."
	}
}

// ShortName returns the terminal component of the native path, e.g. for
// "rust:crate::mod::item" it returns "item".
func (f FQN) ShortName() string {
	sep := f.separator()
	idx := strings.LastIndex(f.Native, sep)
	if idx < 0 {
		return f.Native
	}
	return f.Native[idx+len(sep):]
}

// Parent drops the terminal component, e.g. for "rust:crate::mod::item" it
// returns "rust:crate::mod". Returns a zero-native FQN if there is no
// parent component.
func (f FQN) Parent() FQN {
	sep := f.separator()
	idx := strings.LastIndex(f.Native, sep)
	if idx < 0 {
		return FQN{Language: f.Language}
	}
	return FQN{Language: f.Language, Native: f.Native[:idx]}
}

// NewRustFQN builds a Rust FQN from its crate and path components, e.g.
// NewRustFQN("mycrate", "mod", "item") -> "rust:mycrate::mod::item".
func NewRustFQN(crate string, path ...string) FQN {
	parts := append([]string{crate}, path...)
	return FQN{Language: LangRust, Native: strings.Join(parts, "::")}
}

// NewPythonFQN builds a Python FQN from its dotted path components.
func NewPythonFQN(path ...string) FQN {
	return FQN{Language: LangPython, Native: strings.Join(path, ".")}
}

// NewTypeScriptFQN builds a TypeScript/JavaScript FQN: module#export[.member].
func NewTypeScriptFQN(module, export string, member ...string) FQN {
	native := module + "#" + export
	if len(member) > 0 {
		native += "." + strings.Join(member, ".")
	}
	return FQN{Language: LangTypeScript, Native: native}
}

// NewGoFQN builds a Go FQN: package.symbol.
func NewGoFQN(pkg, symbol string) FQN {
	return FQN{Language: LangGo, Native: pkg + "." + symbol}
}

// NewJavaFQN builds a Java FQN: fqcn[#method].
func NewJavaFQN(fqcn string, method ...string) FQN {
	native := fqcn
	if len(method) > 0 {
		native += "#" + strings.Join(method, ".")
	}
	return FQN{Language: LangJava, Native: native}
}
