// Package lang classifies source files into the closed set of languages
// the scanner understands. Classification is a pure function of the file
// path, with a shebang fallback for extensionless scripts.
package lang

import (
	"bufio"
	"bytes"
	"path/filepath"
	"sort"
	"strings"
)

// Language identifies a supported source language.
type Language string

// The closed language set. Unknown disables AST detection but still
// permits fallback regex scanning when the extension is allowlisted.
const (
	C          Language = "c"
	CPP        Language = "cpp"
	CSharp     Language = "csharp"
	Go         Language = "go"
	Haskell    Language = "haskell"
	Java       Language = "java"
	JavaScript Language = "javascript"
	Kotlin     Language = "kotlin"
	Lua        Language = "lua"
	Perl       Language = "perl"
	PHP        Language = "php"
	Python     Language = "python"
	R          Language = "r"
	Ruby       Language = "ruby"
	Rust       Language = "rust"
	Scala      Language = "scala"
	Shell      Language = "shell"
	Swift      Language = "swift"
	TypeScript Language = "typescript"
	Unknown    Language = ""
)

// All lists every known language in display order.
var All = []Language{
	C, CPP, CSharp, Go, Haskell, Java, JavaScript, Kotlin, Lua, Perl,
	PHP, Python, R, Ruby, Rust, Scala, Shell, Swift, TypeScript,
}

// Extensions maps file extensions (lowercased, with leading dot) to
// languages. Tie-breaks favor the more specific extension: .tsx maps to
// TypeScript, .jsx to JavaScript.
var Extensions = map[string]Language{
	// C / C++. Bare .h headers are classified as C; C++-only headers use
	// the .hpp family.
	".c":   C,
	".h":   C,
	".cpp": CPP,
	".cc":  CPP,
	".cxx": CPP,
	".hpp": CPP,
	".hh":  CPP,
	".hxx": CPP,
	// C#
	".cs": CSharp,
	// Go
	".go": Go,
	// Haskell
	".hs":  Haskell,
	".lhs": Haskell,
	// Java
	".java": Java,
	// JavaScript (JSX is the JavaScript grammar)
	".js":  JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".jsx": JavaScript,
	// Kotlin
	".kt":  Kotlin,
	".kts": Kotlin,
	// Lua
	".lua": Lua,
	// Perl
	".pl": Perl,
	".pm": Perl,
	// PHP
	".php": PHP,
	// Python
	".py":  Python,
	".pyw": Python,
	".pyi": Python,
	// R
	".r": R,
	// Ruby
	".rb":   Ruby,
	".rake": Ruby,
	// Rust
	".rs": Rust,
	// Scala
	".scala": Scala,
	".sc":    Scala,
	// Shell
	".sh":   Shell,
	".bash": Shell,
	".zsh":  Shell,
	// Swift
	".swift": Swift,
	// TypeScript (TSX is the TypeScript grammar's TSX dialect)
	".ts":  TypeScript,
	".tsx": TypeScript,
}

// shebangs maps shebang interpreter names to languages.
var shebangs = map[string]Language{
	"python":  Python,
	"ruby":    Ruby,
	"node":    JavaScript,
	"deno":    TypeScript,
	"bun":     TypeScript,
	"bash":    Shell,
	"sh":      Shell,
	"zsh":     Shell,
	"perl":    Perl,
	"php":     PHP,
	"lua":     Lua,
	"swift":   Swift,
	"Rscript": R,
}

// FromPath classifies a file by its extension alone. Extensionless files
// come back Unknown; use Detect when content is available for shebang
// sniffing.
func FromPath(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if l, ok := Extensions[ext]; ok {
		return l
	}
	return Unknown
}

// Detect classifies a file by extension, falling back to the shebang on
// the first content line for extensionless scripts. Deterministic: the
// same (path, content) pair always yields the same language.
func Detect(path string, content []byte) Language {
	if l := FromPath(path); l != Unknown {
		return l
	}
	if filepath.Ext(path) != "" {
		// An extension we don't know beats any shebang guess.
		return Unknown
	}
	return fromShebang(content)
}

// fromShebang parses "#!/usr/bin/env python3" style interpreter lines.
func fromShebang(content []byte) Language {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	if !scanner.Scan() {
		return Unknown
	}
	line := scanner.Text()
	if !strings.HasPrefix(line, "#!") {
		return Unknown
	}

	parts := strings.Fields(strings.TrimSpace(strings.TrimPrefix(line, "#!")))
	if len(parts) == 0 {
		return Unknown
	}
	interpreter := filepath.Base(parts[0])
	if interpreter == "env" && len(parts) > 1 {
		interpreter = filepath.Base(parts[1])
	}

	if l, ok := shebangs[interpreter]; ok {
		return l
	}
	// python3 -> python, ruby2.7 -> ruby
	stripped := strings.TrimRight(interpreter, "0123456789.")
	if l, ok := shebangs[stripped]; ok {
		return l
	}
	return Unknown
}

// ExtensionsFor returns the extensions mapped to a language, sorted for
// stable display.
func ExtensionsFor(l Language) []string {
	var exts []string
	for ext, lang := range Extensions {
		if lang == l {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Display returns the human-readable language name.
func (l Language) Display() string {
	switch l {
	case C:
		return "C"
	case CPP:
		return "C++"
	case CSharp:
		return "C#"
	case Go:
		return "Go"
	case Haskell:
		return "Haskell"
	case Java:
		return "Java"
	case JavaScript:
		return "JavaScript/JSX"
	case Kotlin:
		return "Kotlin"
	case Lua:
		return "Lua"
	case Perl:
		return "Perl"
	case PHP:
		return "PHP"
	case Python:
		return "Python"
	case R:
		return "R"
	case Ruby:
		return "Ruby"
	case Rust:
		return "Rust"
	case Scala:
		return "Scala"
	case Shell:
		return "Shell"
	case Swift:
		return "Swift"
	case TypeScript:
		return "TypeScript/TSX"
	default:
		return "Unknown"
	}
}
