package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// envFileNames are tried in order; values already present in the process
// environment are never overwritten, so earlier files win over later ones.
var envFileNames = []string{".env", ".env.local"}

// loadEnvFiles loads every env file present in dir and returns the loaded paths.
func loadEnvFiles(dir string) ([]string, error) {
	var loaded []string
	for _, name := range envFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, err
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// expandEnv replaces ${NAME} references with the value of the environment
// variable NAME (empty when unset) and "$$" with a literal "$". Any other
// "$" is kept as written, so prices and shell snippets survive.
func expandEnv(data []byte) []byte {
	s := string(data)
	if !strings.Contains(s, "$") {
		return data
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case '$':
			b.WriteByte('$')
			i++
		case '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 || !isEnvName(s[i+2:i+2+end]) {
				b.WriteByte('$')
				continue
			}
			b.WriteString(os.Getenv(s[i+2 : i+2+end]))
			i += 2 + end
		default:
			b.WriteByte('$')
		}
	}
	return []byte(b.String())
}

// escapeEnv is the inverse of expandEnv for text containing no references.
func escapeEnv(data []byte) []byte {
	return []byte(strings.ReplaceAll(string(data), "$", "$$"))
}

func isEnvName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
