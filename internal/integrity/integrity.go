// Package integrity implements subresource integrity metadata: parsing,
// computing and verifying the digests browsers check before applying a
// fetched stylesheet.
package integrity

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"hash"
	"strings"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

// Algorithm is a hash function allowed in integrity metadata.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	SHA384 Algorithm = "sha384"
	SHA512 Algorithm = "sha512"
)

// strength orders algorithms; the strongest declared one is the only one checked.
var strength = map[Algorithm]int{SHA256: 1, SHA384: 2, SHA512: 3}

func (a Algorithm) newHash() hash.Hash {
	switch a {
	case SHA256:
		return sha256.New()
	case SHA384:
		return sha512.New384()
	case SHA512:
		return sha512.New()
	}
	return nil
}

func (a Algorithm) size() int {
	switch a {
	case SHA256:
		return sha256.Size
	case SHA384:
		return sha512.Size384
	case SHA512:
		return sha512.Size
	}
	return 0
}

// Digest is one "<alg>-<base64>[?options]" token.
type Digest struct {
	Algorithm Algorithm
	Value     string
	Options   string
}

func (d Digest) String() string {
	s := string(d.Algorithm) + "-" + d.Value
	if d.Options != "" {
		s += "?" + d.Options
	}
	return s
}

// Parse splits whitespace separated integrity metadata into digests. Tokens
// naming an unsupported algorithm are skipped, as browsers do; metadata
// without any usable token is an error.
func Parse(meta string) ([]Digest, error) {
	var out []Digest
	for _, tok := range strings.Fields(meta) {
		alg, rest, ok := strings.Cut(tok, "-")
		if !ok {
			return nil, invalid(meta, fmt.Sprintf("token %q has no algorithm prefix", tok))
		}
		a := Algorithm(strings.ToLower(alg))
		if _, known := strength[a]; !known {
			continue
		}
		value, opts, _ := strings.Cut(rest, "?")
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, invalid(meta, fmt.Sprintf("token %q is not base64", tok))
		}
		if len(raw) != a.size() {
			return nil, invalid(meta, fmt.Sprintf("token %q has %d bytes, %s needs %d", tok, len(raw), a, a.size()))
		}
		out = append(out, Digest{Algorithm: a, Value: value, Options: opts})
	}
	if len(out) == 0 {
		return nil, invalid(meta, "no supported digest")
	}
	return out, nil
}

func invalid(meta, reason string) error {
	return ferrors.ValidationError("invalid integrity metadata: "+reason).
		WithCode(ferrors.CodeInvalidIntegrity).
		WithContext(ferrors.ContextValue, meta).
		Build()
}

// Strongest returns the digests of the strongest algorithm present.
func Strongest(digests []Digest) []Digest {
	best := 0
	for _, d := range digests {
		best = max(best, strength[d.Algorithm])
	}
	var out []Digest
	for _, d := range digests {
		if strength[d.Algorithm] == best {
			out = append(out, d)
		}
	}
	return out
}

// Compute returns the integrity token of content for alg.
func Compute(content []byte, alg Algorithm) (string, error) {
	h := alg.newHash()
	if h == nil {
		return "", ferrors.ValidationError("unsupported integrity algorithm").
			WithCode(ferrors.CodeInvalidIntegrity).
			WithContext(ferrors.ContextValue, string(alg)).Build()
	}
	_, _ = h.Write(content)
	return string(alg) + "-" + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// Verify checks content against meta. Only digests of the strongest declared
// algorithm are considered; any one of them matching passes.
func Verify(content []byte, meta string) error {
	digests, err := Parse(meta)
	if err != nil {
		return err
	}
	candidates := Strongest(digests)
	alg := candidates[0].Algorithm
	h := alg.newHash()
	_, _ = h.Write(content)
	actual := base64.StdEncoding.EncodeToString(h.Sum(nil))
	for _, d := range candidates {
		if subtle.ConstantTimeCompare([]byte(d.Value), []byte(actual)) == 1 {
			return nil
		}
	}
	return ferrors.IntegrityMismatch("").
		WithContext("expected", candidates[0].String()).
		WithContext("actual", string(alg)+"-"+actual).
		Build()
}
