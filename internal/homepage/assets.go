package homepage

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

// AssetResolver maps an asset reference from the configuration, such as
// "img/banner.png", onto the URL a page should load it from.
type AssetResolver interface {
	Resolve(ref string) (string, error)
}

// StaticResolver serves assets from the static directory under baseUrl.
type StaticResolver struct {
	Site config.SiteIdentity
}

// Resolve returns external references unchanged and places the rest under baseUrl.
func (r StaticResolver) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	return r.Site.Route(ref), nil
}

// Asset is a fingerprinted copy of a static file.
type Asset struct {
	Ref    string `json:"ref"`
	Source string `json:"source"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Hash   string `json:"sha256"`
}

// FingerprintResolver hashes static files and serves them under a content
// addressed name, "banner.png" becoming "banner.3f2a9c1d.png". It remembers
// every asset it resolved so they can be copied next to the page.
type FingerprintResolver struct {
	Dir  string
	Site config.SiteIdentity

	mu     sync.Mutex
	assets map[string]Asset
}

// NewFingerprintResolver returns a resolver reading from dir.
func NewFingerprintResolver(dir string, site config.SiteIdentity) *FingerprintResolver {
	return &FingerprintResolver{Dir: dir, Site: site, assets: map[string]Asset{}}
}

// Resolve hashes ref and returns its fingerprinted URL. External references
// are returned unchanged.
func (r *FingerprintResolver) Resolve(ref string) (string, error) {
	if ref == "" || config.IsExternal(ref) {
		return ref, nil
	}
	clean := strings.TrimPrefix(path.Clean("/"+ref), "/")

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assets[clean]; ok {
		return a.URL, nil
	}
	src := filepath.Join(r.Dir, filepath.FromSlash(clean))
	data, err := os.ReadFile(src)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read asset").
			WithContext(ferrors.ContextSource, src).Build()
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	ext := path.Ext(clean)
	name := strings.TrimSuffix(clean, ext) + "." + hash[:8] + ext
	a := Asset{Ref: ref, Source: src, Name: name, URL: r.Site.Route(name), Hash: hash}
	if r.assets == nil {
		r.assets = map[string]Asset{}
	}
	r.assets[clean] = a
	return a.URL, nil
}

// Assets returns every asset resolved so far, sorted by name.
func (r *FingerprintResolver) Assets() []Asset {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Asset, 0, len(r.assets))
	for _, a := range r.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
