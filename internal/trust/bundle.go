package trust

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
)

// ManifestFile is the optional pin list at the root of a bundle directory
const ManifestFile = "pins.yaml"

var certExtensions = map[string]bool{
	".pem": true,
	".crt": true,
	".cer": true,
	".der": true,
}

// Bundle holds reference certificates and public key hashes per domain.
// Domain keys may be glob patterns such as *.example.com.
type Bundle struct {
	mu    sync.RWMutex
	certs map[string][]*x509.Certificate
	pins  map[string][][sha256.Size]byte
}

// Manifest is the pins.yaml layout
type Manifest struct {
	// Pins maps a domain (or pattern) to base64 SHA-256 SPKI hashes
	Pins map[string][]string `yaml:"pins"`
}

// NewBundle creates an empty bundle
func NewBundle() *Bundle {
	return &Bundle{
		certs: make(map[string][]*x509.Certificate),
		pins:  make(map[string][][sha256.Size]byte),
	}
}

// AddCertificate pins cert for domain
func (b *Bundle) AddCertificate(domain string, cert *x509.Certificate) {
	key := normalizeKey(domain)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.certs[key] = append(b.certs[key], cert)
}

// AddPublicKeyHash pins a SPKI SHA-256 hash for domain
func (b *Bundle) AddPublicKeyHash(domain string, hash [sha256.Size]byte) {
	key := normalizeKey(domain)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pins[key] = append(b.pins[key], hash)
}

// AddPin pins a base64 encoded SPKI SHA-256 hash (the "pin-sha256" format) for domain
func (b *Bundle) AddPin(domain, pin string) error {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(strings.TrimSpace(pin), "sha256/"))
	if err != nil {
		return fmt.Errorf("invalid pin for %s: %w", domain, err)
	}
	if len(raw) != sha256.Size {
		return fmt.Errorf("invalid pin for %s: want %d bytes, got %d", domain, sha256.Size, len(raw))
	}
	var hash [sha256.Size]byte
	copy(hash[:], raw)
	b.AddPublicKeyHash(domain, hash)
	return nil
}

// Certificates returns the certificates pinned for domain, including those
// registered under matching patterns
func (b *Bundle) Certificates(domain string) []*x509.Certificate {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*x509.Certificate
	for _, key := range matchingKeys(b.certKeys(), domain) {
		out = append(out, b.certs[key]...)
	}
	return out
}

// PublicKeyHashes returns the SPKI hashes pinned for domain, both explicit
// pins and the keys of pinned certificates
func (b *Bundle) PublicKeyHashes(domain string) [][sha256.Size]byte {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out [][sha256.Size]byte
	for _, key := range matchingKeys(b.pinKeys(), domain) {
		out = append(out, b.pins[key]...)
	}
	for _, key := range matchingKeys(b.certKeys(), domain) {
		for _, cert := range b.certs[key] {
			out = append(out, SPKIHash(cert))
		}
	}
	return out
}

// Domains lists every domain or pattern with reference material
func (b *Bundle) Domains() []string {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range b.certs {
		seen[k] = struct{}{}
	}
	for k := range b.pins {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (b *Bundle) certKeys() []string {
	keys := make([]string, 0, len(b.certs))
	for k := range b.certs {
		keys = append(keys, k)
	}
	return keys
}

func (b *Bundle) pinKeys() []string {
	keys := make([]string, 0, len(b.pins))
	for k := range b.pins {
		keys = append(keys, k)
	}
	return keys
}

// matchingKeys returns the exact key for domain (if present) followed by
// every pattern key that matches it, in a stable order
func matchingKeys(keys []string, domain string) []string {
	domain = normalizeKey(domain)
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		if k == domain {
			out = append([]string{k}, out...)
			continue
		}
		if matchPattern(k, domain) {
			out = append(out, k)
		}
	}
	return out
}

// matchPattern matches host against a wildcard domain label by label, so
// "*.example.com" covers exactly one label as in TLS and "**.example.com"
// covers any depth, the apex included.
func matchPattern(pattern, host string) bool {
	if !containsGlob(pattern) {
		return false
	}
	ok, err := doublestar.Match(labelPath(pattern), labelPath(host))
	return err == nil && ok
}

func labelPath(domain string) string {
	return strings.ReplaceAll(domain, ".", "/")
}

// LoadBundle reads reference material from dir. Every subdirectory is named
// after the domain it pins and holds certificate files; dir/pins.yaml may add
// SPKI pins. A missing dir yields an empty bundle.
func LoadBundle(dir string) (*Bundle, error) {
	bundle := NewBundle()
	if dir == "" {
		return bundle, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return bundle, nil
		}
		return nil, fmt.Errorf("failed to read pin bundle: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		domain := entry.Name()
		files, err := os.ReadDir(filepath.Join(dir, domain))
		if err != nil {
			return nil, fmt.Errorf("failed to read pins for %s: %w", domain, err)
		}
		for _, f := range files {
			if f.IsDir() || !certExtensions[strings.ToLower(filepath.Ext(f.Name()))] {
				continue
			}
			path := filepath.Join(dir, domain, f.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			certs, err := ParseCertificates(data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			for _, cert := range certs {
				bundle.AddCertificate(domain, cert)
			}
		}
	}

	manifest, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return bundle, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	}
	if err := bundle.ApplyManifest(manifest); err != nil {
		return nil, err
	}
	return bundle, nil
}

// ApplyManifest adds the pins listed in a pins.yaml document
func (b *Bundle) ApplyManifest(data []byte) error {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("invalid %s: %w", ManifestFile, err)
	}
	for domain, pins := range m.Pins {
		for _, pin := range pins {
			if err := b.AddPin(domain, pin); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParseCertificates decodes every certificate in PEM data, or a single DER certificate
func ParseCertificates(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if len(certs) > 0 {
		return certs, nil
	}

	cert, err := x509.ParseCertificate(data)
	if err != nil {
		return nil, fmt.Errorf("no certificate found: %w", err)
	}
	return []*x509.Certificate{cert}, nil
}
