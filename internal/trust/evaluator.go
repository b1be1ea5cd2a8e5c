package trust

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
)

var (
	// ErrNoPinnedMaterial is returned when pinning is required but nothing is bundled for the host
	ErrNoPinnedMaterial = errors.New("no pinned certificates or keys for host")
	// ErrPinMismatch is returned when no presented credential matches the bundled material
	ErrPinMismatch = errors.New("server credentials do not match pinned material")
)

// Evaluator decides whether the certificate chain presented by host is acceptable.
// It runs after the standard chain verification performed by crypto/tls.
type Evaluator interface {
	Evaluate(host string, chain []*x509.Certificate) error
}

// EvaluatorFunc adapts a function to Evaluator
type EvaluatorFunc func(host string, chain []*x509.Certificate) error

// Evaluate calls f
func (f EvaluatorFunc) Evaluate(host string, chain []*x509.Certificate) error {
	return f(host, chain)
}

// DefaultEvaluator accepts anything the standard CA verification accepted
type DefaultEvaluator struct{}

// Evaluate always succeeds; crypto/tls has already verified the chain
func (DefaultEvaluator) Evaluate(string, []*x509.Certificate) error {
	return nil
}

// CertificatePinning requires one of the presented certificates (leaf or
// intermediate) to be byte-identical to a pinned certificate
type CertificatePinning struct {
	Certificates []*x509.Certificate
}

// Evaluate implements Evaluator
func (p CertificatePinning) Evaluate(host string, chain []*x509.Certificate) error {
	if len(p.Certificates) == 0 {
		return fmt.Errorf("certificate pinning for %s: %w", host, ErrNoPinnedMaterial)
	}
	for _, presented := range chain {
		for _, pinned := range p.Certificates {
			if bytes.Equal(presented.Raw, pinned.Raw) {
				return nil
			}
		}
	}
	return fmt.Errorf("certificate pinning for %s: %w", host, ErrPinMismatch)
}

// PublicKeyPinning requires one of the presented certificates to carry a
// public key whose SPKI SHA-256 hash is pinned
type PublicKeyPinning struct {
	Hashes [][sha256.Size]byte
}

// Evaluate implements Evaluator
func (p PublicKeyPinning) Evaluate(host string, chain []*x509.Certificate) error {
	if len(p.Hashes) == 0 {
		return fmt.Errorf("public key pinning for %s: %w", host, ErrNoPinnedMaterial)
	}
	for _, presented := range chain {
		sum := SPKIHash(presented)
		for _, pinned := range p.Hashes {
			if sum == pinned {
				return nil
			}
		}
	}
	return fmt.Errorf("public key pinning for %s: %w", host, ErrPinMismatch)
}

// SPKIHash returns the SHA-256 of the certificate's SubjectPublicKeyInfo
func SPKIHash(cert *x509.Certificate) [sha256.Size]byte {
	return sha256.Sum256(cert.RawSubjectPublicKeyInfo)
}

// Build derives the evaluator mapping for the domain of rootURL. An empty
// mapping means no custom evaluation: rootURL was absent or malformed.
func Build(rootURL string, mode PinningMode, bundle *Bundle) map[string]Evaluator {
	domain, ok := ExtractDomain(rootURL)
	if !ok {
		return map[string]Evaluator{}
	}

	switch mode {
	case PinningCertificate:
		return map[string]Evaluator{domain: CertificatePinning{Certificates: bundle.Certificates(domain)}}
	case PinningPublicKey:
		return map[string]Evaluator{domain: PublicKeyPinning{Hashes: bundle.PublicKeyHashes(domain)}}
	default:
		return map[string]Evaluator{domain: DefaultEvaluator{}}
	}
}
