package trust

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"sort"
)

// ServerTrustManager maps hosts to evaluators. It is built once and read-only afterwards.
type ServerTrustManager struct {
	evaluators map[string]Evaluator
	patterns   []string
}

// NewServerTrustManager wraps an evaluator mapping. Keys may be glob patterns.
func NewServerTrustManager(evaluators map[string]Evaluator) *ServerTrustManager {
	m := &ServerTrustManager{evaluators: make(map[string]Evaluator, len(evaluators))}
	for domain, ev := range evaluators {
		key := normalizeKey(domain)
		m.evaluators[key] = ev
		if containsGlob(key) {
			m.patterns = append(m.patterns, key)
		}
	}
	sort.Strings(m.patterns)
	return m
}

// Len returns the number of configured hosts and patterns
func (m *ServerTrustManager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.evaluators)
}

// Evaluator returns the evaluator for host. Exact entries win over patterns.
func (m *ServerTrustManager) Evaluator(host string) (Evaluator, bool) {
	if m == nil {
		return nil, false
	}
	key, ok := NormalizeHost(host)
	if !ok {
		return nil, false
	}
	if ev, ok := m.evaluators[key]; ok {
		return ev, true
	}
	for _, pattern := range m.patterns {
		if matchPattern(pattern, key) {
			return m.evaluators[pattern], true
		}
	}
	return nil, false
}

// Evaluate runs the evaluator for host against chain. Hosts without an
// evaluator are accepted: they already passed standard verification.
func (m *ServerTrustManager) Evaluate(host string, chain []*x509.Certificate) error {
	ev, ok := m.Evaluator(host)
	if !ok {
		return nil
	}
	return ev.Evaluate(host, chain)
}

// TLSConfig returns the base client TLS configuration. roots may be nil to use the system pool.
func TLSConfig(roots *x509.CertPool) *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    roots,
	}
}

// DialTLSContext returns a dial function that performs the TLS handshake
// itself so the evaluator for the dialed host runs on every new connection
func (m *ServerTrustManager) DialTLSContext(dialer *net.Dialer, base *tls.Config) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	if base == nil {
		base = TLSConfig(nil)
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", addr, err)
		}

		cfg := base.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = host
		}
		if ev, ok := m.Evaluator(host); ok {
			cfg.VerifyConnection = func(cs tls.ConnectionState) error {
				return ev.Evaluate(host, cs.PeerCertificates)
			}
		}

		raw, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		conn := tls.Client(raw, cfg)
		if err := conn.HandshakeContext(ctx); err != nil {
			raw.Close()
			return nil, err
		}
		return conn, nil
	}
}
