package trust

import (
	"fmt"
	"strings"
)

// PinningMode selects the evaluation strategy for the root domain
type PinningMode int

const (
	PinningDisabled PinningMode = iota
	PinningCertificate
	PinningPublicKey
)

// String returns the mode name as accepted by ParsePinningMode
func (m PinningMode) String() string {
	switch m {
	case PinningDisabled:
		return "disabled"
	case PinningCertificate:
		return "certificate"
	case PinningPublicKey:
		return "publicKey"
	default:
		return "unknown"
	}
}

// ParsePinningMode converts a configuration string into a PinningMode
func ParsePinningMode(s string) (PinningMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "disabled", "disable", "none":
		return PinningDisabled, nil
	case "certificate", "cert":
		return PinningCertificate, nil
	case "publickey", "public_key", "public-key", "key":
		return PinningPublicKey, nil
	default:
		return PinningDisabled, fmt.Errorf("invalid pinning mode: %s (must be: disabled, certificate, or publicKey)", s)
	}
}

// Decode implements envconfig.Decoder
func (m *PinningMode) Decode(value string) error {
	parsed, err := ParsePinningMode(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
