// Package trust decides whether a server's TLS credentials are acceptable.
//
// A PinningMode chosen at construction time and the configured root URL
// produce a mapping from domain to Evaluator (Build). The mapping is wrapped
// in a ServerTrustManager, which the transport consults on every TLS
// handshake through DialTLSContext.
//
// Evaluators:
//   - DefaultEvaluator: standard CA verification only
//   - CertificatePinning: a presented certificate must match a bundled one
//   - PublicKeyPinning: a presented public key must match a bundled SPKI hash
//
// Pinning evaluators fail closed: with no reference material bundled for a
// domain every handshake to that domain is rejected.
//
// Reference material lives in a Bundle, usually loaded from a directory:
//
//	pins/
//	  pins.yaml                  # optional SPKI SHA-256 pins per domain
//	  api.example.com/leaf.pem   # certificates per domain (pem, crt, cer, der)
//	  *.example.com/ca.pem       # one label, as in TLS wildcards
//	  **.example.net/ca.pem      # any depth, example.net itself included
package trust
