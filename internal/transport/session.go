package transport

import (
	"net"
	"net/http"
	"time"

	"github.com/GriffinCanCode/apimanager/internal/trust"
	"github.com/hashicorp/go-retryablehttp"
)

// newSession builds the pooled transport shared by every request of a backend
func newSession(opts Options) *http.Transport {
	var session *http.Transport
	if pooled, ok := retryablehttp.NewClient().HTTPClient.Transport.(*http.Transport); ok {
		session = pooled.Clone()
	} else {
		session = http.DefaultTransport.(*http.Transport).Clone()
	}

	tlsConfig := trust.TLSConfig(opts.RootCAs)
	session.TLSClientConfig = tlsConfig

	if opts.Trust.Len() > 0 {
		dialer := &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		session.DialTLSContext = opts.Trust.DialTLSContext(dialer, tlsConfig)
		// Pinned sessions connect directly; a CONNECT proxy would handshake outside the dialer.
		session.Proxy = nil
	}

	return session
}
