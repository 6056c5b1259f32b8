package stream

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// DefaultVerifyDepth matches the intermediate depth the platform needs
const DefaultVerifyDepth = 5

// TLSConfig builds a verifying client config
// caFile empty means system roots; chains longer than depth+1 certificates are refused
func TLSConfig(caFile string, depth int) (*tls.Config, error) {
	if depth <= 0 {
		depth = DefaultVerifyDepth
	}
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("stream: read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("stream: no certificates in %s", caFile)
		}
		cfg.RootCAs = pool
	}
	cfg.VerifyConnection = func(cs tls.ConnectionState) error {
		return checkDepth(cs.VerifiedChains, depth)
	}
	return cfg, nil
}

func checkDepth(chains [][]*x509.Certificate, depth int) error {
	if len(chains) == 0 {
		return nil
	}
	for _, ch := range chains {
		if len(ch) <= depth+1 {
			return nil
		}
	}
	return fmt.Errorf("stream: certificate chain exceeds verify depth %d", depth)
}
