package http

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// TLSOptions configures server verification and client certificates.
type TLSOptions struct {
	CAFile             string // PEM bundle replacing the system roots
	CertFile           string // client certificate for mTLS
	KeyFile            string
	InsecureSkipVerify bool
}

// IsZero reports whether opts leaves the defaults untouched.
func (o TLSOptions) IsZero() bool {
	return o == TLSOptions{}
}

func (o TLSOptions) build() (*tls.Config, error) {
	if o.IsZero() {
		return nil, nil
	}
	conf := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: o.InsecureSkipVerify,
	}

	switch {
	case o.CertFile != "" && o.KeyFile != "":
		cert, err := tls.LoadX509KeyPair(o.CertFile, o.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		conf.Certificates = []tls.Certificate{cert}
	case o.CertFile != "" || o.KeyFile != "":
		return nil, errors.New("client certificate needs both cert_file and key_file")
	}

	if o.CAFile != "" {
		pem, err := os.ReadFile(o.CAFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", o.CAFile)
		}
		conf.RootCAs = pool
	}
	return conf, nil
}
