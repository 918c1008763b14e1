package tlsutil

import "crypto/tls"

// TLSConfigOptions encapsulates the available options for creating a TLS config used to connect to 'https', 'ssl' or
// 'arangodbs' endpoints.
type TLSConfigOptions struct {
	// ClientCert is a PEM encoded certificate chain, or an encrypted PKCS#12 bundle when no 'ClientKey' is given.
	ClientCert []byte

	// ClientKey is a PEM encoded (PKCS#1, PKCS#8 or EC) private key, or an encrypted PKCS#8 key when 'Password' is set.
	ClientKey []byte

	// Password decrypts the PKCS#8 key or PKCS#12 bundle.
	Password []byte

	// ServerCAs are PEM encoded certificate authorities used in addition to the system pool to verify coordinators.
	ServerCAs []byte

	// NoSSLVerify disables verification of the certificates presented by coordinators.
	NoSSLVerify bool

	// ServerName overrides the name used to verify coordinator certificates, useful when connecting via IP address.
	ServerName string

	CipherSuites []uint16
	MinVersion   uint16
}

// Validate returns an error if the given TLS config is invalid for some reason.
func (t *TLSConfigOptions) Validate() error {
	switch {
	case len(t.Password) != 0 && t.ClientCert == nil && t.ClientKey == nil:
		return ErrPasswordWithoutMaterial
	case t.ClientCert == nil && t.ClientKey != nil:
		return ErrKeyWithoutCert
	case t.ClientCert != nil && t.ClientKey == nil && len(t.Password) == 0:
		return ErrCertWithoutKey
	}

	return nil
}

// minVersion returns the minimum TLS version to negotiate, ArangoDB supports TLS 1.2 onwards.
func (t *TLSConfigOptions) minVersion() uint16 {
	if t.MinVersion == 0 {
		return tls.VersionTLS12
	}

	return t.MinVersion
}
