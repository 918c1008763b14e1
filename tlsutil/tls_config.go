// Package tlsutil builds client side TLS configurations from PEM, PKCS#8 and PKCS#12 encoded material.
package tlsutil

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/youmark/pkcs8"
	"golang.org/x/crypto/pkcs12"

	"github.com/arangotools/arangorest/errutil"
)

// NewTLSConfig creates a new TLS config which may skip verification, trust the given server certificate authorities
// and present a client certificate for mTLS.
func NewTLSConfig(options TLSConfigOptions) (*tls.Config, error) {
	err := options.Validate()
	if err != nil {
		return nil, err
	}

	config := &tls.Config{
		CipherSuites:       options.CipherSuites,
		InsecureSkipVerify: options.NoSSLVerify, //nolint:gosec
		MinVersion:         options.minVersion(),
		ServerName:         options.ServerName,
	}

	if options.ClientCert != nil {
		cert, err := clientCertificate(options)
		if err != nil {
			return nil, fmt.Errorf("failed to populate client certificate: %w", err)
		}

		config.Certificates = []tls.Certificate{cert}
	}

	config.RootCAs, err = rootCAs(options)
	if err != nil {
		return nil, fmt.Errorf("failed to populate root certificate authorities: %w", err)
	}

	return config, nil
}

// clientCertificate loads the client certificate/key pair described by the given options.
func clientCertificate(options TLSConfigOptions) (tls.Certificate, error) {
	var (
		cert tls.Certificate
		err  error
	)

	cert.Certificate, err = decodeCertificates(options)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to parse certificates: %w", err)
	}

	// Parsed up-front, otherwise the leaf is parsed again for each handshake
	cert.Leaf, err = x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to parse leaf certificate: %w", err)
	}

	cert.PrivateKey, err = decodeKey(options)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to parse key: %w", err)
	}

	if cert.PrivateKey == nil {
		return tls.Certificate{}, ErrUndecodableKey
	}

	if !keysMatch(cert.Leaf, cert.PrivateKey) {
		return tls.Certificate{}, ErrKeyMismatch
	}

	return cert, nil
}

// decodeCertificates returns the DER encoding of every certificate in the client certificate, leaf first.
func decodeCertificates(options TLSConfigOptions) ([][]byte, error) {
	var (
		blocks []*pem.Block
		err    error
	)

	if len(options.Password) != 0 && options.ClientKey == nil {
		blocks, err = decodePKCS12(options.ClientCert, options.Password)
	} else {
		blocks = decodePEM(options.ClientCert)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse PEM blocks: %w", err)
	}

	certs := make([][]byte, 0, 1)

	for _, block := range blocks {
		if strings.Contains(block.Type, "CERTIFICATE") {
			certs = append(certs, block.Bytes)
		}
	}

	if len(certs) == 0 {
		return nil, &DecodeError{material: MaterialClientCert, encrypted: len(options.Password) != 0}
	}

	return certs, nil
}

// decodePEM returns all the valid PEM blocks from the given data.
func decodePEM(data []byte) []*pem.Block {
	var (
		block  *pem.Block
		blocks = make([]*pem.Block, 0, 1)
	)

	for {
		block, data = pem.Decode(data)
		if block == nil {
			return blocks
		}

		blocks = append(blocks, block)
	}
}

// decodePKCS12 returns the PEM blocks contained in the given PKCS#12 bundle.
func decodePKCS12(data, password []byte) ([]*pem.Block, error) {
	blocks, err := pkcs12.ToPEM(data, string(password))
	if err != nil {
		return nil, knownKeyError(err)
	}

	return blocks, nil
}

// decodeKey returns the private key which should be used for mTLS authentication.
func decodeKey(options TLSConfigOptions) (crypto.PrivateKey, error) {
	switch {
	case options.ClientKey != nil && len(options.Password) != 0:
		key, err := pkcs8.ParsePKCS8PrivateKey(decodeDER(options.ClientKey), options.Password)
		if err != nil {
			return nil, knownKeyError(err)
		}

		return key, nil
	case options.ClientKey == nil:
		blocks, err := decodePKCS12(options.ClientCert, options.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#12 PEM blocks: %w", err)
		}

		for _, block := range blocks {
			if strings.Contains(block.Type, "PRIVATE KEY") {
				return parsePrivateKey(block.Bytes), nil
			}
		}

		return nil, &DecodeError{material: MaterialClientKey, encrypted: true}
	}

	block, _ := pem.Decode(options.ClientKey)
	if block == nil || !strings.Contains(block.Type, "PRIVATE KEY") {
		return nil, &DecodeError{material: MaterialClientKey}
	}

	if key := parsePrivateKey(block.Bytes); key != nil {
		return key, nil
	}

	return nil, ErrUndecodableKey
}

// decodeDER returns the DER bytes of the given key, which may either be PEM encoded or raw DER.
func decodeDER(data []byte) []byte {
	if block, _ := pem.Decode(data); block != nil {
		return block.Bytes
	}

	return data
}

// parsePrivateKey parses an unencrypted private key in either PKCS#1, PKCS#8 or EC format, the same set of formats
// accepted by 'tls.X509KeyPair'.
func parsePrivateKey(data []byte) crypto.PrivateKey {
	if key, err := x509.ParsePKCS1PrivateKey(data); err == nil {
		return key
	}

	if key, err := x509.ParsePKCS8PrivateKey(data); err == nil {
		return key
	}

	if key, err := x509.ParseECPrivateKey(data); err == nil {
		return key
	}

	return nil
}

// rootCAs returns the pool used to verify coordinator certificates, <nil> means the system pool is used.
func rootCAs(options TLSConfigOptions) (*x509.CertPool, error) {
	if options.ServerCAs == nil || options.NoSSLVerify {
		return nil, nil
	}

	// The system pool isn't available on every platform, fallback to an empty one
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	if !pool.AppendCertsFromPEM(options.ServerCAs) {
		return nil, &DecodeError{material: MaterialServerCAs}
	}

	return pool, nil
}

// keysMatch returns a boolean indicating whether the given public/private keys match, this is the same sanity test
// performed by 'tls.X509KeyPair'.
func keysMatch(cert *x509.Certificate, key crypto.PrivateKey) bool {
	valid := true // Fallback to true for unknown formats, ultimately the TLS handshake will just fail

	switch priv := key.(type) {
	case *rsa.PrivateKey:
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		valid = ok && priv.N.Cmp(pub.N) == 0
	case *ecdsa.PrivateKey:
		pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
		valid = ok && priv.X.Cmp(pub.X) == 0 && priv.Y.Cmp(pub.Y) == 0
	case ed25519.PrivateKey:
		pub, ok := cert.PublicKey.(ed25519.PublicKey)
		valid = ok && bytes.Equal(pub, priv.Public().(ed25519.PublicKey))
	}

	return valid
}

// knownKeyError converts errors caused by a wrong password or unsupported key type into 'ErrUndecodableKey', other
// errors are wrapped as is.
func knownKeyError(err error) error {
	if errors.Is(err, pkcs12.ErrIncorrectPassword) ||
		errutil.ContainsAny(err, "pkcs8: incorrect password", "unknown private key type", "with unknown algorithm") {
		return ErrUndecodableKey
	}

	return fmt.Errorf("failed to decode: %w", err)
}
