package tlsutil

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyMismatch is returned when the client private key doesn't belong to the leaf client certificate.
	ErrKeyMismatch = errors.New("client private key does not match the public key of the client certificate")

	// ErrUndecodableKey is returned when the client key or PKCS#12 bundle couldn't be decrypted or decoded, either
	// because the password is wrong or the key type isn't supported.
	ErrUndecodableKey = errors.New("failed to decode client key; check the password and that the key is RSA, " +
		"ECDSA or Ed25519")

	// ErrPasswordWithoutMaterial is returned when a password is given without a client certificate or key.
	ErrPasswordWithoutMaterial = errors.New("password provided without a client certificate or key")

	// ErrKeyWithoutCert is returned when a client key is given without a client certificate.
	ErrKeyWithoutCert = errors.New("client key provided without a client certificate")

	// ErrCertWithoutKey is returned when a client certificate is given without a key or the password of a PKCS#12
	// bundle.
	ErrCertWithoutKey = errors.New("client certificate provided without a key or the password of a PKCS#12 bundle")
)

// Material identifies which piece of the TLS options couldn't be decoded.
type Material string

const (
	MaterialClientCert Material = "client certificate"
	MaterialClientKey  Material = "client key"
	MaterialServerCAs  Material = "server certificate authorities"
)

// DecodeError is returned when some TLS material contains nothing usable, it records whether a password was given
// since that usually points at the fix.
type DecodeError struct {
	material  Material
	encrypted bool
}

func (e *DecodeError) Error() string {
	if e.encrypted {
		return fmt.Sprintf("no usable %s found using the given password; the data may be in an unsupported format "+
			"or not encrypted", e.material)
	}

	return fmt.Sprintf("no usable PEM encoded %s found; the data may be in an unsupported format or require a "+
		"password", e.material)
}

// Material returns the piece of the TLS options which couldn't be decoded.
func (e *DecodeError) Material() Material {
	return e.material
}

// Encrypted returns a boolean indicating whether a password was used to decode the material.
func (e *DecodeError) Encrypted() bool {
	return e.encrypted
}
