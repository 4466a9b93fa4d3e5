package certs

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/pkg/errors"
)

const (
	certificateType  = "CERTIFICATE"
	ecPrivateKeyType = "EC PRIVATE KEY"
)

// EncodePEMCert encodes the given DER certificate as PEM.
func EncodePEMCert(der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: certificateType, Bytes: der}))
}

// EncodePEMPrivateKey encodes the given EC private key as SEC 1 PEM.
func EncodePEMPrivateKey(key *ecdsa.PrivateKey) (string, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return "", errors.Wrap(err, "marshal ec private key")
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: ecPrivateKeyType, Bytes: der})), nil
}

// ParsePEMCert parses a single PEM-encoded certificate.
func ParsePEMCert(pemData string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil || block.Type != certificateType {
		return nil, errors.New("no certificate block found")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "parse certificate")
	}

	return cert, nil
}
