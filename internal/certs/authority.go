package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	cryptorand "crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// serialNumberLimit is the maximum number used as a certificate serial number.
var serialNumberLimit = new(big.Int).Lsh(big.NewInt(1), 128)

// DefaultCertValidity is how long the issued batch stays valid. Certificates
// from a migration run are never renewed or revoked, so the window is short.
const DefaultCertValidity = 365 * 24 * time.Hour

type (
	// CertAndKey is a PEM-encoded certificate and private key pair.
	CertAndKey struct {
		CertPEM string
		KeyPEM  string
	}

	// Authority is the ephemeral signing identity of one migration run.
	// It signs every leaf certificate of the run and is not persisted as a
	// reusable root; callers keep its exported PEM pair if they want it.
	Authority struct {
		key  *ecdsa.PrivateKey
		cert *x509.Certificate

		pem CertAndKey
	}
)

// NewAuthority generates a fresh P-256 key pair and a self-signed certificate
// marked as a CA with no path length constraint. Every call produces
// cryptographically independent material.
func NewAuthority() (*Authority, error) {
	serial, err := cryptorand.Int(cryptorand.Reader, serialNumberLimit)
	if err != nil {
		return nil, errors.Wrap(err, "generate authority serial number")
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), cryptorand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generate authority key pair")
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "chain-migrate authority"},
		NotBefore:             now.Add(-10 * time.Minute),
		NotAfter:              now.Add(DefaultCertValidity),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
	}

	der, err := x509.CreateCertificate(cryptorand.Reader, &template, &template, key.Public(), key)
	if err != nil {
		return nil, errors.Wrap(err, "create authority certificate")
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.Wrap(err, "parse authority certificate")
	}

	keyPEM, err := EncodePEMPrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "encode authority key")
	}

	return &Authority{
		key:  key,
		cert: cert,
		pem: CertAndKey{
			CertPEM: EncodePEMCert(der),
			KeyPEM:  keyPEM,
		},
	}, nil
}

// CertAndKey returns the authority's exported PEM pair.
func (a *Authority) CertAndKey() CertAndKey {
	return a.pem
}

// IssueLeaf generates a fresh key pair and a certificate whose single subject
// alternative name carries the node's logical address verbatim. TLS peers
// verify "is this the address I expect" against that name, independent of any
// IP or hostname churn. The returned pair is the leaf's own, not the authority's.
func (a *Authority) IssueLeaf(logicalAddress string) (CertAndKey, error) {
	serial, err := cryptorand.Int(cryptorand.Reader, serialNumberLimit)
	if err != nil {
		return CertAndKey{}, errors.Wrap(err, "generate leaf serial number")
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), cryptorand.Reader)
	if err != nil {
		return CertAndKey{}, errors.Wrapf(err, "generate leaf key pair for %s", logicalAddress)
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: logicalAddress},
		DNSNames:     []string{logicalAddress},
		NotBefore:    now.Add(-10 * time.Minute),
		NotAfter:     now.Add(DefaultCertValidity),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}

	der, err := x509.CreateCertificate(cryptorand.Reader, &template, a.cert, key.Public(), a.key)
	if err != nil {
		return CertAndKey{}, errors.Wrapf(err, "create leaf certificate for %s", logicalAddress)
	}

	keyPEM, err := EncodePEMPrivateKey(key)
	if err != nil {
		return CertAndKey{}, errors.Wrapf(err, "encode leaf key for %s", logicalAddress)
	}

	return CertAndKey{
		CertPEM: EncodePEMCert(der),
		KeyPEM:  keyPEM,
	}, nil
}
