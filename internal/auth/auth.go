// Package auth signs Kalshi REST requests with RSA-PSS.
//
// Each request carries the key id, a millisecond timestamp and a signature
// over timestamp + method + path. The query string is not signed.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Header names set by Sign.
const (
	HeaderKey       = "KALSHI-ACCESS-KEY"
	HeaderTimestamp = "KALSHI-ACCESS-TIMESTAMP"
	HeaderSignature = "KALSHI-ACCESS-SIGNATURE"
)

// Signer adds authentication headers to requests.
type Signer struct {
	keyID string
	key   *rsa.PrivateKey
	now   func() time.Time
}

// NewSigner creates a Signer for keyID.
func NewSigner(keyID string, key *rsa.PrivateKey) (*Signer, error) {
	if keyID == "" {
		return nil, errors.New("API key ID is required")
	}
	if key == nil {
		return nil, errors.New("private key is required")
	}
	return &Signer{keyID: keyID, key: key, now: time.Now}, nil
}

// LoadSigner reads a PEM private key from path and returns a Signer.
func LoadSigner(keyID, path string) (*Signer, error) {
	if path == "" {
		return nil, errors.New("private key path is required")
	}
	key, err := LoadPrivateKey(path)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}
	return NewSigner(keyID, key)
}

// LoadPrivateKey loads an RSA private key in PKCS#8 or PKCS#1 PEM form.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("key is not an RSA private key")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return rsaKey, nil
}

// Sign sets the authentication headers on req.
func (s *Signer) Sign(req *http.Request) error {
	ts := s.now().UnixMilli()

	sig, err := s.signature(ts, req.Method, req.URL.Path)
	if err != nil {
		return err
	}

	req.Header.Set(HeaderKey, s.keyID)
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderSignature, sig)
	return nil
}

func (s *Signer) signature(ts int64, method, path string) (string, error) {
	hashed := sha256.Sum256([]byte(Message(ts, method, path)))

	sig, err := rsa.SignPSS(rand.Reader, s.key, crypto.SHA256, hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Message is the signed payload.
func Message(ts int64, method, path string) string {
	return strconv.FormatInt(ts, 10) + method + path
}
