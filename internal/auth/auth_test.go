package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return key
}

func writePEM(t *testing.T, block *pem.Block) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestSigner_Sign(t *testing.T) {
	key := testKey(t)
	s, err := NewSigner("test-key-id", key)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	s.now = func() time.Time { return time.UnixMilli(1718300000123) }

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/trade-api/v2/markets?series_ticker=KXHIGHNY", nil)
	if err := s.Sign(req); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if got := req.Header.Get(HeaderKey); got != "test-key-id" {
		t.Errorf("%s = %q, want %q", HeaderKey, got, "test-key-id")
	}
	if got := req.Header.Get(HeaderTimestamp); got != "1718300000123" {
		t.Errorf("%s = %q, want %q", HeaderTimestamp, got, "1718300000123")
	}

	sig, err := base64.StdEncoding.DecodeString(req.Header.Get(HeaderSignature))
	if err != nil {
		t.Fatalf("signature is not base64: %v", err)
	}

	// The query string is not part of the signed message.
	hashed := sha256.Sum256([]byte("1718300000123GET/trade-api/v2/markets"))
	err = rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, hashed[:], sig,
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	if err != nil {
		t.Errorf("signature does not verify: %v", err)
	}
}

func TestMessage(t *testing.T) {
	if got := Message(42, "GET", "/trade-api/v2/markets"); got != "42GET/trade-api/v2/markets" {
		t.Errorf("Message = %q", got)
	}
}

func TestNewSigner_Errors(t *testing.T) {
	if _, err := NewSigner("", testKey(t)); err == nil {
		t.Error("expected error for missing key ID")
	}
	if _, err := NewSigner("key-id", nil); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestLoadPrivateKey(t *testing.T) {
	key := testKey(t)

	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal PKCS#8: %v", err)
	}

	tests := []struct {
		name  string
		block *pem.Block
	}{
		{"pkcs8", &pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}},
		{"pkcs1", &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loaded, err := LoadPrivateKey(writePEM(t, tt.block))
			if err != nil {
				t.Fatalf("LoadPrivateKey failed: %v", err)
			}
			if loaded.N.Cmp(key.N) != 0 {
				t.Error("loaded key does not match original")
			}
		})
	}
}

func TestLoadPrivateKey_Errors(t *testing.T) {
	if _, err := LoadPrivateKey("/nonexistent/path/to/key.pem"); err == nil {
		t.Error("expected error for nonexistent file")
	}

	path := filepath.Join(t.TempDir(), "invalid.pem")
	if err := os.WriteFile(path, []byte("not a pem file"), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if _, err := LoadPrivateKey(path); err == nil {
		t.Error("expected error for invalid PEM")
	}
}

func TestLoadSigner(t *testing.T) {
	pkcs8, _ := x509.MarshalPKCS8PrivateKey(testKey(t))
	path := writePEM(t, &pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8})

	s, err := LoadSigner("my-key-id", path)
	if err != nil {
		t.Fatalf("LoadSigner failed: %v", err)
	}
	if s.keyID != "my-key-id" {
		t.Errorf("keyID = %q, want %q", s.keyID, "my-key-id")
	}

	if _, err := LoadSigner("key-id", ""); err == nil {
		t.Error("expected error for missing path")
	}
	if _, err := LoadSigner("", path); err == nil {
		t.Error("expected error for missing key ID")
	}
}
