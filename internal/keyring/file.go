package keyring

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/parley-protocol/parley/internal/crypto"
)

// LoadPrivateKeyFile reads a PKCS#8 PEM private key from disk. This is the
// file-backed key provider; vault-backed providers satisfy the same Provider
// interface without touching the core.
func LoadPrivateKeyFile(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return crypto.DecodePrivateKeyPEM(data)
}
