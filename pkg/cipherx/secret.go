package cipherx

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
)

const secretLength = 32

// LoadOrGenerateSecret reads the process-wide cipher secret from file,
// generating and persisting a fresh one on first run. The file is created
// with owner-only permissions.
func LoadOrGenerateSecret(file string) (string, error) {
	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		buf := make([]byte, secretLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		secret := base64.RawURLEncoding.EncodeToString(buf)

		if err := os.WriteFile(file, []byte(secret), 0600); err != nil {
			return "", err
		}
		return secret, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
