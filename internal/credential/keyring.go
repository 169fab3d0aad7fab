package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "maildeck"

// Open returns a configured keyring instance backed by the OS
// credential store, falling back to an encrypted file.
func Open() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/maildeck/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("maildeck-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}
