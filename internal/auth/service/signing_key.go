package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"gocloud.dev/secrets"

	"github.com/opspilot/platform/internal/config"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// MinSigningKeyBytes is the shortest accepted HS256 secret.
const MinSigningKeyBytes = config.MinJWTSecretBytes

// ErrWeakSigningKey is returned when the configured secret is too short.
var ErrWeakSigningKey = fmt.Errorf("signing key must be at least %d bytes", MinSigningKeyBytes)

// LoadSigningKey resolves the HS256 secret. Without a keeper URI the secret is
// used as-is. With one (gcpkms://, awskms://, azurekeyvault://, hashivault://,
// base64key://) the secret is base64 ciphertext that the keeper decrypts.
// The resulting key must be at least MinSigningKeyBytes long.
func LoadSigningKey(ctx context.Context, secret, keeperURI string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("signing secret is empty")
	}

	key := []byte(secret)
	if keeperURI != "" {
		ciphertext, err := base64.StdEncoding.DecodeString(secret)
		if err != nil {
			return nil, fmt.Errorf("signing secret is not valid base64 ciphertext: %w", err)
		}

		keeper, err := secrets.OpenKeeper(ctx, keeperURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open secrets keeper: %w", err)
		}
		defer keeper.Close() //nolint:errcheck

		key, err = keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt signing secret: %w", err)
		}
	}

	if len(key) < MinSigningKeyBytes {
		return nil, ErrWeakSigningKey
	}
	return key, nil
}
