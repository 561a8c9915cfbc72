package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups this tool's secrets in the OS keychain.
	KeyringService = "shopkeywords"
	// KeyringAccount is the keychain entry holding the Etsy API key.
	KeyringAccount = "etsy:api-key"
)

var ErrAPIKeyNotFound = errors.New("etsy API key not found (pass --api-key, set ETSY_API_KEY, or run `shopkeywords key set`)")

func GetAPIKey() (string, error) {
	key, err := keyring.Get(KeyringService, KeyringAccount)
	if err != nil || strings.TrimSpace(key) == "" {
		return "", ErrAPIKeyNotFound
	}
	return strings.TrimSpace(key), nil
}

func SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, KeyringAccount, key)
}

func DeleteAPIKey() error {
	err := keyring.Delete(KeyringService, KeyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// ResolveAPIKey prefers an explicit key (flag or environment) over the keychain.
func ResolveAPIKey(explicit string) (string, error) {
	if k := strings.TrimSpace(explicit); k != "" {
		return k, nil
	}
	return GetAPIKey()
}
