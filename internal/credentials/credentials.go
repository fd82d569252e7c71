package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	serviceName    = "pushbridge"
	keyDeviceToken = "device_token"
)

var ErrNotFound = errors.New("credentials: not found")

func StoreAppSecret(key string, value string) error {
	return keyring.Set(serviceName, "app:"+key, value)
}

func LoadAppSecret(key string) (string, error) {
	val, err := keyring.Get(serviceName, "app:"+key)
	if err != nil {
		return "", ErrNotFound
	}
	return val, nil
}

func DeleteAppSecret(key string) {
	_ = keyring.Delete(serviceName, "app:"+key)
}

// EnsureAppSecret loads the secret stored under key, generating and storing
// a random one of size bytes on first use.
func EnsureAppSecret(key string, size int) (string, error) {
	if val, err := LoadAppSecret(key); err == nil {
		return val, nil
	}

	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate %s: %w", key, err)
	}
	val := base64.StdEncoding.EncodeToString(raw)
	if err := StoreAppSecret(key, val); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return val, nil
}

// StoreDeviceToken keeps the registration token of the given app.
func StoreDeviceToken(appID string, token string) error {
	return keyring.Set(serviceName, appID+":"+keyDeviceToken, token)
}

func LoadDeviceToken(appID string) (string, error) {
	val, err := keyring.Get(serviceName, appID+":"+keyDeviceToken)
	if err != nil {
		return "", ErrNotFound
	}
	return val, nil
}

func DeleteDeviceToken(appID string) {
	_ = keyring.Delete(serviceName, appID+":"+keyDeviceToken)
}
