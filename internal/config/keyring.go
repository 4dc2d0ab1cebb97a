package config

import "github.com/zalando/go-keyring"

const keyringService = "qlimitd"

// Indirection for tests: the real keyring talks to the OS secret store.
var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

// SetPassword stores the downloader WebUI password for user in the OS
// keyring.
func SetPassword(user, password string) error {
	return keyringSet(keyringService, user, password)
}

// GetPassword reads the downloader WebUI password for user from the OS
// keyring.
func GetPassword(user string) (string, error) {
	return keyringGet(keyringService, user)
}

// DeletePassword removes the stored password for user.
func DeletePassword(user string) error {
	return keyringDelete(keyringService, user)
}
