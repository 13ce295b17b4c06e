package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const keychainService = "stylusnotes"

// KeychainStore reads secrets from the macOS Keychain through the
// `security` CLI. On other platforms every lookup misses.
type KeychainStore struct {
	service string
	run     func(name string, args ...string) ([]byte, error)
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{
		service: keychainService,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

// Get looks up the generic password stored for key. A missing item is
// reported as nil, nil.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	if runtime.GOOS != "darwin" {
		return nil, nil
	}
	out, err := k.run("security", "find-generic-password",
		"-a", key,
		"-s", k.service,
		"-w", // print only the password
	)
	if err != nil {
		// exit code 44: item not found
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 44 {
			return nil, nil
		}
		return nil, fmt.Errorf("keychain get %s: %w", key, err)
	}
	return []byte(strings.TrimSpace(string(out))), nil
}
