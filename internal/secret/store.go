package secret

import (
	"os"
	"strings"
)

// SecretStore resolves sensitive settings such as the database password.
// Get returns a nil slice and nil error when the key is not set.
type SecretStore interface {
	Get(key string) ([]byte, error)
}

// EnvStore reads secrets from STYLUSNOTES_SECRET_<KEY> environment variables.
type EnvStore struct {
	lookup func(string) (string, bool)
}

func NewEnvStore() *EnvStore {
	return &EnvStore{lookup: os.LookupEnv}
}

// EnvKey returns the variable name EnvStore consults for key.
func EnvKey(key string) string {
	return "STYLUSNOTES_SECRET_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	v, ok := e.lookup(EnvKey(key))
	if !ok || v == "" {
		return nil, nil
	}
	return []byte(v), nil
}

// Chain asks each store in order and returns the first non-empty value.
type Chain []SecretStore

func (c Chain) Get(key string) ([]byte, error) {
	for _, s := range c {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, nil
}
