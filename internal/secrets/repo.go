package secrets

import (
	"errors"
	"fmt"
	"sync"

	vaultapi "github.com/hashicorp/vault/api"
	"github.com/rs/zerolog/log"
)

const keyData = "data"

type vaultReader interface {
	Read(path string) (*vaultapi.Secret, error)
}

var (
	ErrUnableToCastData = errors.New("failed to cast data")
	ErrSecretNotFound   = errors.New("secret not found")
)

// Repo reads service secrets from a single Vault KV path. Both KV v1 and KV v2
// layouts are supported. The path is read once and cached.
type Repo struct {
	cli  vaultReader
	path string

	cache map[string]string
	mux   sync.Mutex
}

func NewRepo(cli vaultReader, path string) *Repo {
	return &Repo{
		cli:  cli,
		path: path,
	}
}

func (r *Repo) Get(key string) (string, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	if r.cache == nil {
		if err := r.load(); err != nil {
			return "", err
		}
	}

	value, ok := r.cache[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}

	return value, nil
}

func (r *Repo) load() error {
	sec, err := r.cli.Read(r.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", r.path, err)
	}

	if sec == nil {
		return fmt.Errorf("%w: %s", ErrSecretNotFound, r.path)
	}

	data := sec.Data
	if nested, ok := sec.Data[keyData]; ok {
		data, ok = nested.(map[string]interface{})
		if !ok {
			return ErrUnableToCastData
		}
	}

	cache := make(map[string]string, len(data))
	for key, raw := range data {
		value, ok := raw.(string)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnableToCastData, key)
		}
		cache[key] = value
	}
	r.cache = cache

	return nil
}

// Fill sets every empty target to the secret stored under its key.
// Missing keys are left untouched.
func Fill(r *Repo, targets map[string]*string) error {
	for key, target := range targets {
		if *target != "" {
			continue
		}

		value, err := r.Get(key)
		if errors.Is(err, ErrSecretNotFound) {
			log.Debug().Str("key", key).Msg("secret is not present in vault")

			continue
		}
		if err != nil {
			return err
		}

		*target = value
	}

	return nil
}
