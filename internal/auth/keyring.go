package auth

import (
	"context"
	"crypto/rsa"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/serverless-todo/todo-backend/pkg/logger"
	"github.com/serverless-todo/todo-backend/pkg/metrics"
)

// KeySource returns a PEM bundle of trusted certificates or public keys.
type KeySource interface {
	Load(ctx context.Context) ([]byte, error)
}

// PEMSource serves a bundle held in memory (e.g. from AUTH_CERT_PEM).
type PEMSource []byte

func (s PEMSource) Load(context.Context) ([]byte, error) { return s, nil }

// FileSource reads the bundle from disk on every load, so replacing the
// file rotates the keys at the next reload.
type FileSource string

func (s FileSource) Load(context.Context) ([]byte, error) {
	return os.ReadFile(string(s))
}

// KeyRing holds the currently trusted verification keys.
type KeyRing struct {
	source KeySource
	log    *logger.Logger

	mu       sync.RWMutex
	keys     []*rsa.PublicKey
	loadedAt time.Time
}

func NewKeyRing(source KeySource) *KeyRing {
	return &KeyRing{source: source, log: logger.New("trust")}
}

// Reload fetches the bundle and swaps the key set. On failure the previous
// keys stay in place.
func (r *KeyRing) Reload(ctx context.Context) error {
	data, err := r.source.Load(ctx)
	if err != nil {
		metrics.TrustReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("load trusted keys: %w", err)
	}
	keys, err := ParseTrustBundle(data)
	if err != nil {
		metrics.TrustReloads.WithLabelValues("error").Inc()
		return err
	}

	r.mu.Lock()
	r.keys = keys
	r.loadedAt = time.Now()
	r.mu.Unlock()

	metrics.TrustReloads.WithLabelValues("ok").Inc()
	r.log.Info("Trusted keys loaded", "count", len(keys))
	return nil
}

// Keys returns a snapshot of the trusted keys.
func (r *KeyRing) Keys() []*rsa.PublicKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*rsa.PublicKey, len(r.keys))
	copy(out, r.keys)
	return out
}

// LoadedAt reports when the key set was last replaced (zero before the first load).
func (r *KeyRing) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

// Ready returns an error until at least one key is loaded.
func (r *KeyRing) Ready(context.Context) error {
	if len(r.Keys()) == 0 {
		return errors.New("no trusted keys loaded")
	}
	return nil
}

// Watch reloads the key set every interval until ctx is done.
func (r *KeyRing) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Reload(ctx); err != nil {
				r.log.Warn("Trusted key reload failed, keeping previous keys", "error", err)
			}
		}
	}
}

// ParseTrustBundle decodes every PEM block in data (CERTIFICATE, PUBLIC KEY
// or RSA PUBLIC KEY) into an RSA public key.
func ParseTrustBundle(data []byte) ([]*rsa.PublicKey, error) {
	var keys []*rsa.PublicKey
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pem.EncodeToMemory(block))
		if err != nil {
			return nil, fmt.Errorf("parse %s block %d: %w", block.Type, len(keys)+1, err)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, errors.New("no PEM encoded keys found")
	}
	return keys, nil
}
