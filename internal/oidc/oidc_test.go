package oidc

import (
	"context"
	"crypto"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/serverless-todo/todo-backend/internal/auth"
	"github.com/serverless-todo/todo-backend/internal/tokens"
	"github.com/stretchr/testify/require"
)

func TestJWKSVerifier(t *testing.T) {
	key, err := tokens.GenerateKey()
	require.NoError(t, err)
	other, err := tokens.GenerateKey()
	require.NoError(t, err)

	v := NewKeySetVerifier(&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}})
	ctx := context.Background()

	good, err := tokens.GenerateAccessToken(key, "https://tenant.example/", "auth0|jwks-user", time.Hour)
	require.NoError(t, err)
	claims, err := v.Verify(ctx, good)
	require.NoError(t, err)
	require.Equal(t, "auth0|jwks-user", claims.Subject)

	foreign, err := tokens.GenerateAccessToken(other, "https://tenant.example/", "auth0|jwks-user", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(ctx, foreign)
	require.ErrorIs(t, err, auth.ErrInvalidSignature)

	expired, err := tokens.GenerateAccessToken(key, "https://tenant.example/", "auth0|jwks-user", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(ctx, expired)
	require.ErrorIs(t, err, auth.ErrInvalidSignature)
}

func TestJWKSVerifier_BehindAuthorizer(t *testing.T) {
	key, err := tokens.GenerateKey()
	require.NoError(t, err)
	a := auth.NewAuthorizer(NewKeySetVerifier(&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}))

	tok, err := tokens.GenerateAccessToken(key, "", "auth0|u", time.Hour)
	require.NoError(t, err)
	require.Equal(t, auth.Allow, a.Authorize(context.Background(), "Bearer "+tok).Effect)
	require.Equal(t, auth.Deny, a.Authorize(context.Background(), "Bearer "+tok+"x").Effect)
}

func jwksJSON(keys ...*rsa.PublicKey) string {
	out := `{"keys":[`
	for i, k := range keys {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"kty":"RSA","alg":"RS256","use":"sig","kid":"k%d","n":"%s","e":"%s"}`, i,
			base64.RawURLEncoding.EncodeToString(k.N.Bytes()),
			base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.E)).Bytes()))
	}
	return out + "]}"
}

func TestJWKSVerifier_RemoteKeySetRotation(t *testing.T) {
	oldKey, err := tokens.GenerateKey()
	require.NoError(t, err)
	newKey, err := tokens.GenerateKey()
	require.NoError(t, err)

	var published atomic.Value
	published.Store(jwksJSON(&oldKey.PublicKey))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, published.Load().(string))
	}))
	defer srv.Close()

	ctx := context.Background()
	v := NewJWKSVerifier(ctx, srv.URL+"/.well-known/jwks.json")

	tok, err := tokens.GenerateAccessToken(oldKey, "", "auth0|rotating", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(ctx, tok)
	require.NoError(t, err)

	// provider rotates: the unknown signer triggers a refetch
	published.Store(jwksJSON(&newKey.PublicKey))
	tok, err = tokens.GenerateAccessToken(newKey, "", "auth0|rotating", time.Hour)
	require.NoError(t, err)
	claims, err := v.Verify(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "auth0|rotating", claims.Subject)
}
