// devtoken mints RS256 bearer tokens for running the todo service offline.
//
// On first use it generates a signing key at --key and writes the matching
// self-signed certificate to --cert-out; point AUTH_CERT_FILE at that
// certificate and pass the printed token as "Authorization: Bearer <token>".
package main

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/serverless-todo/todo-backend/internal/tokens"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var keyPath, certPath, subject, issuer string
	var ttl time.Duration

	flagSet := pflag.NewFlagSet("devtoken", pflag.ContinueOnError)
	flagSet.StringVar(&keyPath, "key", "devtoken.key", "PEM RSA private key; created when missing")
	flagSet.StringVar(&certPath, "cert-out", "devtoken.crt", "where to write the certificate to trust")
	flagSet.StringVar(&subject, "sub", "dev|local-user", "subject (owner id) of the token")
	flagSet.StringVar(&issuer, "issuer", "https://devtoken.local/", "issuer claim")
	flagSet.DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	key, err := loadOrCreateKey(keyPath)
	if err != nil {
		return err
	}
	cert, err := tokens.CertificatePEM(key, issuer, 365*24*time.Hour)
	if err != nil {
		return fmt.Errorf("certificate: %w", err)
	}
	if err := os.WriteFile(certPath, cert, 0o644); err != nil {
		return fmt.Errorf("write certificate: %w", err)
	}

	tok, err := tokens.GenerateAccessToken(key, issuer, subject, ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Println(tok)
	return nil
}

func loadOrCreateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return tokens.ParsePrivateKey(data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read key: %w", err)
	}
	key, err := tokens.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := os.WriteFile(path, tokens.EncodePrivateKey(key), 0o600); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	fmt.Fprintf(os.Stderr, "generated signing key %s\n", path)
	return key, nil
}
