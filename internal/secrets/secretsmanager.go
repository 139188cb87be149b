// Package secrets loads the trusted signing certificate from AWS Secrets Manager.
package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

// CertificateSource reads a PEM bundle stored as a secret. It satisfies
// auth.KeySource; rotating the secret value rotates the trusted keys at the
// next key ring reload.
type CertificateSource struct {
	client   secretsmanageriface.SecretsManagerAPI
	secretID string
}

func NewCertificateSource(sess *session.Session, secretID string) *CertificateSource {
	return &CertificateSource{client: secretsmanager.New(sess), secretID: secretID}
}

// Load returns the current secret value (AWSCURRENT stage).
func (s *CertificateSource) Load(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", s.secretID, err)
	}
	if out.SecretString != nil {
		return []byte(*out.SecretString), nil
	}
	if len(out.SecretBinary) > 0 {
		return out.SecretBinary, nil
	}
	return nil, fmt.Errorf("secret %s has no value", s.secretID)
}
