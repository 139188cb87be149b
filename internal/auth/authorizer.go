package auth

import (
	"context"

	"github.com/serverless-todo/todo-backend/pkg/logger"
	"github.com/serverless-todo/todo-backend/pkg/metrics"
)

type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

// DeniedPrincipal is reported as the principal of every Deny decision.
const DeniedPrincipal = "user"

// Decision is the outcome of authorizing one request.
type Decision struct {
	PrincipalID string `json:"principalId"`
	Effect      Effect `json:"effect"`
	Resource    string `json:"resource"`
}

// VerifyResult carries either verified claims or the reason verification failed.
type VerifyResult struct {
	Claims *JwtPayload
	Err    error
}

// Decide maps a verification result to an access decision. Anything other
// than verified claims with a subject is denied.
func Decide(r VerifyResult) Decision {
	if r.Err != nil || r.Claims == nil || r.Claims.Subject == "" {
		return Decision{PrincipalID: DeniedPrincipal, Effect: Deny, Resource: "*"}
	}
	return Decision{PrincipalID: r.Claims.Subject, Effect: Allow, Resource: "*"}
}

// Authorizer turns an Authorization header into an access decision.
type Authorizer struct {
	verifier Verifier
	log      *logger.Logger
}

func NewAuthorizer(v Verifier) *Authorizer {
	return &Authorizer{verifier: v, log: logger.New("auth")}
}

// Verify runs header extraction and verification without deciding.
func (a *Authorizer) Verify(ctx context.Context, header string) VerifyResult {
	claims, err := VerifyHeader(ctx, a.verifier, header)
	return VerifyResult{Claims: claims, Err: err}
}

// Authorize never fails: verification errors are logged and become Deny.
func (a *Authorizer) Authorize(ctx context.Context, header string) Decision {
	a.log.Info("Authorizing a user")
	res := a.Verify(ctx, header)
	d := Decide(res)
	if d.Effect == Allow {
		a.log.Info("User was authorized", "principalId", d.PrincipalID)
	} else {
		reason := "missing subject claim"
		if res.Err != nil {
			reason = res.Err.Error()
		}
		a.log.Error("User not authorized", "error", reason)
	}
	metrics.AuthorizerDecisions.WithLabelValues(string(d.Effect)).Inc()
	return d
}

// PolicyStatement and PolicyDocument follow the IAM policy shape that API
// gateways expect from a custom authorizer.
type PolicyStatement struct {
	Action   string `json:"Action"`
	Effect   Effect `json:"Effect"`
	Resource string `json:"Resource"`
}

type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

type Policy struct {
	PrincipalID    string         `json:"principalId"`
	PolicyDocument PolicyDocument `json:"policyDocument"`
}

// Policy renders the decision as a gateway authorizer response.
func (d Decision) Policy() Policy {
	return Policy{
		PrincipalID: d.PrincipalID,
		PolicyDocument: PolicyDocument{
			Version: "2012-10-17",
			Statement: []PolicyStatement{{
				Action:   "execute-api:Invoke",
				Effect:   d.Effect,
				Resource: d.Resource,
			}},
		},
	}
}
