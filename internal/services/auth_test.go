package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yarff/flashing-backend/internal/requestdata"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims JWTClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestSetContextFromToken(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.db, f.log, f.clientRepo, testSecret)

	token := signToken(t, JWTClaims{
		FactoryID: f.factory.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   f.client.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		t.Fatalf("no request data on context")
	}
	if rd.ClientID != f.client.ID {
		t.Fatalf("client id = %v, want %v", rd.ClientID, f.client.ID)
	}
	if rd.FactoryID != f.factory.ID {
		t.Fatalf("factory id = %v, want %v", rd.FactoryID, f.factory.ID)
	}
}

func TestSetContextFromTokenRejects(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.db, f.log, f.clientRepo, testSecret)

	expired := signToken(t, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   f.client.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)

	wrongKey := signToken(t, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   f.client.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, "other-secret")

	unknownClient := signToken(t, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "2f0b8f5e-6f1f-4c8a-9a3e-000000000000",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	otherFactory := signToken(t, JWTClaims{
		FactoryID: "2f0b8f5e-6f1f-4c8a-9a3e-111111111111",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   f.client.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	cases := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong key", wrongKey},
		{"garbage", "not-a-token"},
		{"unknown client", unknownClient},
		{"factory mismatch", otherFactory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, err := svc.SetContextFromToken(context.Background(), tc.token)
			if err == nil {
				t.Fatalf("expected rejection")
			}
			if rd := requestdata.GetRequestData(ctx); rd != nil {
				t.Fatalf("request data must not be set on failure")
			}
		})
	}
}
