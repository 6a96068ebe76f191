package services

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/repos"
	"github.com/yarff/flashing-backend/internal/requestdata"
)

// JWTClaims are the token claims issued by the identity provider. Subject is
// the client id; factory_id scopes the session to one fabrication site.
type JWTClaims struct {
	FactoryID string `json:"factory_id"`
	jwt.RegisteredClaims
}

type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	clientRepo   repos.ClientRepo
	jwtSecretKey string
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	clientRepo repos.ClientRepo,
	jwtSecretKey string,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		clientRepo:   clientRepo,
		jwtSecretKey: jwtSecretKey,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}

	clientID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid client id in token: %w", err)
	}

	client, err := as.clientRepo.GetByID(ctx, nil, clientID)
	if err != nil {
		return ctx, fmt.Errorf("unknown client: %w", err)
	}

	factoryID := client.FactoryID
	if claims.FactoryID != "" {
		parsed, err := uuid.Parse(claims.FactoryID)
		if err != nil {
			return ctx, fmt.Errorf("invalid factory id in token: %w", err)
		}
		if parsed != client.FactoryID {
			return ctx, fmt.Errorf("token factory does not match client")
		}
		factoryID = parsed
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		ClientID:    client.ID,
		FactoryID:   factoryID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}
