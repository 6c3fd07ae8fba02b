package firebase

import (
	"context"
	"fmt"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"kamba-santa-backend/internal/common/config"
	"kamba-santa-backend/internal/common/logger"
)

// Identity is the authenticated principal extracted from a verified ID token.
type Identity struct {
	UID    string
	Name   string
	Email  string
	Avatar string
}

// TokenVerifier verifies a bearer ID token and yields the caller's identity.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
}

// Client wraps the Firebase Admin SDK auth client.
type Client struct {
	authClient *auth.Client
}

// NewClient initializes the Firebase Admin SDK from the configured
// service-account credentials.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.Firebase.CredentialsFile == "" {
		return nil, fmt.Errorf("firebase credentials file is required")
	}

	opt := option.WithCredentialsFile(filepath.Clean(cfg.Firebase.CredentialsFile))

	var app *firebase.App
	var err error
	if cfg.Firebase.ProjectID != "" {
		app, err = firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opt)
	} else {
		// Let the SDK infer the project from the credentials.
		app, err = firebase.NewApp(ctx, nil, opt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}

	logger.Info().Msg("Firebase Admin SDK initialized")
	return &Client{authClient: authClient}, nil
}

// VerifyIDToken verifies a Firebase ID token and returns the identity claims.
func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, fmt.Errorf("id token must not be empty")
	}

	token, err := c.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}

	identity := &Identity{UID: token.UID}
	if name, ok := token.Claims["name"].(string); ok {
		identity.Name = name
	}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		identity.Avatar = picture
	}

	return identity, nil
}
