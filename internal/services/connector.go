package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"

	"github.com/desertthunder/floodjoin/internal/shared"
)

// TelegramConnector connects a gotd [telegram.Client] built from config and checks the session is authorized.
//
// Interactive login is out of scope: the session must come from an already logged-in client.
type TelegramConnector struct {
	cfg    shared.TelegramConfig
	logger *log.Logger
}

var _ Connector = (*TelegramConnector)(nil)

// NewTelegramConnector creates a TelegramConnector. A nil logger falls back to [shared.NewLogger].
func NewTelegramConnector(cfg shared.TelegramConfig, logger *log.Logger) *TelegramConnector {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TelegramConnector{cfg: cfg, logger: logger}
}

// Connect runs the client for the duration of fn. The connection is closed when fn returns or ctx is done.
func (c *TelegramConnector) Connect(ctx context.Context, fn func(ctx context.Context, ch Channels) error) error {
	if c.cfg.APIID <= 0 || c.cfg.APIHash == "" {
		return fmt.Errorf("%w: telegram.api_id and telegram.api_hash are required", shared.ErrMissingCredentials)
	}

	storage, err := c.sessionStorage(ctx)
	if err != nil {
		return err
	}

	client := telegram.NewClient(c.cfg.APIID, c.cfg.APIHash, telegram.Options{
		SessionStorage: storage,
	})

	c.logger.Debug("connecting to telegram", "api_id", c.cfg.APIID)

	return client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to check authorization: %w", err)
		}
		if !status.Authorized {
			return fmt.Errorf("%w: session is not logged in", shared.ErrNotAuthenticated)
		}

		c.logger.Debug("connected", "user_id", status.User.ID)
		defer c.logger.Debug("disconnecting from telegram")

		return fn(ctx, NewTelegramService(client))
	})
}

// sessionStorage prefers an inline string session over the session file.
func (c *TelegramConnector) sessionStorage(ctx context.Context) (session.Storage, error) {
	if c.cfg.Session == "" {
		if c.cfg.SessionFile == "" {
			return nil, fmt.Errorf("%w: telegram.session or telegram.session_file", shared.ErrMissingCredentials)
		}
		return &session.FileStorage{Path: c.cfg.SessionFile}, nil
	}

	data, err := session.TelethonSession(c.cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidSession, err)
	}

	storage := new(session.StorageMemory)
	loader := session.Loader{Storage: storage}
	if err := loader.Save(ctx, data); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidSession, err)
	}

	return storage, nil
}
