// Package admin implements the nwc-create / nwc-list / nwc-revoke
// commands the supervisor registers with the plugin host; each is a
// thin wrapper over pkg/store.
package admin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/gudnuf/cln-nwc/pkg/cryptoutil"
	"github.com/gudnuf/cln-nwc/pkg/nwcuri"
	"github.com/gudnuf/cln-nwc/pkg/store"
)

// Commands wraps the connection store and wallet identity the admin
// commands need to build and tear down connection URIs.
type Commands struct {
	store      *store.Store
	walletPub  string
	relayURL   string
}

// New builds the admin command surface over s.
func New(s *store.Store, walletPub, relayURL string) *Commands {
	return &Commands{store: s, walletPub: walletPub, relayURL: relayURL}
}

// CreateResult is the shape nwc-create returns.
type CreateResult struct {
	URL    string `json:"url"`
	Pubkey string `json:"pubkey"`
}

// Create issues a new connection with a fresh random secret. budgetMsat
// and expiryUnix are optional (nil = unlimited / never).
func (c *Commands) Create(ctx context.Context, budgetMsat, expiryUnix *int64) (*CreateResult, error) {
	secretBytes := make([]byte, cryptoutil.PrivKeyLen)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("admin: create: generate secret: %w", err)
	}
	secret := hex.EncodeToString(secretBytes)

	clientPub, err := cryptoutil.XOnlyPubkey(secret)
	if err != nil {
		return nil, fmt.Errorf("admin: create: derive client pubkey: %w", err)
	}

	conn := &store.Connection{Secret: secret, BudgetMsat: budgetMsat, ExpiryUnix: expiryUnix}
	if err := c.store.Create(ctx, clientPub, conn); err != nil {
		return nil, fmt.Errorf("admin: create: %w", err)
	}

	url := nwcuri.Construct(&nwcuri.URI{WalletPubkey: c.walletPub, Relay: c.relayURL, Secret: secret})
	return &CreateResult{URL: url, Pubkey: clientPub}, nil
}

// ListedConnection is one entry in nwc-list's result.
type ListedConnection struct {
	URL                  string `json:"url"`
	Pubkey               string `json:"pubkey"`
	ExpiryUnix           *int64 `json:"expiry_unix"`
	RemainingBudgetMsat  *int64 `json:"remaining_budget_msat"`
}

// List returns every issued connection.
func (c *Commands) List(ctx context.Context) ([]ListedConnection, error) {
	conns, err := c.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin: list: %w", err)
	}
	out := make([]ListedConnection, 0, len(conns))
	for _, conn := range conns {
		clientPub, err := cryptoutil.XOnlyPubkey(conn.Secret)
		if err != nil {
			return nil, fmt.Errorf("admin: list: derive client pubkey: %w", err)
		}
		url := nwcuri.Construct(&nwcuri.URI{WalletPubkey: c.walletPub, Relay: c.relayURL, Secret: conn.Secret})
		out = append(out, ListedConnection{
			URL:                 url,
			Pubkey:              clientPub,
			ExpiryUnix:          conn.ExpiryUnix,
			RemainingBudgetMsat: conn.RemainingBudget(),
		})
	}
	return out, nil
}

// Revoke deletes the connection identified by its client pubkey.
// Returns an error the caller should report verbatim if the
// connection was never issued or already revoked.
func (c *Commands) Revoke(ctx context.Context, clientPubkeyHex string) error {
	if err := c.store.Delete(ctx, clientPubkeyHex); err != nil {
		return fmt.Errorf("admin: revoke: %w", err)
	}
	return nil
}
