// Package store persists issued NWC connection authorizations in the
// host node's key-value datastore.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gudnuf/cln-nwc/pkg/node"
)

// baseKey is the datastore path prefix under which every connection
// record lives: ["nwc", "uri", client_pubkey_hex].
var baseKey = []string{"nwc", "uri"}

// Connection is an issued NWC URI's persisted authorization state.
type Connection struct {
	Secret     string `json:"secret"`
	BudgetMsat *int64 `json:"budget_msat"`
	ExpiryUnix *int64 `json:"expiry_unix"`
	SpentMsat  int64  `json:"spent_msat"`
}

// RemainingBudget returns budget minus spent, or a nil pointer if the
// connection has no budget (unlimited).
func (c *Connection) RemainingBudget() *int64 {
	if c.BudgetMsat == nil {
		return nil
	}
	r := *c.BudgetMsat - c.SpentMsat
	return &r
}

// Expired reports whether expiryUnix is set and has passed as of now.
func (c *Connection) Expired(nowUnix int64) bool {
	return c.ExpiryUnix != nil && nowUnix > *c.ExpiryUnix
}

// ErrorKind distinguishes store failure modes the dispatcher and admin
// commands need to branch on.
type ErrorKind int

const (
	ErrKindConflict ErrorKind = iota
	ErrKindNotFound
)

// Error is the store's error type; Kind selects Conflict or NotFound.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s", e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

// IsConflict reports whether err is a store Error of kind Conflict.
func IsConflict(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrKindConflict
}

// IsNotFound reports whether err is a store Error of kind NotFound.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrKindNotFound
}

// DataStorePort is the narrow slice of node.Adapter the store needs;
// declared here, at the consumer, per Go convention.
type DataStorePort interface {
	ListDataStore(ctx context.Context, key []string) ([]node.DataStoreRecord, error)
	DataStore(ctx context.Context, key []string, value string, mode node.DataStoreMode) error
	DelDataStore(ctx context.Context, key []string) error
}

// Store is the connection-authorization ledger backed by the host
// node's datastore.
type Store struct {
	db DataStorePort
}

// New wraps a DataStorePort as a connection Store.
func New(db DataStorePort) *Store {
	return &Store{db: db}
}

func connKey(clientPubkeyHex string) []string {
	key := make([]string, 0, len(baseKey)+1)
	key = append(key, baseKey...)
	return append(key, clientPubkeyHex)
}

// Create inserts a new connection record. It is insert-only: an
// existing record at the same key is a Conflict.
func (s *Store) Create(ctx context.Context, clientPubkeyHex string, conn *Connection) error {
	body, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("store: create: marshal: %w", err)
	}
	if err := s.db.DataStore(ctx, connKey(clientPubkeyHex), string(body), node.ModeMustCreate); err != nil {
		return &Error{Kind: ErrKindConflict, Op: "create", Err: err}
	}
	return nil
}

// Find returns the connection for clientPubkeyHex, or nil if none is
// recorded.
func (s *Store) Find(ctx context.Context, clientPubkeyHex string) (*Connection, error) {
	records, err := s.db.ListDataStore(ctx, connKey(clientPubkeyHex))
	if err != nil {
		return nil, fmt.Errorf("store: find: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	var conn Connection
	if err := json.Unmarshal([]byte(records[0].String), &conn); err != nil {
		return nil, fmt.Errorf("store: find: decode: %w", err)
	}
	return &conn, nil
}

// FindAll enumerates every issued connection under the "nwc","uri"
// prefix.
func (s *Store) FindAll(ctx context.Context) ([]*Connection, error) {
	records, err := s.db.ListDataStore(ctx, baseKey)
	if err != nil {
		return nil, fmt.Errorf("store: find_all: %w", err)
	}
	out := make([]*Connection, 0, len(records))
	for _, r := range records {
		var conn Connection
		if err := json.Unmarshal([]byte(r.String), &conn); err != nil {
			return nil, fmt.Errorf("store: find_all: decode: %w", err)
		}
		out = append(out, &conn)
	}
	return out, nil
}

// UpdateSpent compare-and-swaps spentMsat into the connection record
// using the datastore's must-replace mode, so a concurrent revoke
// races cleanly to NotFound rather than resurrecting a deleted
// connection.
func (s *Store) UpdateSpent(ctx context.Context, clientPubkeyHex string, conn *Connection, newSpentMsat int64) error {
	updated := *conn
	updated.SpentMsat = newSpentMsat
	body, err := json.Marshal(&updated)
	if err != nil {
		return fmt.Errorf("store: update_spent: marshal: %w", err)
	}
	if err := s.db.DataStore(ctx, connKey(clientPubkeyHex), string(body), node.ModeMustReplace); err != nil {
		return &Error{Kind: ErrKindNotFound, Op: "update_spent", Err: err}
	}
	return nil
}

// Delete removes the connection record for clientPubkeyHex.
func (s *Store) Delete(ctx context.Context, clientPubkeyHex string) error {
	if err := s.db.DelDataStore(ctx, connKey(clientPubkeyHex)); err != nil {
		return &Error{Kind: ErrKindNotFound, Op: "delete", Err: err}
	}
	return nil
}
