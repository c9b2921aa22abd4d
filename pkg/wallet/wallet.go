// Package wallet holds the wallet's identity and the component
// references the dispatcher needs to act on its behalf.
package wallet

import (
	"context"
	"fmt"

	"github.com/gudnuf/cln-nwc/pkg/cryptoutil"
	"github.com/gudnuf/cln-nwc/pkg/node"
	"github.com/gudnuf/cln-nwc/pkg/store"
)

// keyDatastorePath is where the wallet's long-lived private key is
// persisted, generated once via the node's HSM and never rotated.
var keyDatastorePath = []string{"nwc", "key", "v0"}

// Context is the wallet's immutable identity and collaborators,
// constructed once at startup. It replaces a process-wide mutable
// "plugin" object with a plain value; the relay client and dispatcher
// receive its key fields, not the Context itself.
type Context struct {
	PrivHex string
	PubHex  string
	Node    node.Adapter
	Store   *store.Store
}

// LoadOrCreate reads the wallet's private key from the node datastore,
// generating and persisting one via makesecret on first run.
func LoadOrCreate(ctx context.Context, n node.Adapter) (*Context, error) {
	records, err := n.ListDataStore(ctx, keyDatastorePath)
	if err != nil {
		return nil, fmt.Errorf("wallet: load key: %w", err)
	}

	var privHex string
	if len(records) > 0 {
		privHex = records[0].String
	} else {
		secret, err := n.MakeSecret(ctx, "nwc")
		if err != nil {
			return nil, fmt.Errorf("wallet: generate key: %w", err)
		}
		privHex = fmt.Sprintf("%x", secret)
		if err := n.DataStore(ctx, keyDatastorePath, privHex, node.ModeMustCreate); err != nil {
			return nil, fmt.Errorf("wallet: persist key: %w", err)
		}
	}

	pubHex, err := cryptoutil.XOnlyPubkey(privHex)
	if err != nil {
		return nil, fmt.Errorf("wallet: derive pubkey: %w", err)
	}

	return &Context{PrivHex: privHex, PubHex: pubHex, Node: n}, nil
}

// WithStore returns a copy of the context carrying s as its
// connection ledger.
func (c *Context) WithStore(s *store.Store) *Context {
	cp := *c
	cp.Store = s
	return &cp
}
