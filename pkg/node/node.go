// Package node adapts the host Core Lightning process's JSON-RPC
// surface to the narrow set of operations the NIP-47 dispatcher needs.
// It is the only package under pkg/ that imports glightning.
package node

import "context"

// Info is the passthrough subset of `getinfo` the dispatcher exposes
// through the NIP-47 get_info method.
type Info struct {
	Alias       string
	Color       string
	Pubkey      string
	Network     string
	BlockHeight uint32
}

// DecodedInvoice is the subset of `decodepay` the dispatcher needs to
// compute budget-relevant amounts.
type DecodedInvoice struct {
	AmountMsat uint64 // 0 means an amountless invoice
	PaymentHash string
	ExpiresAt   int64
}

// PayResult is the shared shape of `pay` and `keysend` results.
type PayResult struct {
	PaymentPreimage string // empty if the node returned none
	AmountSentMsat  uint64 // includes routing fees
}

// Invoice is the shape of a single `invoice`/`listinvoices` record.
type Invoice struct {
	Bolt11        string
	PaymentHash   string
	Description   string
	AmountMsat    uint64
	ExpiresAt     int64
	PaidAt        int64
	PaymentPreimage string
	Status        string
}

// Channel carries the fields `get_balance` sums over.
type Channel struct {
	SpendableMsat uint64
}

// Adapter is the node-facing port the dispatcher depends on. All
// methods are synchronous RPC calls that may block. The relay client
// calls the dispatcher from its receive loop, so a blocking call holds
// up the reading of further frames until it returns.
type Adapter interface {
	GetInfo(ctx context.Context) (*Info, error)
	DecodePay(ctx context.Context, bolt11 string) (*DecodedInvoice, error)
	Pay(ctx context.Context, bolt11 string, amountMsat uint64) (*PayResult, error)
	Keysend(ctx context.Context, destPubkey string, amountMsat uint64) (*PayResult, error)
	Invoice(ctx context.Context, amountMsat uint64, label, description string, expiry uint32) (*Invoice, error)
	ListInvoicesByHash(ctx context.Context, paymentHash string) ([]Invoice, error)
	ListInvoicesByBolt11(ctx context.Context, bolt11 string) ([]Invoice, error)
	ListPeerChannels(ctx context.Context) ([]Channel, error)

	ListDataStore(ctx context.Context, key []string) ([]DataStoreRecord, error)
	DataStore(ctx context.Context, key []string, value string, mode DataStoreMode) error
	DelDataStore(ctx context.Context, key []string) error
	MakeSecret(ctx context.Context, info string) ([]byte, error)
}

// ErrorKind classifies a node RPC failure for NIP-47 error translation.
type ErrorKind int

const (
	ErrKindRPC ErrorKind = iota
	ErrKindNotFound
)

// Error wraps a node RPC failure with the kind the dispatcher needs to
// pick a NIP-47 error code, and the underlying message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string { return "node: " + e.Message }
func (e *Error) Unwrap() error { return e.Err }

// DataStoreMode mirrors CLN's `datastore` write modes.
type DataStoreMode int

const (
	// ModeCreateOrAppend creates the key if absent, or appends to its
	// existing string value.
	ModeCreateOrAppend DataStoreMode = iota
	// ModeMustCreate fails if the key already exists.
	ModeMustCreate
	// ModeMustReplace fails unless the key already exists; used as the
	// compare-and-swap primitive for spend accounting.
	ModeMustReplace
	// ModeCreateOrReplace writes unconditionally.
	ModeCreateOrReplace
)

// DataStoreRecord is a single `listdatastore` entry.
type DataStoreRecord struct {
	Key     []string
	String  string
	Version *int
}
