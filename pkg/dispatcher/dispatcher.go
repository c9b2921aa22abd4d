// Package dispatcher implements the NIP-47 request/response pipeline:
// decrypt, decode, authorize against the issuing connection, validate
// parameters, dispatch to the node, and produce a response envelope.
// Dispatch never panics and never returns a transport-level error —
// every failure path is folded into a ResponseEnvelope.
package dispatcher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gudnuf/cln-nwc/pkg/nip04"
	"github.com/gudnuf/cln-nwc/pkg/node"
	"github.com/gudnuf/cln-nwc/pkg/nostrevent"
	"github.com/gudnuf/cln-nwc/pkg/store"
)

// Dispatcher holds the node and store collaborators the per-method
// handlers call through; it carries no per-request state.
type Dispatcher struct {
	node    node.Adapter
	store   *store.Store
	privHex string
	logger  *log.Logger
}

// New builds a Dispatcher over the given node adapter, connection
// store, and wallet private key. logger defaults to log.Default() if
// nil.
func New(n node.Adapter, s *store.Store, privHex string, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{node: n, store: s, privHex: privHex, logger: logger}
}

func (d *Dispatcher) logf(format string, args ...any) {
	d.logger.Printf(format, args...)
}

// Dispatch runs the full pipeline over a kind-23194 request event and
// returns the plaintext response envelope to encrypt, sign, and
// publish as a kind-23195 event. ctx is passed through to the node
// adapter and store calls; node.CLN does not act on it, and Dispatch
// itself never aborts a method mid-flight.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *nostrevent.Event) *ResponseEnvelope {
	clientPubkey := ev.PubKey

	plaintext, err := nip04.Decrypt(ev.Content, d.privHex, clientPubkey)
	if err != nil {
		return failure("", Other, err.Error())
	}

	var req RequestEnvelope
	if err := json.Unmarshal([]byte(plaintext), &req); err != nil {
		return failure("", Other, err.Error())
	}

	conn, err := d.store.Find(ctx, clientPubkey)
	if err != nil {
		d.logf("store lookup failed for %s: %v", clientPubkey, err)
		return failure(req.Method, Unauthorized, "")
	}
	if conn == nil {
		return failure(req.Method, Unauthorized, "")
	}

	if conn.Expired(time.Now().Unix()) {
		return failure(req.Method, Unauthorized, "expired")
	}

	h, ok := handlers[req.Method]
	if !ok {
		return failure(req.Method, NotImplemented, "")
	}

	validated, err := validateParams(req.Method, req.Params)
	if err != nil {
		return toResponse(req.Method, err)
	}

	result, err := h(ctx, d, conn, clientPubkey, validated)
	if err != nil {
		return toResponse(req.Method, err)
	}
	return success(req.Method, result)
}

func toResponse(method string, err error) *ResponseEnvelope {
	if ne, ok := err.(*nwcError); ok {
		return failure(method, ne.Code, ne.Message)
	}
	return failure(method, Internal, err.Error())
}
