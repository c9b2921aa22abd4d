package node

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/elementsproject/glightning/glightning"
)

// CLN implements Adapter over a live glightning RPC connection. Every
// call, including getinfo/pay/decodepay/invoice, goes through
// glightning's generic Method/Request escape hatch with the request and
// response shapes declared in methods.go; none of the typed helpers on
// *glightning.Lightning are used.
type CLN struct {
	rpc *glightning.Lightning
}

// NewCLN wraps an already-started glightning RPC client.
func NewCLN(rpc *glightning.Lightning) *CLN {
	return &CLN{rpc: rpc}
}

func rpcErr(method string, err error) *Error {
	return &Error{Kind: ErrKindRPC, Message: fmt.Sprintf("%s: %v", method, err), Err: err}
}

func (c *CLN) GetInfo(ctx context.Context) (*Info, error) {
	var res getInfoResponse
	if err := c.rpc.Request(&getInfoRequest{}, &res); err != nil {
		return nil, rpcErr("getinfo", err)
	}
	return &Info{
		Alias:       res.Alias,
		Color:       res.Color,
		Pubkey:      res.Id,
		Network:     res.Network,
		BlockHeight: res.BlockHeight,
	}, nil
}

func (c *CLN) DecodePay(ctx context.Context, bolt11 string) (*DecodedInvoice, error) {
	var res decodePayResponse
	if err := c.rpc.Request(&decodePayRequest{Bolt11: bolt11}, &res); err != nil {
		return nil, rpcErr("decodepay", err)
	}
	return &DecodedInvoice{
		AmountMsat:  res.AmountMsat,
		PaymentHash: res.PaymentHash,
		ExpiresAt:   res.CreatedAt + int64(res.Expiry),
	}, nil
}

func (c *CLN) Pay(ctx context.Context, bolt11 string, amountMsat uint64) (*PayResult, error) {
	var res payResponse
	req := payRequest{Bolt11: bolt11}
	if amountMsat > 0 {
		req.AmountMsat = amountMsat
	}
	if err := c.rpc.Request(&req, &res); err != nil {
		return nil, rpcErr("pay", err)
	}
	return &PayResult{PaymentPreimage: res.PaymentPreimage, AmountSentMsat: res.AmountSentMsat}, nil
}

func (c *CLN) Keysend(ctx context.Context, destPubkey string, amountMsat uint64) (*PayResult, error) {
	var res payResponse
	req := keysendRequest{Destination: destPubkey, AmountMsat: amountMsat}
	if err := c.rpc.Request(&req, &res); err != nil {
		return nil, rpcErr("keysend", err)
	}
	return &PayResult{PaymentPreimage: res.PaymentPreimage, AmountSentMsat: res.AmountSentMsat}, nil
}

func (c *CLN) Invoice(ctx context.Context, amountMsat uint64, label, description string, expiry uint32) (*Invoice, error) {
	var res invoiceResponse
	req := invoiceRequest{AmountMsat: amountMsat, Label: label, Description: description, Expiry: expiry}
	if err := c.rpc.Request(&req, &res); err != nil {
		return nil, rpcErr("invoice", err)
	}
	return &Invoice{
		Bolt11:      res.Bolt11,
		PaymentHash: res.PaymentHash,
		ExpiresAt:   res.ExpiresAt,
	}, nil
}

func (c *CLN) ListInvoicesByHash(ctx context.Context, paymentHash string) ([]Invoice, error) {
	return c.listInvoices(listInvoicesRequest{PaymentHash: paymentHash})
}

func (c *CLN) ListInvoicesByBolt11(ctx context.Context, bolt11 string) ([]Invoice, error) {
	return c.listInvoices(listInvoicesRequest{Invstring: bolt11})
}

func (c *CLN) listInvoices(req listInvoicesRequest) ([]Invoice, error) {
	var res listInvoicesResponse
	if err := c.rpc.Request(&req, &res); err != nil {
		return nil, rpcErr("listinvoices", err)
	}
	out := make([]Invoice, 0, len(res.Invoices))
	for _, r := range res.Invoices {
		out = append(out, Invoice{
			Bolt11:          r.Bolt11,
			PaymentHash:     r.PaymentHash,
			Description:     r.Description,
			AmountMsat:      r.AmountMsat,
			ExpiresAt:       r.ExpiresAt,
			PaidAt:          r.PaidAt,
			PaymentPreimage: r.PaymentPreimage,
			Status:          r.Status,
		})
	}
	return out, nil
}

func (c *CLN) ListPeerChannels(ctx context.Context) ([]Channel, error) {
	var res listPeerChannelsResponse
	if err := c.rpc.Request(&listPeerChannelsRequest{}, &res); err != nil {
		return nil, rpcErr("listpeerchannels", err)
	}
	out := make([]Channel, 0, len(res.Channels))
	for _, ch := range res.Channels {
		out = append(out, Channel{SpendableMsat: ch.SpendableMsat})
	}
	return out, nil
}

func (c *CLN) ListDataStore(ctx context.Context, key []string) ([]DataStoreRecord, error) {
	var res listDataStoreResponse
	if err := c.rpc.Request(&listDataStoreRequest{Key: key}, &res); err != nil {
		return nil, rpcErr("listdatastore", err)
	}
	out := make([]DataStoreRecord, 0, len(res.Datastore))
	for _, r := range res.Datastore {
		out = append(out, DataStoreRecord{Key: r.Key, String: r.String, Version: r.Version})
	}
	return out, nil
}

func (c *CLN) DataStore(ctx context.Context, key []string, value string, mode DataStoreMode) error {
	var res struct{}
	req := dataStoreRequest{Key: key, String: value, Mode: modeString(mode)}
	if err := c.rpc.Request(&req, &res); err != nil {
		return rpcErr("datastore", err)
	}
	return nil
}

func (c *CLN) DelDataStore(ctx context.Context, key []string) error {
	var res struct{}
	if err := c.rpc.Request(&delDataStoreRequest{Key: key}, &res); err != nil {
		return rpcErr("deldatastore", err)
	}
	return nil
}

func (c *CLN) MakeSecret(ctx context.Context, info string) ([]byte, error) {
	var res makeSecretResponse
	if err := c.rpc.Request(&makeSecretRequest{Hex: info}, &res); err != nil {
		return nil, rpcErr("makesecret", err)
	}
	secret, err := hex.DecodeString(res.Secret)
	if err != nil {
		return nil, rpcErr("makesecret", fmt.Errorf("non-hex secret: %w", err))
	}
	return secret, nil
}

func modeString(m DataStoreMode) string {
	switch m {
	case ModeMustCreate:
		return "must-create"
	case ModeMustReplace:
		return "must-replace"
	case ModeCreateOrReplace:
		return "create-or-replace"
	default:
		return "create-or-append"
	}
}
