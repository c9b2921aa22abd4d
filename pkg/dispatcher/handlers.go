package dispatcher

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gudnuf/cln-nwc/pkg/node"
	"github.com/gudnuf/cln-nwc/pkg/store"
)

// handler executes one method's business logic against validated
// params, returning the plain result map on success. Budget checks and
// spend accounting for payment methods happen inline, bracketing the
// node call exactly as the node call itself.
type handler func(ctx context.Context, d *Dispatcher, conn *store.Connection, clientPubkey string, params map[string]any) (map[string]any, error)

var handlers = map[string]handler{
	"pay_invoice":     handlePayInvoice,
	"pay_keysend":     handlePayKeysend,
	"make_invoice":    handleMakeInvoice,
	"lookup_invoice":  handleLookupInvoice,
	"get_balance":     handleGetBalance,
	"get_info":        handleGetInfo,
}

func handlePayInvoice(ctx context.Context, d *Dispatcher, conn *store.Connection, clientPubkey string, params map[string]any) (map[string]any, error) {
	invoice, _ := params["invoice"].(string)
	explicitAmount := asMsat(params["amount"])

	decoded, err := d.node.DecodePay(ctx, invoice)
	if err != nil {
		return nil, translateNodeErr(err)
	}

	if explicitAmount > 0 && decoded.AmountMsat > 0 {
		return nil, newNWCError(Other, "amount and invoice amount cannot both be specified")
	}
	effective := explicitAmount
	if effective == 0 {
		effective = decoded.AmountMsat
	}

	if remaining := conn.RemainingBudget(); remaining != nil && *remaining < int64(effective) {
		return nil, newNWCError(QuotaExceeded, "")
	}

	result, err := d.node.Pay(ctx, invoice, explicitAmount)
	if err != nil {
		return nil, translateNodeErr(err)
	}
	return d.handlePayResult(ctx, conn, clientPubkey, result)
}

func handlePayKeysend(ctx context.Context, d *Dispatcher, conn *store.Connection, clientPubkey string, params map[string]any) (map[string]any, error) {
	if _, ok := params["preimage"]; ok {
		return nil, newNWCError(NotImplemented, "preimage not supported")
	}
	if _, ok := params["tlv_records"]; ok {
		return nil, newNWCError(NotImplemented, "tlv records not supported")
	}

	amount := asMsat(params["amount"])
	pubkey, _ := params["pubkey"].(string)

	if remaining := conn.RemainingBudget(); remaining != nil && *remaining < int64(amount) {
		return nil, newNWCError(QuotaExceeded, "")
	}

	result, err := d.node.Keysend(ctx, pubkey, amount)
	if err != nil {
		return nil, translateNodeErr(err)
	}
	return d.handlePayResult(ctx, conn, clientPubkey, result)
}

// handlePayResult folds a successful pay/keysend result into the
// response shape and, only when a preimage came back, increments
// spent_msat. The budget check and this update bracket the node call;
// a failed CAS here is logged and never rolls back the payment
// (§5, §9).
func (d *Dispatcher) handlePayResult(ctx context.Context, conn *store.Connection, clientPubkey string, result *node.PayResult) (map[string]any, error) {
	if result.PaymentPreimage == "" {
		return nil, newNWCError(Internal, "payment returned no preimage")
	}

	newSpent := conn.SpentMsat + int64(result.AmountSentMsat)
	if err := d.store.UpdateSpent(ctx, clientPubkey, conn, newSpent); err != nil {
		d.logf("spend accounting CAS failed for %s after a completed payment: %v", clientPubkey, err)
	}

	return map[string]any{"preimage": result.PaymentPreimage}, nil
}

func handleMakeInvoice(ctx context.Context, d *Dispatcher, conn *store.Connection, clientPubkey string, params map[string]any) (map[string]any, error) {
	amount := asMsat(params["amount"])
	description, _ := params["description"].(string)
	if description == "" {
		description = "CLN NWC Plugin"
	}
	expiry := uint32(asMsat(params["expiry"]))

	label := "nwc-invoice:" + uuid.NewString()
	inv, err := d.node.Invoice(ctx, amount, label, description, expiry)
	if err != nil {
		return nil, translateNodeErr(err)
	}

	return map[string]any{
		"type":         "incoming",
		"invoice":      inv.Bolt11,
		"amount":       amount,
		"created_at":   time.Now().Unix(),
		"expires_at":   inv.ExpiresAt,
		"payment_hash": inv.PaymentHash,
	}, nil
}

func handleLookupInvoice(ctx context.Context, d *Dispatcher, conn *store.Connection, clientPubkey string, params map[string]any) (map[string]any, error) {
	paymentHash, _ := params["payment_hash"].(string)
	invstring, _ := params["invoice"].(string)

	if paymentHash != "" && invstring != "" {
		return nil, newNWCError(Other, "payment_hash and invoice cannot both be specified")
	}

	var invoices []node.Invoice
	var err error
	switch {
	case paymentHash != "":
		invoices, err = d.node.ListInvoicesByHash(ctx, paymentHash)
	case invstring != "":
		invoices, err = d.node.ListInvoicesByBolt11(ctx, invstring)
	}
	if err != nil {
		return nil, translateNodeErr(err)
	}
	if len(invoices) == 0 {
		return nil, newNWCError(NotFound, "")
	}

	inv := invoices[0]
	return map[string]any{
		"type":         "incoming",
		"invoice":      inv.Bolt11,
		"description":  inv.Description,
		"preimage":     inv.PaymentPreimage,
		"payment_hash": inv.PaymentHash,
		"amount":       inv.AmountMsat,
		"created_at":   time.Now().Unix(),
		"expires_at":   inv.ExpiresAt,
		"settled_at":   inv.PaidAt,
	}, nil
}

func handleGetBalance(ctx context.Context, d *Dispatcher, conn *store.Connection, clientPubkey string, params map[string]any) (map[string]any, error) {
	channels, err := d.node.ListPeerChannels(ctx)
	if err != nil {
		return nil, translateNodeErr(err)
	}
	var total uint64
	for _, ch := range channels {
		total += ch.SpendableMsat
	}
	return map[string]any{"balance": total}, nil
}

func handleGetInfo(ctx context.Context, d *Dispatcher, conn *store.Connection, clientPubkey string, params map[string]any) (map[string]any, error) {
	info, err := d.node.GetInfo(ctx)
	if err != nil {
		return nil, translateNodeErr(err)
	}
	methods := make([]string, 0, len(handlers))
	for m := range handlers {
		methods = append(methods, m)
	}
	return map[string]any{
		"alias":        info.Alias,
		"color":        info.Color,
		"pubkey":       info.Pubkey,
		"network":      info.Network,
		"block_height": info.BlockHeight,
		"methods":      methods,
	}, nil
}

func translateNodeErr(err error) error {
	var ne *node.Error
	if asNodeErr(err, &ne) {
		return newNWCError(Internal, ne.Message)
	}
	return newNWCError(Internal, err.Error())
}

func asNodeErr(err error, target **node.Error) bool {
	ne, ok := err.(*node.Error)
	if ok {
		*target = ne
	}
	return ok
}

func asMsat(v any) uint64 {
	switch t := v.(type) {
	case float64:
		return uint64(t)
	case int64:
		return uint64(t)
	case int:
		return uint64(t)
	default:
		return 0
	}
}
