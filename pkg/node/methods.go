package node

// Request/response shapes for the CLN JSON-RPC methods this package
// calls through glightning's generic Method/Request primitive rather
// than its typed per-call helpers, so that field names track CLN's
// documented wire format directly instead of a particular library
// version's struct layout.

type getInfoRequest struct{}

func (getInfoRequest) Name() string { return "getinfo" }

type getInfoResponse struct {
	Id          string `json:"id"`
	Alias       string `json:"alias"`
	Color       string `json:"color"`
	Network     string `json:"network"`
	BlockHeight uint32 `json:"blockheight"`
}

type decodePayRequest struct {
	Bolt11 string `json:"bolt11"`
}

func (decodePayRequest) Name() string { return "decodepay" }

type decodePayResponse struct {
	AmountMsat  uint64 `json:"amount_msat"`
	PaymentHash string `json:"payment_hash"`
	CreatedAt   int64  `json:"created_at"`
	Expiry      uint32 `json:"expiry"`
}

type payRequest struct {
	Bolt11     string `json:"bolt11"`
	AmountMsat uint64 `json:"amount_msat,omitempty"`
}

func (payRequest) Name() string { return "pay" }

type payResponse struct {
	PaymentPreimage string `json:"payment_preimage"`
	AmountSentMsat  uint64 `json:"amount_sent_msat"`
}

type keysendRequest struct {
	Destination string `json:"destination"`
	AmountMsat  uint64 `json:"amount_msat"`
}

func (keysendRequest) Name() string { return "keysend" }

type invoiceRequest struct {
	AmountMsat  uint64 `json:"amount_msat"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Expiry      uint32 `json:"expiry,omitempty"`
}

func (invoiceRequest) Name() string { return "invoice" }

type invoiceResponse struct {
	Bolt11      string `json:"bolt11"`
	PaymentHash string `json:"payment_hash"`
	ExpiresAt   int64  `json:"expires_at"`
}

type listInvoicesRequest struct {
	PaymentHash string `json:"payment_hash,omitempty"`
	Invstring   string `json:"invstring,omitempty"`
}

func (listInvoicesRequest) Name() string { return "listinvoices" }

type listInvoicesResponse struct {
	Invoices []listInvoiceRecord `json:"invoices"`
}

type listInvoiceRecord struct {
	Bolt11          string `json:"bolt11"`
	PaymentHash     string `json:"payment_hash"`
	Description     string `json:"description"`
	AmountMsat      uint64 `json:"amount_msat"`
	ExpiresAt       int64  `json:"expires_at"`
	PaidAt          int64  `json:"paid_at"`
	PaymentPreimage string `json:"payment_preimage"`
	Status          string `json:"status"`
}

type listPeerChannelsRequest struct{}

func (listPeerChannelsRequest) Name() string { return "listpeerchannels" }

type listPeerChannelsResponse struct {
	Channels []channelRecord `json:"channels"`
}

type channelRecord struct {
	SpendableMsat uint64 `json:"spendable_msat"`
}

type listDataStoreRequest struct {
	Key []string `json:"key,omitempty"`
}

func (listDataStoreRequest) Name() string { return "listdatastore" }

type listDataStoreResponse struct {
	Datastore []dataStoreRecord `json:"datastore"`
}

type dataStoreRecord struct {
	Key     []string `json:"key"`
	String  string   `json:"string"`
	Version *int     `json:"version,omitempty"`
}

type dataStoreRequest struct {
	Key    []string `json:"key"`
	String string   `json:"string"`
	Mode   string   `json:"mode,omitempty"`
}

func (dataStoreRequest) Name() string { return "datastore" }

type delDataStoreRequest struct {
	Key []string `json:"key"`
}

func (delDataStoreRequest) Name() string { return "deldatastore" }

type makeSecretRequest struct {
	Hex string `json:"hex,omitempty"`
}

func (makeSecretRequest) Name() string { return "makesecret" }

type makeSecretResponse struct {
	Secret string `json:"secret"`
}
