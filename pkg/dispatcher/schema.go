package dispatcher

// paramSchema lists the required and optional parameter names for a
// method's params object. get_balance and get_info have empty schemas
// (no params needed); a method absent from this table is treated the
// same way.
type paramSchema struct {
	required []string
	optional []string
}

var methodParamSchema = map[string]paramSchema{
	"pay_invoice": {
		required: []string{"invoice"},
		optional: []string{"amount"},
	},
	"multi_pay_invoice": {
		required: []string{"invoices"},
	},
	"pay_keysend": {
		required: []string{"amount", "pubkey"},
		optional: []string{"preimage", "tlv_records"},
	},
	"multi_pay_keysend": {
		required: []string{"keysends"},
	},
	"make_invoice": {
		required: []string{"amount"},
		optional: []string{"description", "expiry", "description_hash"},
	},
	"lookup_invoice": {
		optional: []string{"payment_hash", "invoice"},
	},
	"list_transactions": {
		optional: []string{"limit", "offset", "from", "until", "unpaid", "type"},
	},
	"get_balance":  {},
	"get_info":     {},
}

// validateParams checks every required key in schema is present and
// non-empty in params, returning it as a validated subset (required ∪
// optional keys only). Missing a required key produces an "OTHER"
// nwcError naming the parameter, per §4.7.
func validateParams(method string, params map[string]any) (map[string]any, error) {
	schema := methodParamSchema[method]
	for _, name := range schema.required {
		if v, ok := params[name]; !ok || isZero(v) {
			return nil, newNWCError(Other, "missing parameter: "+name)
		}
	}
	out := make(map[string]any, len(schema.required)+len(schema.optional))
	for _, name := range schema.required {
		out[name] = params[name]
	}
	for _, name := range schema.optional {
		if v, ok := params[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}

func isZero(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	default:
		return false
	}
}
