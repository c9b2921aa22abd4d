// Package nwcuri parses and constructs nostr+walletconnect:// connection
// URIs, the string a client imports to authorize against a Connection.
package nwcuri

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const scheme = "nostr+walletconnect"

var hexPubkey = regexp.MustCompile(`^[0-9a-f]{64}$`)

// URI is a parsed nostr+walletconnect:// connection string.
type URI struct {
	WalletPubkey string // lowercase hex, 64 chars
	Relay        string
	Secret       string // lowercase hex, 64 chars
}

// Parse accepts strictly nostr+walletconnect://HOST?relay=...&secret=...
// HOST must be lowercase 64-char hex. relay and secret are required;
// any other query parameter is ignored.
func Parse(raw string) (*URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("nwcuri: parse: %w", err)
	}
	if u.Scheme != scheme {
		return nil, fmt.Errorf("nwcuri: unsupported scheme %q", u.Scheme)
	}

	host := u.Host
	if host == "" {
		// nostr+walletconnect://<hex> without "//" authority parsing
		// quirks lands the hex in Opaque on some url.Parse paths.
		host = u.Opaque
	}
	if !hexPubkey.MatchString(host) {
		return nil, fmt.Errorf("nwcuri: host %q is not lowercase 64-char hex", host)
	}

	q := u.Query()
	relay := q.Get("relay")
	if relay == "" {
		return nil, fmt.Errorf("nwcuri: missing required \"relay\" query parameter")
	}
	secret := strings.ToLower(q.Get("secret"))
	if secret == "" {
		return nil, fmt.Errorf("nwcuri: missing required \"secret\" query parameter")
	}
	if !hexPubkey.MatchString(secret) {
		return nil, fmt.Errorf("nwcuri: secret is not 64-char hex")
	}

	return &URI{
		WalletPubkey: strings.ToLower(host),
		Relay:        relay,
		Secret:       secret,
	}, nil
}

// Construct builds the canonical nostr+walletconnect:// string: lowercase
// scheme and hex, a single relay and secret query parameter.
func Construct(u *URI) string {
	v := url.Values{}
	v.Set("relay", u.Relay)
	v.Set("secret", strings.ToLower(u.Secret))
	return fmt.Sprintf("%s://%s?%s", scheme, strings.ToLower(u.WalletPubkey), v.Encode())
}
