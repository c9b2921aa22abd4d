package nwcuri

import "testing"

const validPubkey = "bbde6a0e8847e1cdb2ba5ec021cc949eb3cef125b8304a748fe11c0407990ee4"
const validSecret = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

func TestParseValid(t *testing.T) {
	raw := "nostr+walletconnect://" + validPubkey + "?relay=wss://relay.example.com&secret=" + validSecret
	u, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if u.WalletPubkey != validPubkey {
		t.Errorf("WalletPubkey = %q, want %q", u.WalletPubkey, validPubkey)
	}
	if u.Relay != "wss://relay.example.com" {
		t.Errorf("Relay = %q", u.Relay)
	}
	if u.Secret != validSecret {
		t.Errorf("Secret = %q, want %q", u.Secret, validSecret)
	}
}

func TestParseIgnoresUnknownParams(t *testing.T) {
	raw := "nostr+walletconnect://" + validPubkey + "?relay=wss://r&secret=" + validSecret + "&lud16=foo@bar.com"
	u, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if u.Relay != "wss://r" {
		t.Errorf("Relay = %q", u.Relay)
	}
}

func TestParseRejectsWrongScheme(t *testing.T) {
	raw := "nostr:" + validPubkey + "?relay=wss://r&secret=" + validSecret
	if _, err := Parse(raw); err == nil {
		t.Fatal("expected error for wrong scheme")
	}
}

func TestParseRejectsUppercaseHost(t *testing.T) {
	raw := "nostr+walletconnect://" + "BBDE6A0E8847E1CDB2BA5EC021CC949EB3CEF125B8304A748FE11C0407990EE4" +
		"?relay=wss://r&secret=" + validSecret
	if _, err := Parse(raw); err == nil {
		t.Fatal("expected error for uppercase host")
	}
}

func TestParseMissingRelay(t *testing.T) {
	raw := "nostr+walletconnect://" + validPubkey + "?secret=" + validSecret
	if _, err := Parse(raw); err == nil {
		t.Fatal("expected error for missing relay")
	}
}

func TestParseMissingSecret(t *testing.T) {
	raw := "nostr+walletconnect://" + validPubkey + "?relay=wss://r"
	if _, err := Parse(raw); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestConstructParseRoundTrip(t *testing.T) {
	u := &URI{WalletPubkey: validPubkey, Relay: "wss://relay.example.com", Secret: validSecret}
	raw := Construct(u)

	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse(Construct(u)): %v", err)
	}
	if *got != *u {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, u)
	}
}
