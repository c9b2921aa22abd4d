// Command nwc-client is a manual probe tool for exercising a running
// wallet bridge end-to-end: given a nostr+walletconnect:// URI, it
// sends one NIP-47 request and prints the decrypted response.
//
// It is not part of the wallet's core; unlike the dispatcher's
// hand-rolled event/crypto layer, this throwaway client leans on
// go-nostr for the event and NIP-04 plumbing, matching how a quick
// client-side script would be written against an existing relay
// library.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip04"

	"github.com/gudnuf/cln-nwc/pkg/nwcuri"
)

func main() {
	uri := flag.String("uri", "", "nostr+walletconnect:// connection string")
	method := flag.String("method", "get_info", "NIP-47 method to invoke")
	params := flag.String("params", "{}", "JSON object of method params")
	timeout := flag.Duration("timeout", 30*time.Second, "how long to wait for a response")
	flag.Parse()

	if *uri == "" {
		fmt.Fprintln(os.Stderr, "usage: nwc-client -uri nostr+walletconnect://... [-method pay_invoice] [-params '{\"invoice\":\"lnbc...\"}']")
		os.Exit(2)
	}

	if err := run(*uri, *method, *params, *timeout); err != nil {
		log.Fatalf("nwc-client: %v", err)
	}
}

func run(rawURI, method, rawParams string, timeout time.Duration) error {
	conn, err := nwcuri.Parse(rawURI)
	if err != nil {
		return fmt.Errorf("parse uri: %w", err)
	}

	var paramsObj map[string]interface{}
	if err := json.Unmarshal([]byte(rawParams), &paramsObj); err != nil {
		return fmt.Errorf("parse -params: %w", err)
	}

	clientPubkey, err := nostr.GetPublicKey(conn.Secret)
	if err != nil {
		return fmt.Errorf("derive client pubkey: %w", err)
	}

	sharedSecret, err := nip04.ComputeSharedSecret(conn.WalletPubkey, conn.Secret)
	if err != nil {
		return fmt.Errorf("compute shared secret: %w", err)
	}

	body, err := json.Marshal(map[string]interface{}{"method": method, "params": paramsObj})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	encrypted, err := nip04.Encrypt(string(body), sharedSecret)
	if err != nil {
		return fmt.Errorf("encrypt request: %w", err)
	}

	req := nostr.Event{
		PubKey:    clientPubkey,
		CreatedAt: nostr.Now(),
		Kind:      23194,
		Tags:      nostr.Tags{nostr.Tag{"p", conn.WalletPubkey}},
		Content:   encrypted,
	}
	if err := req.Sign(conn.Secret); err != nil {
		return fmt.Errorf("sign request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool := nostr.NewSimplePool(ctx)
	since := nostr.Now()
	responses := pool.SubMany(ctx, []string{conn.Relay}, []nostr.Filter{{
		Kinds:   []int{23195},
		Authors: []string{conn.WalletPubkey},
		Tags:    nostr.TagMap{"e": []string{req.ID}},
		Since:   &since,
	}})

	time.Sleep(500 * time.Millisecond)

	published := false
	for result := range pool.PublishMany(ctx, []string{conn.Relay}, req) {
		if result.Error == nil {
			published = true
		} else {
			log.Printf("publish error: %v", result.Error)
		}
	}
	if !published {
		return fmt.Errorf("failed to publish request to %s", conn.Relay)
	}
	log.Printf("request %s published, waiting for response (timeout %s)", req.ID, timeout)

	for {
		select {
		case incoming := <-responses:
			if incoming.Event == nil {
				continue
			}
			decrypted, err := nip04.Decrypt(incoming.Content, sharedSecret)
			if err != nil {
				return fmt.Errorf("decrypt response: %w", err)
			}
			fmt.Println(decrypted)
			return nil
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for a response from %s", conn.WalletPubkey)
		}
	}
}
