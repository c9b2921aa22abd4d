// Command cln-nwc is a Core Lightning plugin exposing the node's
// payment capabilities over Nostr Wallet Connect. It loads or
// generates the wallet's secp256k1 keypair, wires the connection
// store and NIP-47 dispatcher to the node's RPC surface, and runs the
// relay client for the plugin's lifetime.
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/elementsproject/glightning/glightning"

	"github.com/gudnuf/cln-nwc/pkg/admin"
	"github.com/gudnuf/cln-nwc/pkg/config"
	"github.com/gudnuf/cln-nwc/pkg/dispatcher"
	"github.com/gudnuf/cln-nwc/pkg/node"
	"github.com/gudnuf/cln-nwc/pkg/relay"
	"github.com/gudnuf/cln-nwc/pkg/store"
	"github.com/gudnuf/cln-nwc/pkg/wallet"
)

// supportedMethods is the kind-13194 info event's content. get_info
// builds its advertised method list from the dispatcher's own handler
// table, a separate list that names the same six methods.
var supportedMethods = []string{
	"pay_invoice", "pay_keysend", "make_invoice",
	"lookup_invoice", "get_balance", "get_info",
}

// jrpcResult is any value glightning can marshal as a method's JSON-RPC
// result.
type jrpcResult = interface{}

func main() {
	logFile := setUpLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("cln-nwc: failed to load config, using defaults: %v", err)
		cfg = &config.Config{DefaultRelay: "wss://relay.getalby.com/v1"}
	}

	// cmds is populated once the init hook has a live RPC connection;
	// the admin RPC methods below are registered up front but only
	// become usable after that point, matching how the node itself
	// won't route requests to the plugin before the handshake
	// completes.
	var cmds *admin.Commands

	plugin := glightning.NewPlugin(onInit(cfg, &cmds))

	plugin.RegisterMethod(glightning.NewRpcMethod(
		func(budgetMsat, expiryUnix *int64) (jrpcResult, error) {
			return cmds.Create(context.Background(), budgetMsat, expiryUnix)
		},
		"Create a new NWC connection URI",
	))
	plugin.RegisterMethod(glightning.NewRpcMethod(
		func() (jrpcResult, error) {
			return cmds.List(context.Background())
		},
		"List issued NWC connections",
	))
	plugin.RegisterMethod(glightning.NewRpcMethod(
		func(pubkey string) (jrpcResult, error) {
			if err := cmds.Revoke(context.Background(), pubkey); err != nil {
				return nil, err
			}
			return true, nil
		},
		"Revoke an NWC connection by client pubkey",
	))

	if err := plugin.Start(os.Stdin, os.Stdout); err != nil {
		log.Fatalf("cln-nwc: %v", err)
	}
}

// onInit returns the plugin's init hook: it brings up the RPC client,
// loads or provisions the wallet key, and starts the relay client in
// the background. cmdsOut receives the admin command surface so the
// RPC methods registered in main can reach it once ready.
func onInit(cfg *config.Config, cmdsOut **admin.Commands) func(*glightning.Plugin, map[string]glightning.Option, *glightning.Config) {
	return func(p *glightning.Plugin, options map[string]glightning.Option, pluginConfig *glightning.Config) {
		rpc := glightning.NewLightning()
		if err := rpc.StartUp(pluginConfig.RpcFile, pluginConfig.LightningDir); err != nil {
			p.Log("rpc startup failed: "+err.Error(), glightning.Error)
			return
		}

		nodeAdapter := node.NewCLN(rpc)
		ctx := context.Background()

		w, err := wallet.LoadOrCreate(ctx, nodeAdapter)
		if err != nil {
			p.Log("failed to load or create wallet key: "+err.Error(), glightning.Error)
			return
		}
		conns := store.New(nodeAdapter)
		w = w.WithStore(conns)

		*cmdsOut = admin.New(conns, w.PubHex, cfg.DefaultRelay)

		d := dispatcher.New(nodeAdapter, conns, w.PrivHex, log.Default())
		client := relay.New(cfg.DefaultRelay, w.PrivHex, w.PubHex, d, supportedMethods, log.Default())

		go func() {
			if err := client.Run(ctx); err != nil {
				p.Log("relay client stopped: "+err.Error(), glightning.Error)
			}
		}()

		p.Log("cln-nwc connected, wallet pubkey "+w.PubHex+", relay "+cfg.DefaultRelay, glightning.Info)
	}
}

func setUpLogging() *os.File {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	logPath := filepath.Join(home, ".config", "cln-nwc", "debug.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return nil
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil
	}
	log.SetOutput(logFile)
	log.Printf("\n\n========== cln-nwc started ==========")
	return logFile
}
