// Package relay maintains the wallet's single long-lived websocket
// subscription to a Nostr relay: connect, announce, subscribe, and
// stream incoming NIP-47 request events into the dispatcher.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/gudnuf/cln-nwc/pkg/dispatcher"
	"github.com/gudnuf/cln-nwc/pkg/nip04"
	"github.com/gudnuf/cln-nwc/pkg/nostrevent"
)

const reconnectBackoff = 5 * time.Second

// state is the client's position in the INIT -> CONNECTING ->
// CONNECTED -> SUBSCRIBED lifecycle. It exists for logging/inspection;
// the control flow itself is a straight-line loop, not a state
// dispatch table.
type state int

const (
	stateInit state = iota
	stateConnecting
	stateConnected
	stateSubscribed
)

// Client is the wallet's relay connection. One Client serves one
// relay for the lifetime of the process.
type Client struct {
	url          string
	walletPriv   string
	walletPub    string
	dispatch     *dispatcher.Dispatcher
	logger       *log.Logger
	methods      []string
	infoSent     bool
	state        state
	conn         *websocket.Conn
}

// New builds a relay Client. methods is the supported-method list
// published in the one-time kind-13194 info event.
func New(url, walletPriv, walletPub string, d *dispatcher.Dispatcher, methods []string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		url:        url,
		walletPriv: walletPriv,
		walletPub:  walletPub,
		dispatch:   d,
		logger:     logger,
		methods:    methods,
		state:      stateInit,
	}
}

// Run connects, subscribes, and processes incoming events until ctx is
// canceled. Any websocket close or transport error triggers a 5-second
// sleep and reconnect; the info event publishes only on the first
// successful connection of the process.
func (c *Client) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := c.connectAndServe(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Printf("relay: connection to %s closed: %v, reconnecting in %s", c.url, err, reconnectBackoff)
			c.state = stateInit
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reconnectBackoff):
			}
		}
	}
}

func (c *Client) connectAndServe(ctx context.Context) error {
	c.state = stateConnecting
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()
	c.conn = conn
	c.state = stateConnected

	if !c.infoSent {
		if err := c.publishInfoEvent(ctx); err != nil {
			c.logger.Printf("relay: failed to publish info event: %v", err)
		} else {
			c.infoSent = true
		}
	}

	subID := uuid.NewString()
	filter := map[string]any{"kinds": []int{23194}, "#p": []string{c.walletPub}}
	req := []any{"REQ", subID, filter}
	if err := c.writeJSON(ctx, req); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	c.state = stateSubscribed

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		c.handleFrame(ctx, data)
	}
}

func (c *Client) handleFrame(ctx context.Context, data []byte) {
	var frame []json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		c.logger.Printf("relay: malformed frame: %v", err)
		return
	}
	if len(frame) == 0 {
		return
	}
	var label string
	if err := json.Unmarshal(frame[0], &label); err != nil {
		return
	}

	switch label {
	case "EVENT":
		if len(frame) < 3 {
			return
		}
		ev, err := nostrevent.FromJSON(frame[2])
		if err != nil {
			c.logger.Printf("relay: malformed event: %v", err)
			return
		}
		c.handleRequest(ctx, ev)
	case "OK", "CLOSED", "NOTICE", "EOSE":
		c.logger.Printf("relay: %s %s", label, string(data))
	default:
		c.logger.Printf("relay: unrecognized frame label %q", label)
	}
}

func (c *Client) handleRequest(ctx context.Context, ev *nostrevent.Event) {
	resp := c.dispatch.Dispatch(ctx, ev)

	body, err := json.Marshal(resp)
	if err != nil {
		c.logger.Printf("relay: failed to marshal response envelope: %v", err)
		return
	}

	encrypted, err := nip04.Encrypt(string(body), c.walletPriv, ev.PubKey)
	if err != nil {
		c.logger.Printf("relay: failed to encrypt response: %v", err)
		return
	}

	respEvent := &nostrevent.Event{
		Kind:      23195,
		CreatedAt: time.Now().Unix(),
		Tags:      nostrevent.Tags{{"p", ev.PubKey}, {"e", ev.ID}},
		Content:   encrypted,
	}
	if err := nostrevent.Sign(respEvent, c.walletPriv); err != nil {
		c.logger.Printf("relay: failed to sign response event: %v", err)
		return
	}

	if err := c.publish(ctx, respEvent); err != nil {
		c.logger.Printf("relay: failed to publish response: %v", err)
	}
}

func (c *Client) publishInfoEvent(ctx context.Context) error {
	content := ""
	for i, m := range c.methods {
		if i > 0 {
			content += " "
		}
		content += m
	}
	ev := &nostrevent.Event{
		Kind:      13194,
		CreatedAt: time.Now().Unix(),
		Tags:      nostrevent.Tags{},
		Content:   content,
	}
	if err := nostrevent.Sign(ev, c.walletPriv); err != nil {
		return fmt.Errorf("sign info event: %w", err)
	}
	return c.publish(ctx, ev)
}

func (c *Client) publish(ctx context.Context, ev *nostrevent.Event) error {
	return c.writeJSON(ctx, []any{"EVENT", nostrevent.EventData(ev)})
}

func (c *Client) writeJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}
