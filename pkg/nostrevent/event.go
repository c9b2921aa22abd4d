// Package nostrevent implements the Nostr event envelope: canonical
// serialization for id hashing, BIP-340 signing, and the wire JSON
// shape, per NIP-01 and the id/sig invariants spec'd for NIP-47.
package nostrevent

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gudnuf/cln-nwc/pkg/cryptoutil"
)

// Tags is a sequence of sequences of strings, e.g. [["p", pubkey], ["e", id]].
type Tags [][]string

// Event is a Nostr event as defined by NIP-01. Content carries
// ciphertext for kinds 23194/23195 and a plaintext method list for
// kind 13194.
type Event struct {
	ID        string `json:"id"`
	PubKey    string `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      int    `json:"kind"`
	Tags      Tags   `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig"`
}

// canonicalArray is the exact [0, pubkey, created_at, kind, tags,
// content] shape id hashing is defined over. A bespoke MarshalJSON
// would risk Go's map/struct key reordering; building the array by
// hand and compact-marshaling it keeps field order and separators
// under our control.
func canonicalArray(e *Event) ([]byte, error) {
	tags := e.Tags
	if tags == nil {
		tags = Tags{}
	}
	arr := []interface{}{0, e.PubKey, e.CreatedAt, e.Kind, tags, e.Content}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // let '<', '>', '&' and multibyte UTF-8 pass through unescaped
	if err := enc.Encode(arr); err != nil {
		return nil, fmt.Errorf("nostrevent: serialize: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ComputeID returns sha256(canonical serialization) as lowercase hex.
// PubKey must already be set.
func ComputeID(e *Event) (string, error) {
	if e.PubKey == "" {
		return "", fmt.Errorf("nostrevent: cannot compute id without pubkey")
	}
	canon, err := canonicalArray(e)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// Sign computes the event id and a BIP-340 signature over it with
// privHex, setting e.ID, e.PubKey, and e.Sig. CreatedAt and Kind must
// already be set by the caller.
func Sign(e *Event, privHex string) error {
	pub, err := cryptoutil.XOnlyPubkey(privHex)
	if err != nil {
		return fmt.Errorf("nostrevent: sign: %w", err)
	}
	e.PubKey = pub

	id, err := ComputeID(e)
	if err != nil {
		return fmt.Errorf("nostrevent: sign: %w", err)
	}
	e.ID = id

	idBytes, err := hex.DecodeString(id)
	if err != nil {
		return fmt.Errorf("nostrevent: sign: decode id: %w", err)
	}
	sig, err := cryptoutil.Sign(privHex, idBytes)
	if err != nil {
		return fmt.Errorf("nostrevent: sign: %w", err)
	}
	e.Sig = sig
	return nil
}

// Verify recomputes the id from the event's current fields and checks
// both that it matches e.ID and that e.Sig is a valid BIP-340
// signature by e.PubKey over that id. Mutating content, tags, kind,
// pubkey, or created_at after signing invalidates one or the other.
// Not called on the normal dispatch path (the core trusts what the
// relay delivered); exists for tests and offline verification.
func Verify(e *Event) (bool, error) {
	want, err := ComputeID(e)
	if err != nil {
		return false, err
	}
	if want != e.ID {
		return false, nil
	}
	idBytes, err := hex.DecodeString(e.ID)
	if err != nil {
		return false, fmt.Errorf("nostrevent: verify: decode id: %w", err)
	}
	return cryptoutil.Verify(e.PubKey, idBytes, e.Sig)
}

// FromJSON decodes the wire object shape. It does not verify id or
// signature — the relay is trusted to have delivered what it
// subscribed on; call Verify explicitly if that trust is unwarranted.
func FromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("nostrevent: decode: %w", err)
	}
	if e.Tags == nil {
		e.Tags = Tags{}
	}
	return &e, nil
}

// EventData returns the seven-field wire object, ready to embed in an
// ["EVENT", ...] relay frame.
func EventData(e *Event) map[string]interface{} {
	tags := e.Tags
	if tags == nil {
		tags = Tags{}
	}
	return map[string]interface{}{
		"id":         e.ID,
		"pubkey":     e.PubKey,
		"created_at": e.CreatedAt,
		"kind":       e.Kind,
		"tags":       tags,
		"content":    e.Content,
		"sig":        e.Sig,
	}
}

// FirstTagValue returns the value (second element) of the first tag
// named name, or "" if none is present.
func FirstTagValue(tags Tags, name string) string {
	for _, t := range tags {
		if len(t) >= 2 && t[0] == name {
			return t[1]
		}
	}
	return ""
}
