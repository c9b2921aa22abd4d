package relay

import (
	"context"
	"log"
	"testing"
)

// These cover handleFrame's label switch for frames that never touch
// the websocket connection or the dispatcher (OK/CLOSED/NOTICE/EOSE
// are log-only, and malformed frames are dropped), so they need no
// live relay.
func TestHandleFrameLogOnlyLabels(t *testing.T) {
	c := &Client{logger: log.Default()}
	for _, frame := range []string{
		`["OK","sub1",true,""]`,
		`["CLOSED","sub1","reason"]`,
		`["NOTICE","hello"]`,
		`["EOSE","sub1"]`,
	} {
		c.handleFrame(context.Background(), []byte(frame))
	}
}

func TestHandleFrameMalformedInputDoesNotPanic(t *testing.T) {
	c := &Client{logger: log.Default()}
	for _, frame := range []string{
		``,
		`not json`,
		`[]`,
		`[123]`,
		`["EVENT"]`,
		`["EVENT","sub1","not an event object"]`,
	} {
		c.handleFrame(context.Background(), []byte(frame))
	}
}
