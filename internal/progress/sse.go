package progress

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteSSE encodes one event in text/event-stream framing:
//
//	event: <name>
//	data: <json>
//	<blank line>
func WriteSSE(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", ev.Name, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
		return fmt.Errorf("writing %s event: %w", ev.Name, err)
	}
	return nil
}
