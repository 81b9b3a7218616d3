package chat

import (
	"encoding/json"
	"strings"
)

// Event is one decoded unit from the relay stream: a text fragment to
// append to the growing reply, and a marker on the stream's final record.
type Event struct {
	Text string
	Done bool
}

// record mirrors one newline-delimited JSON object from the upstream
// stream. Unknown fields are ignored for forward compatibility; the
// final record typically carries done plus metadata and no response.
type record struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// Decoder reassembles newline-delimited JSON records from arbitrary
// byte chunks. Chunk boundaries carry no meaning: a chunk may end
// mid-record, contain several records, or end exactly on a terminator,
// and the decoded event sequence is the same for any re-chunking of the
// same bytes.
//
// The zero value is ready to use. Decoder is not safe for concurrent
// use; one stream has one consumer.
type Decoder struct {
	// pending holds at most one incomplete trailing record carried over
	// from the previous chunk.
	pending string

	// Malformed counts records that were terminated but failed to parse.
	// Such records are skipped and never abort the stream.
	Malformed int

	// OnMalformed, if set, is invoked for each skipped record.
	OnMalformed func(line string, err error)
}

// Feed consumes the next chunk and returns the events completed by it,
// in arrival order.
func (d *Decoder) Feed(chunk []byte) []Event {
	data := d.pending + string(chunk)
	segments := strings.Split(data, "\n")

	// All but the last segment are complete records; the last (possibly
	// empty) is the new pending buffer.
	d.pending = segments[len(segments)-1]

	var events []Event
	for _, line := range segments[:len(segments)-1] {
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			d.Malformed++
			if d.OnMalformed != nil {
				d.OnMalformed(line, err)
			}
			continue
		}

		// A valid record with neither a response field nor a done marker
		// carries nothing to apply.
		if rec.Response == nil && !rec.Done {
			continue
		}

		ev := Event{Done: rec.Done}
		if rec.Response != nil {
			ev.Text = *rec.Response
		}
		events = append(events, ev)
	}

	return events
}

// Finish reports how the stream ended. A non-empty pending buffer means
// the connection closed mid-record.
func (d *Decoder) Finish() error {
	if d.pending != "" {
		return ErrTruncatedStream
	}
	return nil
}

// Reset clears the pending buffer for reuse on a new stream.
func (d *Decoder) Reset() {
	d.pending = ""
	d.Malformed = 0
}
