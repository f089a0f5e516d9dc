// Package sse decodes a text/event-stream body into events.
package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

const maxLine = 1 << 20

// Event is one dispatched server-sent event.
type Event struct {
	ID   string
	Type string
	Data string
	// Retry is the reconnection time in milliseconds the server asked for,
	// zero when not sent.
	Retry int
}

type Reader struct {
	sc     *bufio.Scanner
	lastID string
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Reader{sc: sc}
}

// LastID is the id of the most recent event carrying one.
func (r *Reader) LastID() string {
	return r.lastID
}

// Next blocks until the next event is dispatched. It returns io.EOF once the
// stream ends; a trailing event without its terminating blank line is
// discarded.
func (r *Reader) Next() (*Event, error) {
	var (
		ev      Event
		data    []string
		hasData bool
	)

	for r.sc.Scan() {
		line := strings.TrimSuffix(r.sc.Text(), "\r")

		if line == "" {
			if !hasData {
				ev = Event{}
				continue
			}
			ev.Data = strings.Join(data, "\n")
			if ev.Type == "" {
				ev.Type = "message"
			}
			if ev.ID != "" {
				r.lastID = ev.ID
			}
			return &ev, nil
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			ev.Type = value
		case "data":
			data = append(data, value)
			hasData = true
		case "id":
			if !strings.Contains(value, "\x00") {
				ev.ID = value
			}
		case "retry":
			if n, err := strconv.Atoi(value); err == nil {
				ev.Retry = n
			}
		}
	}

	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
