// Package debuglog appends client-side diagnostics to a rotating log file.
package debuglog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// TimestampLayout is the entry timestamp format
	TimestampLayout = "2006-01-02 15:04:05"
	// DefaultType is used for entries posted without a type
	DefaultType = "UNKNOWN"

	separatorWidth = 80
	maxSizeMB      = 10
	maxBackups     = 3
	maxAgeDays     = 30
)

// Entry is one diagnostic posted by a client.
type Entry struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

type WriteResult struct {
	BytesWritten int
	Timestamp    string
}

// Sink serializes entries into a size-rotated file.
type Sink struct {
	path string
	now  func() time.Time

	mu     sync.Mutex
	writer *lumberjack.Logger
}

func NewSink(path string) *Sink {
	return &Sink{
		path: path,
		now:  time.Now,
		writer: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		},
	}
}

func (s *Sink) Path() string {
	return s.path
}

// Write appends one formatted entry and returns how many bytes it took.
func (s *Sink) Write(entry Entry) (*WriteResult, error) {
	ts := s.now().Format(TimestampLayout)

	text, err := FormatEntry(entry, ts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.writer.Write([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to write debug log: %w", err)
	}
	return &WriteResult{BytesWritten: n, Timestamp: ts}, nil
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Close()
}

// FormatEntry renders
//
//	[ts] [TYPE] message
//	Details: <indented JSON>
//	--------...
//
// The details line is left out when details are absent or empty.
func FormatEntry(entry Entry, ts string) (string, error) {
	logType := entry.Type
	if logType == "" {
		logType = DefaultType
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s\n", ts, logType, entry.Message)

	if !emptyDetails(entry.Details) {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, entry.Details, "", "    "); err != nil {
			return "", fmt.Errorf("invalid details: %w", err)
		}
		fmt.Fprintf(&b, "Details: %s\n", pretty.String())
	}

	b.WriteString(strings.Repeat("-", separatorWidth))
	b.WriteString("\n")
	return b.String(), nil
}

// emptyDetails reports whether details are falsy: absent, null, false, zero,
// the strings "" and "0", or an empty array or object.
func emptyDetails(raw json.RawMessage) bool {
	trimmed := string(bytes.TrimSpace(raw))
	switch trimmed {
	case "", "null", "false":
		return true
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		return json.Unmarshal(raw, &items) == nil && len(items) == 0
	case '{':
		var fields map[string]json.RawMessage
		return json.Unmarshal(raw, &fields) == nil && len(fields) == 0
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		return s == "" || s == "0"
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		n, err := strconv.ParseFloat(trimmed, 64)
		return err == nil && n == 0
	}
	return false
}
