package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      stderrors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "unsupported file",
			err:      &UnsupportedFileType{Ext: ".txt"},
			expected: "Error: unsupported file type \".txt\"\nImport accepts .json and .csv files.",
		},
		{
			name:     "store failure",
			err:      fmt.Errorf("save: %w", Write("reflection", "2024-03-01", stderrors.New("connection reset"))),
			expected: "Error: save: failed to write reflection for 2024-03-01: connection reset\nRun 'timediary doctor' to check the store connection.",
		},
		{
			name:     "parse failure",
			err:      &ParseError{Format: "JSON", Err: stderrors.New("unexpected EOF")},
			expected: "Error: JSON parse error: unexpected EOF\nNothing was imported.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestLogFields(t *testing.T) {
	fields := logFields(Fetch("time entries", "2024-03-01", stderrors.New("timeout")))
	want := []interface{}{"op", "fetch", "entity", "time entries", "key", "2024-03-01"}
	if len(fields) != 2+len(want) {
		t.Fatalf("logFields() = %v", fields)
	}
	for i, w := range want {
		if fields[2+i] != w {
			t.Errorf("logFields()[%d] = %v, want %v", 2+i, fields[2+i], w)
		}
	}
	if got := logFields(stderrors.New("plain")); len(got) != 2 {
		t.Errorf("logFields(plain) = %v", got)
	}
}

func TestFetchAndWriteWrap(t *testing.T) {
	cause := stderrors.New("connection refused")

	if Fetch("entries", "2024-03-01", nil) != nil {
		t.Error("Fetch(nil) should return nil")
	}
	if Write("entries", "", nil) != nil {
		t.Error("Write(nil) should return nil")
	}

	fetchErr := Fetch("entries", "2024-03-01", cause)
	var fe *RemoteFetchError
	if !stderrors.As(fetchErr, &fe) {
		t.Fatalf("expected RemoteFetchError, got %T", fetchErr)
	}
	if !stderrors.Is(fetchErr, cause) {
		t.Error("RemoteFetchError should unwrap to its cause")
	}
	if !strings.Contains(fetchErr.Error(), "2024-03-01") {
		t.Errorf("expected key in message, got %q", fetchErr.Error())
	}

	writeErr := fmt.Errorf("save: %w", Write("reflection", "", cause))
	var we *RemoteWriteError
	if !stderrors.As(writeErr, &we) {
		t.Fatalf("expected RemoteWriteError, got %T", writeErr)
	}
	if we.Entity != "reflection" {
		t.Errorf("Entity = %q, want reflection", we.Entity)
	}
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"fetch", Fetch("projects", "", stderrors.New("x")), true},
		{"write wrapped", fmt.Errorf("outer: %w", Write("templates", "x", stderrors.New("x"))), true},
		{"parse", &ParseError{Format: "JSON", Err: stderrors.New("x")}, false},
		{"plain", stderrors.New("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRemote(tt.err); got != tt.want {
				t.Errorf("IsRemote() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCSVRowMalformedMessage(t *testing.T) {
	err := &CSVRowMalformed{Line: 4, Fields: 3}
	if err.Error() != "malformed CSV line 4: expected 7 fields, got 3" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
