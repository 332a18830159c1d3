package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
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
			name:     "validation error",
			err:      Validation("duration must be greater than zero"),
			expected: "Error: duration must be greater than zero",
		},
		{
			name: "conflict lists blocking sessions",
			err: Conflict("too many conflicts to resolve automatically", []models.Session{
				{Title: "Deep work", Date: "2024-01-01", Time: "10:00", DurationMin: 60},
			}),
			expected: "Error: too many conflicts to resolve automatically\n  conflicts with \"Deep work\" on 2024-01-01 at 10:00 (60 min)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestCodes(t *testing.T) {
	disk := stderrors.New("disk full")
	ioErr := IO(disk, "appending sessions")

	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"validation", Validation("title is required"), CodeValidation},
		{"conflict", Conflict("blocked", nil), CodeConflict},
		{"recurrence", Recurrence("custom pattern is empty"), CodeRecurrence},
		{"io", ioErr, CodeIO},
		{"not found", NotFound("session", "abc"), CodeNotFound},
		{"wrapped", fmt.Errorf("batch item 2: %w", Validation("bad")), CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsCode(tt.err, tt.code) {
				t.Errorf("IsCode(%v, %s) = false", tt.err, tt.code)
			}
			if CodeOf(tt.err) != tt.code {
				t.Errorf("CodeOf(%v) = %s, want %s", tt.err, CodeOf(tt.err), tt.code)
			}
		})
	}

	if !stderrors.Is(ioErr, disk) {
		t.Error("IO error should unwrap to its cause")
	}
	if !stderrors.Is(ioErr, ErrIO) {
		t.Error("IO error should match ErrIO sentinel")
	}
	if stderrors.Is(ioErr, ErrValidation) {
		t.Error("IO error should not match ErrValidation sentinel")
	}
	if IO(nil, "noop") != nil {
		t.Error("IO(nil) should be nil")
	}
	if !IsCode(IO(NotFound("session", "x"), "updating"), CodeNotFound) {
		t.Error("IO should not rewrap scheduling errors")
	}
	if IsCode(stderrors.New("plain"), CodeIO) {
		t.Error("plain errors carry no code")
	}
}

func TestFormatf(t *testing.T) {
	result := Formatf("failed to load %s", "database")
	if result != "Error: failed to load database" {
		t.Errorf("Formatf() = %q", result)
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(Conflict("slot taken", nil))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: slot taken") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: slot taken")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
