package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestOperationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{
			name: "full error",
			err: &OperationError{
				Operation: "connect to catalog database",
				Component: "postgres",
				Resource:  "active_datasets_snapshot_v3",
				Cause:     fmt.Errorf("connection timeout"),
			},
			expected: "failed to connect to catalog database, component: postgres, resource: active_datasets_snapshot_v3, cause: connection timeout",
		},
		{
			name: "minimal error",
			err: &OperationError{
				Operation: "parse dashboard config",
				Cause:     fmt.Errorf("invalid json"),
			},
			expected: "failed to parse dashboard config, cause: invalid json",
		},
		{
			name: "no cause",
			err: &OperationError{
				Operation: "validate table",
				Component: "catalog",
			},
			expected: "failed to validate table, component: catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("OperationError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := &OperationError{Operation: "test", Cause: cause}

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("OperationError.Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := &OperationError{Operation: "test"}
	if unwrapped := errNoCause.Unwrap(); unwrapped != nil {
		t.Errorf("OperationError.Unwrap() with no cause = %v, want nil", unwrapped)
	}
}

func TestFailedTo(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		cause    error
		expected string
	}{
		{
			name:     "with cause",
			action:   "describe table",
			cause:    fmt.Errorf("connection refused"),
			expected: "failed to describe table: connection refused",
		},
		{
			name:     "without cause",
			action:   "start server",
			cause:    nil,
			expected: "failed to start server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FailedTo(tt.action, tt.cause)
			if err.Error() != tt.expected {
				t.Errorf("FailedTo() = %q, want %q", err.Error(), tt.expected)
			}
		})
	}
}

func TestFailedToWithDetails(t *testing.T) {
	cause := fmt.Errorf("timeout")
	err := FailedToWithDetails("query catalog", "catalog", "active_datasets_snapshot_v3", cause)

	opErr, ok := err.(*OperationError)
	if !ok {
		t.Fatalf("FailedToWithDetails() should return *OperationError, got %T", err)
	}

	if opErr.Operation != "query catalog" {
		t.Errorf("Operation = %q, want %q", opErr.Operation, "query catalog")
	}
	if opErr.Component != "catalog" {
		t.Errorf("Component = %q, want %q", opErr.Component, "catalog")
	}
	if opErr.Resource != "active_datasets_snapshot_v3" {
		t.Errorf("Resource = %q, want %q", opErr.Resource, "active_datasets_snapshot_v3")
	}
	if opErr.Cause != cause {
		t.Errorf("Cause = %v, want %v", opErr.Cause, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("FailedToWithDetails() error should unwrap to cause")
	}
}
