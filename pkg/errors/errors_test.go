package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsFetchFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrFetchFailed, true},
		{"wrapped once", fmt.Errorf("fetching agenda: %w", ErrFetchFailed), true},
		{"wrapped twice", fmt.Errorf("show: %w", fmt.Errorf("client: %w", ErrFetchFailed)), true},
		{"different error", ErrNotFound, false},
		{"nil error", nil, false},
		{"unrelated error", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFetchFailed(tt.err); got != tt.want {
				t.Errorf("IsFetchFailed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsStorageUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrStorageUnavailable, true},
		{"wrapped", fmt.Errorf("persist: %w", ErrStorageUnavailable), true},
		{"different error", ErrFetchFailed, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStorageUnavailable(tt.err); got != tt.want {
				t.Errorf("IsStorageUnavailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsBadTimezone(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrBadTimezone, true},
		{"wrapped", fmt.Errorf("resolving %q: %w", "Mars/Olympus", ErrBadTimezone), true},
		{"different error", ErrValidation, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBadTimezone(tt.err); got != tt.want {
				t.Errorf("IsBadTimezone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrNotFound, true},
		{"wrapped", fmt.Errorf("meeting 120: %w", ErrNotFound), true},
		{"different error", ErrFetchFailed, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrValidation, true},
		{"wrapped", fmt.Errorf("input: %w", ErrValidation), true},
		{"different error", ErrNotFound, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.want {
				t.Errorf("IsValidation() = %v, want %v", got, tt.want)
			}
		})
	}
}
