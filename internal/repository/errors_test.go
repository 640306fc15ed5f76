package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestCheckID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		notFound bool
	}{
		{name: "uuid", id: "0b6f1f9c-3f4e-4c55-9a57-2f3a8e3c1d2e"},
		{name: "plain word", id: "abc", notFound: true},
		{name: "empty", id: "", notFound: true},
		{name: "path fragment", id: "../patient", notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkID("patient", tt.id)
			if tt.notFound != errors.Is(err, ErrNotFound) {
				t.Errorf("checkID(%q) error = %v, want not found %v", tt.id, err, tt.notFound)
			}
			if !tt.notFound && err != nil {
				t.Errorf("checkID(%q) unexpected error: %v", tt.id, err)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: true},
		{name: "wrapped unique violation", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), want: true},
		{name: "invalid text representation", err: &pq.Error{Code: "22P02"}},
		{name: "other error", err: errors.New("connection refused")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
