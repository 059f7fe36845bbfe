//go:build !fyne

package ui

import (
	"strings"
	"testing"
)

func TestRunStubPointsAtUICommand(t *testing.T) {
	err := Run("invite.json")
	if err == nil {
		t.Fatal("expected error from Run() in non-fyne build, got nil")
	}
	msg := err.Error()
	if !strings.Contains(msg, "-tags fyne") || !strings.Contains(msg, "inviteeditor ui") {
		t.Fatalf("unexpected error message: %q", msg)
	}
}
