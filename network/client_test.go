package network

import (
	"errors"
	"testing"

	"github.com/automoto/blaster-mp/session"
	"github.com/automoto/blaster-mp/shared/messages"
)

func TestSendWithoutConnection(t *testing.T) {
	c := NewClient(session.ClientOptions{Name: "alice"})

	if c.State() != StateDisconnected {
		t.Fatalf("state = %v, want disconnected", c.State())
	}
	if err := c.SendMessage(messages.EquipRequest{}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("SendMessage error = %v, want ErrNotConnected", err)
	}
	// Send only logs.
	c.Send(messages.FireRequest{})
	if c.LastError() != nil {
		t.Fatalf("LastError = %v, want nil", c.LastError())
	}
}

func TestSessionIsJoining(t *testing.T) {
	c := NewClient(session.ClientOptions{Name: "alice"})
	if c.Session() == nil {
		t.Fatal("no session")
	}
	if c.Session().State() != session.ClientJoining {
		t.Fatalf("session state = %v, want joining", c.Session().State())
	}
}

func TestTransformsFromEmptySnapshot(t *testing.T) {
	got := TransformsFromSnapshot(7, nil)
	if got.Tick != 7 {
		t.Errorf("tick = %d, want 7", got.Tick)
	}
	if len(got.Transforms) != 0 {
		t.Errorf("transforms = %v, want none", got.Transforms)
	}
}
