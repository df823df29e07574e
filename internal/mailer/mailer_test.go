package mailer

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"
)

func captureSend(t *testing.T, m *Mailer) **gomail.Message {
	t.Helper()
	var captured *gomail.Message
	m.sendFn = func(gm *gomail.Message) error {
		captured = gm
		return nil
	}
	return &captured
}

func TestSendComposesMessage(t *testing.T) {
	m := New(Config{
		Host: "smtp.example.org",
		Port: 587,
		From: "sender@example.org",
	})
	captured := captureSend(t, m)

	attachment := filepath.Join(t.TempDir(), "42.pdf")
	if err := os.WriteFile(attachment, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := m.Send(Message{
		To:             []string{"a@x.com", "b@y.com"},
		Subject:        "Your statement",
		Body:           "Hello,\n\nPlease find your statement attached.\n",
		AttachmentPath: attachment,
	})
	if err != nil {
		t.Fatalf("Send returned an error: %v", err)
	}

	gm := *captured
	if gm == nil {
		t.Fatal("sendFn was never called")
	}

	if got := gm.GetHeader("From"); !reflect.DeepEqual(got, []string{"sender@example.org"}) {
		t.Errorf("From = %v", got)
	}
	// All recipients in one To header, one message per record.
	if got := gm.GetHeader("To"); !reflect.DeepEqual(got, []string{"a@x.com", "b@y.com"}) {
		t.Errorf("To = %v", got)
	}
	if got := gm.GetHeader("Subject"); !reflect.DeepEqual(got, []string{"Your statement"}) {
		t.Errorf("Subject = %v", got)
	}
}

func TestSendNoRecipients(t *testing.T) {
	m := New(Config{From: "sender@example.org"})
	captureSend(t, m)

	if err := m.Send(Message{Subject: "x"}); err == nil {
		t.Error("expected error for empty recipient list")
	}
}

func TestSendWrapsTransportError(t *testing.T) {
	m := New(Config{From: "sender@example.org"})
	m.sendFn = func(*gomail.Message) error {
		return fmt.Errorf("535 authentication failed")
	}

	err := m.Send(Message{To: []string{"a@x.com"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "a@x.com") {
		t.Errorf("error should name the recipients, got: %v", err)
	}
	if !strings.Contains(err.Error(), "authentication failed") {
		t.Errorf("error should keep the transport detail, got: %v", err)
	}
}

func TestSendWithoutAttachment(t *testing.T) {
	m := New(Config{From: "sender@example.org"})
	captured := captureSend(t, m)

	if err := m.Send(Message{To: []string{"a@x.com"}, Body: "plain"}); err != nil {
		t.Fatalf("Send returned an error: %v", err)
	}
	if *captured == nil {
		t.Fatal("sendFn was never called")
	}
}
