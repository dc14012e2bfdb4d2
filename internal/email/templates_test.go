package email

import (
	"strings"
	"testing"
)

func TestRendererRefundProcessed(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}

	msg, err := r.Render("refund_processed", &NotificationInfo{
		RecipientName:  "Ada",
		RecipientEmail: "ada@example.com",
		ProductName:    "walnut serving board",
		Amount:         "79.50",
		RefundComplete: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if msg.To != "ada@example.com" {
		t.Errorf("to = %q", msg.To)
	}
	if !strings.Contains(msg.Text, "store credit") {
		t.Error("completed refund text should mention store credit")
	}
	if !strings.Contains(msg.HTML, "walnut serving board") {
		t.Error("HTML should include the product name")
	}
	if !strings.Contains(msg.Subject, "walnut serving board") {
		t.Errorf("subject = %q", msg.Subject)
	}
}

func TestRendererPendingBankRefund(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}

	msg, err := r.Render("refund_processed", &NotificationInfo{
		RecipientName:  "Ada",
		RecipientEmail: "ada@example.com",
		Amount:         "12.00",
		RefundComplete: false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg.Text, "bank refund") {
		t.Error("pending refund text should mention the bank transfer")
	}
	if msg.Subject != "Your refund has been processed" {
		t.Errorf("subject = %q", msg.Subject)
	}
}

func TestRendererPasswordReset(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}

	msg, err := r.Render("password_reset", &NotificationInfo{
		RecipientName:  "Ada",
		RecipientEmail: "ada@example.com",
		ResetURL:       "https://craftline.example.com/reset?token=abc",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg.Text, "https://craftline.example.com/reset?token=abc") {
		t.Error("reset URL missing from text body")
	}
}
