package services

import (
	"context"
	"fmt"

	"github.com/craftline/craftline/internal/email"
)

// Notifier renders and delivers transactional emails. With no provider
// configured every send is a silent no-op, so local setups work without
// an email account.
type Notifier struct {
	provider email.Provider
	renderer *email.Renderer
}

func NewNotifier(provider email.Provider) (*Notifier, error) {
	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to build email renderer: %w", err)
	}
	return &Notifier{provider: provider, renderer: renderer}, nil
}

func (n *Notifier) SendRefundProcessed(ctx context.Context, to, name string, input RefundProcessedEmailInput) error {
	return n.send(ctx, "refund_processed", &email.NotificationInfo{
		RecipientName:  name,
		RecipientEmail: to,
		ProductName:    input.ProductName,
		Amount:         input.Amount.StringFixed(2),
		RefundMethod:   string(input.Method),
		RefundComplete: input.Completed,
	})
}

func (n *Notifier) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	return n.send(ctx, "password_reset", &email.NotificationInfo{
		RecipientName:  name,
		RecipientEmail: to,
		ResetURL:       resetURL,
	})
}

func (n *Notifier) SendOrderShipped(ctx context.Context, to, name, productName string) error {
	return n.send(ctx, "order_shipped", &email.NotificationInfo{
		RecipientName:  name,
		RecipientEmail: to,
		ProductName:    productName,
	})
}

func (n *Notifier) send(ctx context.Context, template string, info *email.NotificationInfo) error {
	if n.provider == nil {
		return nil
	}
	msg, err := n.renderer.Render(template, info)
	if err != nil {
		return err
	}
	return n.provider.SendEmail(ctx, msg)
}
