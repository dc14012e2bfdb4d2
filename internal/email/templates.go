// Package email provides email templates.
package email

import (
	"bytes"
	"fmt"
	"text/template"
)

// NotificationInfo carries the fields the notification templates render.
type NotificationInfo struct {
	RecipientName  string
	RecipientEmail string
	ProductName    string
	Amount         string
	RefundMethod   string
	RefundComplete bool
	ResetToken     string
	ResetURL       string
}

// EmailTemplate defines a named email template
type EmailTemplate struct {
	Name    string
	Subject string
	HTML    string
	Text    string
}

// Renderer provides methods to render email templates
type Renderer struct {
	templates *template.Template
}

// NewRenderer creates a new email template renderer with built-in templates
func NewRenderer() (*Renderer, error) {
	templates := map[string]EmailTemplate{
		"password_reset": {
			Name: "Password Reset",
			HTML: passwordResetHTML,
			Text: passwordResetText,
		},
		"refund_processed": {
			Name: "Refund Processed",
			HTML: refundProcessedHTML,
			Text: refundProcessedText,
		},
		"order_shipped": {
			Name: "Order Shipped",
			HTML: orderShippedHTML,
			Text: orderShippedText,
		},
	}

	tmpl := template.New("email")
	for key, t := range templates {
		if _, err := tmpl.New(key + "_html").Parse(t.HTML); err != nil {
			return nil, fmt.Errorf("failed to parse HTML template %s: %w", key, err)
		}
		if _, err := tmpl.New(key + "_text").Parse(t.Text); err != nil {
			return nil, fmt.Errorf("failed to parse text template %s: %w", key, err)
		}
	}

	return &Renderer{templates: tmpl}, nil
}

// Render renders an email template with the given data
func (r *Renderer) Render(templateName string, data *NotificationInfo) (*Email, error) {
	var htmlBuf, textBuf bytes.Buffer

	if err := r.templates.ExecuteTemplate(&htmlBuf, templateName+"_html", data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}
	if err := r.templates.ExecuteTemplate(&textBuf, templateName+"_text", data); err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}

	subject := ""
	switch templateName {
	case "password_reset":
		subject = "Reset your Craftline password"
	case "refund_processed":
		subject = fmt.Sprintf("Your refund for %s", data.ProductName)
		if data.ProductName == "" {
			subject = "Your refund has been processed"
		}
	case "order_shipped":
		subject = fmt.Sprintf("Your order has shipped - %s", data.ProductName)
	}

	return &Email{
		To:      data.RecipientEmail,
		Subject: subject,
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}

const passwordResetText = `Hi {{.RecipientName}},

We received a request to reset your Craftline password. Use the link below
within one hour to choose a new one:

{{.ResetURL}}

If you did not request this, you can ignore this email.
`

const passwordResetHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
    <h2 style="color: #333;">Reset your password</h2>
    <p>Hi {{.RecipientName}},</p>
    <p>We received a request to reset your Craftline password. The link below is valid for one hour.</p>
    <p><a href="{{.ResetURL}}" style="display: inline-block; padding: 10px 20px; background-color: #333; color: white; text-decoration: none; border-radius: 5px;">Choose a new password</a></p>
    <p>If you did not request this, you can ignore this email.</p>
  </div>
</body>
</html>`

const refundProcessedText = `Hi {{.RecipientName}},

Your return{{if .ProductName}} for {{.ProductName}}{{end}} has been approved.
{{if .RefundComplete}}A refund of {{.Amount}} has been added to your store credit.{{else}}A bank refund of {{.Amount}} is being processed and will arrive within a few business days.{{end}}

Thank you for shopping with Craftline.
`

const refundProcessedHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
    <h2 style="color: #333;">Refund approved</h2>
    <p>Hi {{.RecipientName}},</p>
    <p>Your return{{if .ProductName}} for <strong>{{.ProductName}}</strong>{{end}} has been approved.</p>
    {{if .RefundComplete}}<p>A refund of <strong>{{.Amount}}</strong> has been added to your store credit.</p>{{else}}<p>A bank refund of <strong>{{.Amount}}</strong> is being processed and will arrive within a few business days.</p>{{end}}
    <p>Thank you for shopping with Craftline.</p>
  </div>
</body>
</html>`

const orderShippedText = `Hi {{.RecipientName}},

Good news: {{.ProductName}} has shipped and is on its way to you.

Thank you for shopping with Craftline.
`

const orderShippedHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
    <h2 style="color: #333;">Your order has shipped</h2>
    <p>Hi {{.RecipientName}},</p>
    <p>Good news: <strong>{{.ProductName}}</strong> has shipped and is on its way to you.</p>
    <p>Thank you for shopping with Craftline.</p>
  </div>
</body>
</html>`
