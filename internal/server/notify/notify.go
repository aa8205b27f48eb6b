// Package notify delivers out-of-band messages to account holders.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Payload is a rendered message.
type Payload struct {
	Subject string
	Body    string
}

// Notifier delivers a payload to a recipient address. A nil error means the
// message was handed off successfully.
type Notifier interface {
	Notify(ctx context.Context, recipient string, payload Payload) error
}

// ResetCodePayload renders the password reset message.
func ResetCodePayload(code string, ttl time.Duration) Payload {
	return Payload{
		Subject: "Password reset code",
		Body: fmt.Sprintf("Your password reset code is %s.\nIt expires in %d seconds.\n",
			code, int(ttl.Seconds())),
	}
}
