// Package sms sends text messages to patients through Twilio.
package sms

import (
	"context"
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrNoRecipient is returned for an empty destination number.
var ErrNoRecipient = errors.New("sms: recipient phone number is empty")

// Sender delivers a text message and returns the provider message ID.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
	Enabled() bool
}

// Config holds Twilio credentials
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

type twilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender creates a Twilio-backed sender.
func NewTwilioSender(cfg Config) Sender {
	return &twilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from: cfg.FromNumber,
	}
}

func (s *twilioSender) Enabled() bool { return true }

func (s *twilioSender) Send(ctx context.Context, to, body string) (string, error) {
	to = NormalizePHNumber(to)
	if to == "" {
		return "", ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

type nullSender struct{}

// NewNullSender creates a sender that drops every message.
func NewNullSender() Sender { return nullSender{} }

func (nullSender) Enabled() bool { return false }

func (nullSender) Send(ctx context.Context, to, body string) (string, error) { return "", nil }

// NormalizePHNumber converts local Philippine mobile numbers (09xx...) to E.164.
// Numbers already starting with + are returned unchanged.
func NormalizePHNumber(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if (r >= '0' && r <= '9') || (r == '+' && b.Len() == 0) {
			b.WriteRune(r)
		}
	}
	n := b.String()
	switch {
	case n == "":
		return ""
	case strings.HasPrefix(n, "+"):
		return n
	case strings.HasPrefix(n, "63"):
		return "+" + n
	case strings.HasPrefix(n, "0"):
		return "+63" + n[1:]
	}
	return n
}
