// Package gateway wraps the payment provider behind a small interface so
// controllers and tests never touch the SDK directly.
package gateway

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by every call when no access token was
// provided at startup.
var ErrNotConfigured = errors.New("payment gateway not configured")

type PreferenceRequest struct {
	ItemID            string
	Title             string
	Description       string
	UnitPrice         float64
	PayerName         string
	PayerEmail        string
	ExternalReference string
	NotificationURL   string
}

// Preference is a gateway-hosted checkout page. InitPoint is the live
// redirect link, SandboxInitPoint its test-mode counterpart.
type Preference struct {
	ID               string
	InitPoint        string
	SandboxInitPoint string
}

type PIXRequest struct {
	Amount            float64
	Description       string
	PayerEmail        string
	PayerFirstName    string
	PayerLastName     string
	ExternalReference string
}

type Charge struct {
	ID           string
	Status       string
	QRCode       string
	QRCodeBase64 string
	TicketURL    string
}

// Payment is the provider's view of a processed payment, fetched when a
// webhook notification arrives.
type Payment struct {
	ID                string
	Status            string
	ExternalReference string
	Amount            float64
}

type Gateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	CreatePIXCharge(ctx context.Context, req PIXRequest) (*Charge, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}
