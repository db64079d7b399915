package gateway

import (
	"context"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

const currencyID = "BRL"

// The provider rejects PIX payers without a tax id; the checkout flow here
// never collects one, so a test CPF is sent, as the provider's sandbox
// documentation suggests.
const placeholderCPF = "12345678909"

// MercadoPago implements Gateway on top of the official SDK. A nil receiver
// or a MercadoPago built without a token reports ErrNotConfigured on every
// call, which lets main wire the same controller graph with or without
// credentials.
type MercadoPago struct {
	preferences preference.Client
	payments    payment.Client
}

// NewMercadoPago builds the gateway client. An empty access token yields a
// non-nil gateway whose calls all fail with ErrNotConfigured.
func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	if accessToken == "" {
		return &MercadoPago{}, nil
	}

	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, err
	}

	return &MercadoPago{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
	}, nil
}

// Configured reports whether credentials were supplied, surfaced on /health.
func (g *MercadoPago) Configured() bool {
	return g != nil && g.preferences != nil
}

func (g *MercadoPago) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	resp, err := g.preferences.Create(ctx, preference.Request{
		Items: []preference.ItemRequest{
			{
				ID:          req.ItemID,
				Title:       req.Title,
				Description: req.Description,
				UnitPrice:   req.UnitPrice,
				Quantity:    1,
				CurrencyID:  currencyID,
			},
		},
		Payer: &preference.PayerRequest{
			Name:  req.PayerName,
			Email: req.PayerEmail,
		},
		ExternalReference: req.ExternalReference,
		NotificationURL:   req.NotificationURL,
	})
	if err != nil {
		return nil, err
	}

	return &Preference{
		ID:               resp.ID,
		InitPoint:        resp.InitPoint,
		SandboxInitPoint: resp.SandboxInitPoint,
	}, nil
}

func (g *MercadoPago) CreatePIXCharge(ctx context.Context, req PIXRequest) (*Charge, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	resp, err := g.payments.Create(ctx, payment.Request{
		TransactionAmount: req.Amount,
		Description:       req.Description,
		PaymentMethodID:   "pix",
		Payer: &payment.PayerRequest{
			Email:     req.PayerEmail,
			FirstName: req.PayerFirstName,
			LastName:  req.PayerLastName,
			Identification: &payment.IdentificationRequest{
				Type:   "CPF",
				Number: placeholderCPF,
			},
		},
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		return nil, err
	}

	return &Charge{
		ID:           strconv.Itoa(resp.ID),
		Status:       resp.Status,
		QRCode:       resp.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: resp.PointOfInteraction.TransactionData.QRCodeBase64,
		TicketURL:    resp.PointOfInteraction.TransactionData.TicketURL,
	}, nil
}

func (g *MercadoPago) GetPayment(ctx context.Context, id string) (*Payment, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	paymentID, err := strconv.Atoi(id)
	if err != nil {
		return nil, err
	}

	resp, err := g.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	return &Payment{
		ID:                strconv.Itoa(resp.ID),
		Status:            resp.Status,
		ExternalReference: resp.ExternalReference,
		Amount:            resp.TransactionAmount,
	}, nil
}
