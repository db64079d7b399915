package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// Service sends transactional mail through Resend. A nil *Service disables
// sending, so callers can hold one unconditionally.
type Service struct {
	apiKey    string
	from      string
	client    *http.Client
	templates *template.Template
}

type payload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// SubscriptionActivatedData feeds the mail sent when an approved payment
// activates a subscription.
type SubscriptionActivatedData struct {
	Name      string
	PlanName  string
	Amount    float64
	PeriodEnd time.Time
}

func NewService(apiKey, from string) (*Service, error) {
	if apiKey == "" {
		return nil, nil
	}

	templates, err := template.New("emails").Parse(emailTemplates)
	if err != nil {
		return nil, fmt.Errorf("could not parse email templates: %w", err)
	}

	return &Service{
		apiKey:    apiKey,
		from:      from,
		client:    &http.Client{Timeout: 10 * time.Second},
		templates: templates,
	}, nil
}

// SendSubscriptionActivated mails the user after their payment is approved.
func (s *Service) SendSubscriptionActivated(to string, data SubscriptionActivatedData) error {
	if s == nil {
		return nil
	}
	return s.send(to, fmt.Sprintf("Sua assinatura %s está ativa", data.PlanName), "subscription_activated", data)
}

func (s *Service) send(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("could not render template %s: %w", templateName, err)
	}

	raw, err := json.Marshal(payload{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, resendEndpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email API returned %d: %s", resp.StatusCode, msg)
	}

	return nil
}
