package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// MailerService sends transactional email through an HTTP mail relay.
type MailerService struct {
	apiURL string
	apiKey string
	from   string
}

// NewMailerService creates a new MailerService.
func NewMailerService(apiURL, apiKey, from string) *MailerService {
	return &MailerService{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
	}
}

type mailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Send posts a message to the relay.
func (s *MailerService) Send(to, subject, text string) error {
	if s.apiURL == "" {
		log.Println("[Mailer] Mail relay not configured")
		return nil
	}

	msg := mailMessage{
		From:    s.from,
		To:      to,
		Subject: subject,
		Text:    text,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("[Mailer] Failed to send mail: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Mailer] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("mail relay returned status %d", resp.StatusCode)
	}

	return nil
}

// SendOTP delivers a password-reset code to the given address.
func (s *MailerService) SendOTP(email, code string) error {
	text := fmt.Sprintf("Your password reset code is %s. It expires in 5 minutes.", code)
	return s.Send(email, "Your password reset code", text)
}
