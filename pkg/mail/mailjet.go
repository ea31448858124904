package mail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"tripagent/pkg/domain"
)

const sendPath = "/v3.1/send"

// Sender delivers recommendation emails through the Mailjet send API.
type Sender struct {
	http        *resty.Client
	apiKey      string
	apiSecret   string
	senderEmail string
	senderName  string
}

// NewSender builds a Mailjet sender. baseURL is empty in production and
// points at a test server in tests.
func NewSender(baseURL, apiKey, apiSecret, senderEmail, senderName string) *Sender {
	if baseURL == "" {
		baseURL = "https://api.mailjet.com"
	}
	if senderName == "" {
		senderName = "Travel Agent App"
	}
	return &Sender{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second),
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

type mailAddress struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type mailMessage struct {
	From     mailAddress   `json:"From"`
	To       []mailAddress `json:"To"`
	Subject  string        `json:"Subject"`
	TextPart string        `json:"TextPart"`
	HTMLPart string        `json:"HTMLPart"`
}

type sendRequest struct {
	Messages []mailMessage `json:"Messages"`
}

// SendRecommendation emails the recommendation to recipient, attributed to
// sharedBy.
func (s *Sender) SendRecommendation(ctx context.Context, recipient string, rec domain.Recommendation, sharedBy string) error {
	if s.apiKey == "" || s.apiSecret == "" {
		return fmt.Errorf("mailjet credentials not configured")
	}
	if sharedBy == "" {
		sharedBy = "Travel Enthusiast"
	}
	now := time.Now()
	payload := sendRequest{
		Messages: []mailMessage{
			{
				From:     mailAddress{Email: s.senderEmail, Name: s.senderName},
				To:       []mailAddress{{Email: recipient}},
				Subject:  fmt.Sprintf("🌍 Travel Recommendation from %s", sharedBy),
				TextPart: textPart(rec, sharedBy, now),
				HTMLPart: htmlPart(rec, sharedBy, now),
			},
		},
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetBasicAuth(s.apiKey, s.apiSecret).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(sendPath)
	if err != nil {
		return fmt.Errorf("mailjet send request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("mailjet send: status %d", resp.StatusCode())
	}
	return nil
}
