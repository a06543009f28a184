package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stream254/backend/internal/common"
	"github.com/stream254/backend/internal/server/config"
)

// MailSender delivers a single outbound email. Implementations must honor
// ctx cancellation and report failures as common.ErrDelivery.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ElasticEmailSender sends mail through the Elastic Email v2 HTTP API
// (form-encoded POST to /v2/email/send).
type ElasticEmailSender struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

// mailTimeout bounds the outbound delivery call so a slow mail provider
// cannot hold a request open indefinitely.
const mailTimeout = 10 * time.Second

func NewElasticEmailSender(cfg *config.Config) *ElasticEmailSender {
	return &ElasticEmailSender{
		endpoint: strings.TrimRight(cfg.MailEndpoint, "/"),
		apiKey:   cfg.MailAPIKey,
		from:     cfg.MailFrom,
		client:   &http.Client{Timeout: mailTimeout},
	}
}

// elasticResponse is the success envelope of the v2 API.
type elasticResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *ElasticEmailSender) Send(ctx context.Context, to, subject, body string) error {

	form := url.Values{}
	form.Set("from", s.from)
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("bodyText", body)
	form.Set("apiKey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint+"/v2/email/send", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", common.ErrDelivery, resp.StatusCode)
	}

	var parsed elasticResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("%w: decoding response: %v", common.ErrDelivery, err)
	}
	if !parsed.Success {
		return fmt.Errorf("%w: %s", common.ErrDelivery, parsed.Error)
	}

	return nil
}
