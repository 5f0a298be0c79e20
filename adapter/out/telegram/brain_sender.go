// Package telegram implements the outbound Telegram Bot API client.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"brain_server/pkg/apperr"
	"brain_server/pkg/httputil"
	"brain_server/pkg/logger"
)

const defaultAPIBase = "https://api.telegram.org"

// Sender sends replies back through the Telegram Bot API. It only needs
// sendMessage; updates arrive through the webhook handler.
type Sender struct {
	token   string
	apiBase string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
}

// NewSender creates a new Sender. A zero timeout falls back to the client
// pool default.
func NewSender(token, apiBase string, timeout time.Duration) *Sender {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}

	cfg := httputil.TelegramClientConfig()
	if timeout > 0 {
		cfg.ResponseTimeout = timeout
	}

	cbSettings := gobreaker.Settings{
		Name:        "telegram-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[CircuitBreaker] %s: state changed from %s to %s", name, from.String(), to.String())
		},
	}

	return &Sender{
		token:   token,
		apiBase: apiBase,
		client:  httputil.NewOptimizedClient(cfg),
		cb:      gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// Enabled reports whether a bot token is configured.
func (s *Sender) Enabled() bool {
	return s.token != ""
}

// IsCircuitOpen returns true if the breaker is open (sends will fail fast).
func (s *Sender) IsCircuitOpen() bool {
	return s.cb.State() == gobreaker.StateOpen
}

type sendMessageRequest struct {
	ChatID           string `json:"chat_id"`
	Text             string `json:"text"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// nonCircuitError wraps errors that should not trip the circuit breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string {
	return e.err.Error()
}

// SendMessage sends a text reply to one chat.
func (s *Sender) SendMessage(ctx context.Context, chatID, text string) error {
	if !s.Enabled() {
		return apperr.Internal("telegram bot token not configured")
	}

	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.send(ctx, chatID, text)
	})

	if nce, ok := err.(*nonCircuitError); ok {
		return nce.err
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return apperr.ExternalError("telegram", err)
	}
	return err
}

func (s *Sender) send(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return &nonCircuitError{err: apperr.InternalWithError(err)}
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &nonCircuitError{err: apperr.InternalWithError(err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return apperr.ExternalError("telegram", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apperr.ExternalError("telegram", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return apperr.ExternalError("telegram", fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, raw))
	}
	if !apiResp.OK {
		apiErr := apperr.ExternalError("telegram", fmt.Errorf("api error %d: %s", apiResp.ErrorCode, apiResp.Description))
		// Client-side rejections (bad chat id, blocked bot) should not trip
		// the breaker; 429 and 5xx should.
		if apiResp.ErrorCode >= 400 && apiResp.ErrorCode < 429 {
			return &nonCircuitError{err: apiErr}
		}
		return apiErr
	}
	return nil
}
