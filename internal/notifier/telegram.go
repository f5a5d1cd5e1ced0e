package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TimeSeriesML/internal/logger"
)

const (
	telegramAPI        = "https://api.telegram.org"
	defaultBaseBackoff = time.Second
	maxBackoff         = 30 * time.Second
)

// TelegramNotifier delivers run reports and command replies through the
// Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client
	Log      *logger.Logger
	// BaseBackoff is the first retry delay; it doubles per attempt up to 30s.
	BaseBackoff time.Duration
}

// NewTelegramNotifier returns a notifier for chatID, routed through proxyURL
// when one is given.
func NewTelegramNotifier(botToken, chatID, proxyURL string, log *logger.Logger) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TelegramNotifier{
		BotToken:    botToken,
		ChatID:      chatID,
		APIBase:     telegramAPI,
		Client:      &http.Client{Timeout: 30 * time.Second, Transport: transport},
		Log:         log,
		BaseBackoff: defaultBaseBackoff,
	}
}

// APIError is a non-OK answer from the Bot API.
type APIError struct {
	Status      int
	Description string
	// RetryAfter is the flood-control wait the API asked for, if any.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api: status %d: %s", e.Status, e.Description)
}

// Retryable reports whether resending the same message can succeed.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Description: strings.TrimSpace(string(body))}
	var reply struct {
		Description string `json:"description"`
		Parameters  struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if json.Unmarshal(body, &reply) == nil {
		if reply.Description != "" {
			apiErr.Description = reply.Description
		}
		apiErr.RetryAfter = time.Duration(reply.Parameters.RetryAfter) * time.Second
	}
	return apiErr
}

type runIDsKey struct{}

// WithRunIDs tags ctx with the recorder runs a message reports on, so
// delivery logs can be joined with the run history.
func WithRunIDs(ctx context.Context, ids ...string) context.Context {
	return context.WithValue(ctx, runIDsKey{}, ids)
}

// RunIDs returns the run IDs attached by WithRunIDs.
func RunIDs(ctx context.Context) []string {
	ids, _ := ctx.Value(runIDsKey{}).([]string)
	return ids
}

func (t *TelegramNotifier) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, method)
}

// Send posts text to the configured chat once.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return parseAPIError(resp.StatusCode, respBody)
}

// SendWithRetry sends text, retrying transport failures, flood control and
// server errors up to maxRetries times. Other API rejections are returned
// at once. The wait doubles from BaseBackoff, or follows the API's
// retry_after when that is longer.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	log := t.Log
	if ids := RunIDs(ctx); len(ids) > 0 {
		log = log.With(logger.Strings("run_ids", ids))
	}
	delay := t.BaseBackoff
	if delay <= 0 {
		delay = defaultBaseBackoff
	}

	for attempt := 1; ; attempt++ {
		err := t.Send(ctx, text)
		if err == nil {
			if attempt > 1 {
				log.Info("telegram message delivered", logger.Int("attempt", attempt))
			}
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			log.Error("telegram rejected message", logger.Int("status", apiErr.Status), logger.Error(err))
			return err
		}
		if attempt > maxRetries {
			return fmt.Errorf("all %d retries exhausted: %w", attempt, err)
		}

		wait := delay
		if apiErr != nil && apiErr.RetryAfter > wait {
			wait = apiErr.RetryAfter
		}
		log.Warn("telegram send failed, retrying",
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", maxRetries+1),
			logger.Duration("wait_ms", wait),
			logger.Error(err),
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if delay *= 2; delay > maxBackoff {
			delay = maxBackoff
		}
	}
}
