package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bandfinder/internal/config"
	"bandfinder/internal/services"
)

const userAgent = "BandFinder/0.1.0"

// CandidateInvite is the structured payload delivered to each matching
// musician when a band opens a request. RequestID is the correlation token
// the musician echoes back when accepting.
type CandidateInvite struct {
	RequestID     int64
	Instrument    string
	Genre         string
	Location      string
	Description   string
	MinExperience int
	CorrelationID string
}

// RequestFilled is the payload delivered to both sides once a claim
// succeeds.
type RequestFilled struct {
	RequestID  int64
	Instrument string
	Genre      string
	MusicianID int64
}

// Service defines the notification surface exposed to the matching
// coordinator. Delivery is best-effort: errors are returned for logging but
// must never be allowed to unwind request state.
type Service interface {
	NotifyCandidate(ctx context.Context, musicianID int64, invite CandidateInvite) error
	NotifyRequestFilled(ctx context.Context, bandID int64, filled RequestFilled) error
	NotifyAcceptanceConfirmed(ctx context.Context, musicianID int64, filled RequestFilled) error
	TestNotification(ctx context.Context, recipientID int64) error
}

// NewService builds a notification service backed by the Telegram Bot API
// when a bot token is configured. Otherwise a noop implementation is
// returned and the daemon runs without notifications.
func NewService(cfg *config.Config) Service {
	token := strings.TrimSpace(cfg.Telegram.BotToken)
	if token == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Telegram.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &telegramService{
		baseURL: strings.TrimRight(cfg.Telegram.BaseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type telegramService struct {
	baseURL string
	token   string
	client  *http.Client
}

func (t *telegramService) NotifyCandidate(ctx context.Context, musicianID int64, invite CandidateInvite) error {
	var b strings.Builder
	fmt.Fprintf(&b, "A band is looking for a musician\n")
	fmt.Fprintf(&b, "Request: #%d\n", invite.RequestID)
	fmt.Fprintf(&b, "Instrument: %s\n", invite.Instrument)
	fmt.Fprintf(&b, "Genre: %s\n", invite.Genre)
	if invite.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", invite.Location)
	}
	fmt.Fprintf(&b, "Minimum experience: %d years\n", invite.MinExperience)
	if invite.Description != "" {
		fmt.Fprintf(&b, "About the band: %s\n", invite.Description)
	}
	b.WriteString(fmt.Sprintf("Reply with /accept %d to respond.", invite.RequestID))
	return t.sendMessage(ctx, musicianID, b.String())
}

func (t *telegramService) NotifyRequestFilled(ctx context.Context, bandID int64, filled RequestFilled) error {
	text := fmt.Sprintf(
		"Musician found for request #%d (%s, %s). They have been sent your contact.",
		filled.RequestID, filled.Instrument, filled.Genre,
	)
	return t.sendMessage(ctx, bandID, text)
}

func (t *telegramService) NotifyAcceptanceConfirmed(ctx context.Context, musicianID int64, filled RequestFilled) error {
	text := fmt.Sprintf(
		"You accepted request #%d (%s). The band has been notified.",
		filled.RequestID, filled.Instrument,
	)
	return t.sendMessage(ctx, musicianID, text)
}

func (t *telegramService) TestNotification(ctx context.Context, recipientID int64) error {
	return t.sendMessage(ctx, recipientID, "BandFinder notification test")
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

func (t *telegramService) sendMessage(ctx context.Context, chatID int64, text string) error {
	if t == nil || t.client == nil {
		return nil
	}

	encoded, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return services.Wrap(services.ErrValidation, "telegram", "sendMessage", "encode payload", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "telegram", "sendMessage", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternal, "telegram", "sendMessage", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return services.Wrap(services.ErrExternal, "telegram", "sendMessage", detail, nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyCandidate(context.Context, int64, CandidateInvite) error { return nil }

func (noopService) NotifyRequestFilled(context.Context, int64, RequestFilled) error { return nil }

func (noopService) NotifyAcceptanceConfirmed(context.Context, int64, RequestFilled) error {
	return nil
}

func (noopService) TestNotification(context.Context, int64) error { return nil }
