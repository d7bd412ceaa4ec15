package remoteapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Channel is the wire shape of a channel as served by the chat backend
type Channel struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	IsLocked     bool   `json:"isLocked"`
	MemberCount  int    `json:"memberCount"`
	SlowMode     int    `json:"slowMode"`
	MessageCount int    `json:"messageCount"`
}

// Author is the wire shape of a message author snapshot
type Author struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Role        string `json:"role"`
}

// ReplyTo is the wire shape of a reply reference
type ReplyTo struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Message is the wire shape of a message as served by the chat backend
type Message struct {
	ID          string              `json:"id"`
	ChannelID   string              `json:"channelId"`
	AuthorID    string              `json:"authorId"`
	Author      Author              `json:"author"`
	Content     string              `json:"content"`
	Type        string              `json:"type"`
	Attachments []string            `json:"attachments"`
	Reactions   map[string][]string `json:"reactions"`
	ReplyTo     *ReplyTo            `json:"replyTo"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   *time.Time          `json:"updatedAt"`
	IsEdited    bool                `json:"isEdited"`
	IsDeleted   bool                `json:"isDeleted"`
	IsPinned    bool                `json:"isPinned"`
}

// CreateMessageRequest is the outbound message creation payload
type CreateMessageRequest struct {
	ChannelID   string   `json:"channelId"`
	Content     string   `json:"content"`
	Type        string   `json:"type"`
	Attachments []string `json:"attachments"`
	ReplyToID   string   `json:"replyToId,omitempty"`
}

// Client talks to the authoritative chat service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ListChannels fetches the canonical channel list
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/channels", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build channels request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channels: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("channels request returned status %d", resp.StatusCode)
	}

	var channels []Channel
	if err := json.NewDecoder(resp.Body).Decode(&channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels response: %w", err)
	}
	return channels, nil
}

// ListMessages fetches the latest page of messages for a channel, oldest
// first. The server guarantees creation-time order; callers must not re-sort.
func (c *Client) ListMessages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	u := fmt.Sprintf("%s/channels/%s/messages?limit=%s",
		c.baseURL, url.PathEscape(channelID), strconv.Itoa(limit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build messages request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("messages request returned status %d", resp.StatusCode)
	}

	var messages []Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages response: %w", err)
	}
	return messages, nil
}

// CreateMessage posts a new message to the backend
func (c *Client) CreateMessage(ctx context.Context, msg CreateMessageRequest) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	u := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, url.PathEscape(msg.ChannelID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create message returned status %d", resp.StatusCode)
	}
	return nil
}
