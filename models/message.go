package models

import "time"

// MessageType categorizes a chat message
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageSystem MessageType = "system"
	MessageGift   MessageType = "eldrun-gift"
	MessageHeart  MessageType = "heart"
	MessageRose   MessageType = "rose"
	MessageKiss   MessageType = "kiss"
	MessageImage  MessageType = "image"
	MessageVoice  MessageType = "voice"
	MessagePoll   MessageType = "poll"
)

// TombstoneContent replaces the content of soft-deleted messages
const TombstoneContent = "[message deleted]"

// AuthorSnapshot captures author display fields at send time so that old
// messages keep their historical appearance after renames or role changes
type AuthorSnapshot struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Role        UserRole `json:"role"`
	Badges      []string `json:"badges"`
}

// Reaction maps one emoji to the set of users who reacted with it
type Reaction struct {
	Emoji   string   `json:"emoji"`
	UserIDs []string `json:"user_ids"`
	Count   int      `json:"count"`
}

// ReplyRef points at the message being replied to, with a display snippet
type ReplyRef struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
}

// GiftPayload names the recipient and amount/kind of a gift message
type GiftPayload struct {
	ToUserID  string `json:"to_user_id"`
	ToName    string `json:"to_name"`
	Amount    int    `json:"amount,omitempty"`
	RoseColor string `json:"rose_color,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Message is an atomic post in a channel
type Message struct {
	ID          string         `json:"id"`
	ChannelID   string         `json:"channel_id"`
	Author      AuthorSnapshot `json:"author"`
	Content     string         `json:"content"`
	Type        MessageType    `json:"type"`
	Attachments []string       `json:"attachments"`
	Gift        *GiftPayload   `json:"gift,omitempty"`
	Reactions   []Reaction     `json:"reactions"`
	ReplyTo     *ReplyRef      `json:"reply_to,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	EditedAt    *time.Time     `json:"edited_at,omitempty"`
	IsDeleted   bool           `json:"is_deleted"`
	IsPinned    bool           `json:"is_pinned"`
	IsHighlight bool           `json:"is_highlight"`
}

// CreateMessageRequest is the request body for posting a message
type CreateMessageRequest struct {
	Content     string   `json:"content" binding:"required,min=1"`
	Type        string   `json:"type"`
	Attachments []string `json:"attachments"`
	ReplyToID   string   `json:"reply_to_id"`
}

// EditMessageRequest is the request body for editing a message
type EditMessageRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

// ReactionRequest is the request body for adding or removing a reaction
type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required,max=16"`
}
