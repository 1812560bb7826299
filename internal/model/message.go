package model

import "time"

// Message is a note from one user to another about an item.
type Message struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"itemId"`
	FromUserID int64     `json:"fromUserId"`
	ToUserID   int64     `json:"toUserId"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// InsertMessage is the payload accepted by Store.CreateMessage.
type InsertMessage struct {
	ItemID     int64  `json:"itemId"`
	FromUserID int64  `json:"fromUserId"`
	ToUserID   int64  `json:"toUserId"`
	Content    string `json:"content"`
}
