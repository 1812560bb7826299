package model

import "time"

// User is a registered account. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// InsertUser is the payload accepted by Store.CreateUser.
type InsertUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8
