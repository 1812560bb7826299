package validate

import (
	"strconv"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
)

// Register validates POST /api/auth/register.
var Register = MustCompile("register", `{
  "type": "object",
  "required": ["username", "password", "email", "name"],
  "properties": {
    "username": {"type": "string", "minLength": 3, "maxLength": 50},
    "password": {"type": "string", "minLength": `+strconv.Itoa(model.MinPasswordLength)+`, "maxLength": 200},
    "email":    {"type": "string", "format": "email"},
    "name":     {"type": "string", "minLength": 1, "maxLength": 100}
  }
}`)

// Login validates POST /api/auth/login.
var Login = MustCompile("login", `{
  "type": "object",
  "required": ["username", "password"],
  "properties": {
    "username": {"type": "string", "minLength": 1},
    "password": {"type": "string", "minLength": 1}
  }
}`)

const itemProperties = `{
    "name":            {"type": "string", "minLength": 1, "maxLength": 200},
    "type":            {"type": "string", "minLength": 1, "maxLength": 50},
    "description":     {"type": "string", "maxLength": 5000},
    "status":          {"type": "string", "enum": ["lost", "found"]},
    "date":            {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}"},
    "location":        {"type": "string", "minLength": 1, "maxLength": 300},
    "locationDetails": {"type": ["string", "null"], "maxLength": 1000},
    "coordinates": {
      "type": ["object", "null"],
      "required": ["lat", "lng"],
      "properties": {
        "lat": {"type": "number", "minimum": -90, "maximum": 90},
        "lng": {"type": "number", "minimum": -180, "maximum": 180}
      }
    },
    "images":       {"type": ["array", "null"], "items": {"type": "string"}},
    "contactName":  {"type": "string", "minLength": 1, "maxLength": 100},
    "contactEmail": {"type": "string", "format": "email"}
  }`

// CreateItem validates POST /api/items.
var CreateItem = MustCompile("create item", `{
  "type": "object",
  "required": ["name", "type", "description", "status", "date", "location"],
  "properties": `+itemProperties+`
}`)

// UpdateItem validates PATCH /api/items/{id}. Every field is optional.
var UpdateItem = MustCompile("update item", `{
  "type": "object",
  "properties": `+itemProperties+`
}`)

// CreateMessage validates POST /api/messages.
var CreateMessage = MustCompile("create message", `{
  "type": "object",
  "required": ["itemId", "toUserId", "content"],
  "properties": {
    "itemId":   {"type": "integer", "minimum": 1},
    "toUserId": {"type": "integer", "minimum": 1},
    "content":  {"type": "string", "minLength": 1, "maxLength": 2000}
  }
}`)
