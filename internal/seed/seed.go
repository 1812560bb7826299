// Package seed fills an empty store with demo accounts, listings and a
// message thread.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/auth"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/store"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "reunite-demo"

var demoUsers = []model.InsertUser{
	{Username: "maya", Email: "maya@example.com", Name: "Maya Patel"},
	{Username: "jonas", Email: "jonas@example.com", Name: "Jonas Weber"},
	{Username: "lea", Email: "lea@example.com", Name: "Lea Novak"},
}

func ptr[T any](v T) *T { return &v }

// demoItems are owned by demoUsers by index.
var demoItems = []struct {
	owner int
	item  model.InsertItem
}{
	{0, model.InsertItem{
		Name:            "Black leather wallet",
		Type:            "accessories",
		Description:     "Slim wallet with a student card and a bus pass.",
		Status:          model.ItemStatusLost,
		Date:            time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		Location:        "Central Library",
		LocationDetails: ptr("Reading room, second floor"),
		Coordinates:     &model.Coordinates{Lat: 46.0511, Lng: 14.5051},
	}},
	{1, model.InsertItem{
		Name:        "Silver house keys",
		Type:        "keys",
		Description: "Three keys on a red carabiner.",
		Status:      model.ItemStatusFound,
		Date:        time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC),
		Location:    "Tivoli Park",
	}},
	{2, model.InsertItem{
		Name:        "Blue backpack",
		Type:        "bags",
		Description: "Laptop backpack, left on the tram.",
		Status:      model.ItemStatusLost,
		Date:        time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC),
		Location:    "Tram line 6",
	}},
	{1, model.InsertItem{
		Name:        "Wireless earbuds",
		Type:        "electronics",
		Description: "White charging case, found near the entrance.",
		Status:      model.ItemStatusFound,
		Date:        time.Date(2024, 9, 5, 0, 0, 0, 0, time.UTC),
		Location:    "Central Library",
	}},
}

// Result reports what Seed created.
type Result struct {
	Users    int
	Items    int
	Messages int
}

// Seed populates s when it holds no users and no items. A non-empty store is
// left untouched and an empty Result is returned.
func Seed(ctx context.Context, s store.Store) (Result, error) {
	counts, err := s.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("counting entities: %w", err)
	}
	if !counts.Empty() {
		slog.Info("store already has data, skipping seed", "users", counts.Users, "items", counts.Items)
		return Result{}, nil
	}

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return Result{}, err
	}

	var res Result
	users := make([]*model.User, len(demoUsers))
	for i, in := range demoUsers {
		in.Password = hash
		u, err := s.CreateUser(ctx, in)
		if err != nil {
			return res, fmt.Errorf("creating user %s: %w", in.Username, err)
		}
		users[i] = u
		res.Users++
	}

	items := make([]*model.Item, len(demoItems))
	for i, d := range demoItems {
		owner := users[d.owner]
		in := d.item
		in.UserID = owner.ID
		in.ContactName = owner.Name
		in.ContactEmail = owner.Email
		item, err := s.CreateItem(ctx, in)
		if err != nil {
			return res, fmt.Errorf("creating item %q: %w", in.Name, err)
		}
		items[i] = item
		res.Items++
	}

	// A short exchange about the wallet and one about the backpack.
	thread := []model.InsertMessage{
		{ItemID: items[0].ID, FromUserID: users[1].ID, ToUserID: users[0].ID, Content: "Hi, is the wallet still missing? I saw one at the front desk."},
		{ItemID: items[0].ID, FromUserID: users[0].ID, ToUserID: users[1].ID, Content: "Yes! Could you describe it?"},
		{ItemID: items[2].ID, FromUserID: users[0].ID, ToUserID: users[2].ID, Content: "I think a backpack like that was handed to the driver."},
	}
	for _, in := range thread {
		if _, err := s.CreateMessage(ctx, in); err != nil {
			return res, fmt.Errorf("creating message: %w", err)
		}
		res.Messages++
	}

	slog.Info("store seeded", "users", res.Users, "items", res.Items, "messages", res.Messages)
	return res, nil
}
