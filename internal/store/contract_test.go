package store

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
)

// clock hands out strictly increasing timestamps one minute apart.
type clock struct {
	mu  sync.Mutex
	cur time.Time
}

func newClock() *clock {
	return &clock{cur: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Minute)
	return c.cur
}

// setNow replaces the backend's time source.
func setNow(t *testing.T, s Store, now func() time.Time) {
	t.Helper()
	switch b := s.(type) {
	case *Memory:
		b.now = now
	case *SQLite:
		b.now = now
	case *Postgres:
		b.now = now
	default:
		t.Fatalf("unknown store %T", s)
	}
}

func sampleItem(name string) model.InsertItem {
	return model.InsertItem{
		UserID:       1,
		Name:         name,
		Type:         "electronics",
		Description:  "a " + name,
		Status:       model.ItemStatusLost,
		Date:         time.Date(2024, 4, 30, 18, 30, 0, 0, time.UTC),
		Location:     "Connaught Place, Delhi",
		ContactName:  "Asha",
		ContactEmail: "asha@example.com",
	}
}

func itemIDs(items []model.Item) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func messageIDs(msgs []model.Message) []int64 {
	ids := make([]int64, len(msgs))
	for i, msg := range msgs {
		ids[i] = msg.ID
	}
	return ids
}

// runContract exercises the Store contract against a backend.
func runContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	fresh := func(t *testing.T) Store {
		s := newStore(t)
		setNow(t, s, newClock().now)
		return s
	}

	t.Run("CreateAndGetUser", func(t *testing.T) {
		s := fresh(t)

		u, err := s.CreateUser(ctx, model.InsertUser{Username: "asha", Password: "hash", Email: "asha@example.com", Name: "Asha"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
		assert.False(t, u.CreatedAt.IsZero())

		got, err := s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "asha", got.Username)
		assert.Equal(t, "hash", got.Password)
		assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

		missing, err := s.GetUser(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("UserLookupsAreExact", func(t *testing.T) {
		s := fresh(t)

		_, err := s.CreateUser(ctx, model.InsertUser{Username: "Ravi", Email: "ravi@example.com"})
		require.NoError(t, err)

		u, err := s.GetUserByUsername(ctx, "Ravi")
		require.NoError(t, err)
		require.NotNil(t, u)

		u, err = s.GetUserByUsername(ctx, "ravi")
		require.NoError(t, err)
		assert.Nil(t, u)

		u, err = s.GetUserByEmail(ctx, "ravi@example.com")
		require.NoError(t, err)
		require.NotNil(t, u)

		u, err = s.GetUserByEmail(ctx, "RAVI@example.com")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("DuplicateEmailReturnsFirstUser", func(t *testing.T) {
		s := fresh(t)

		first, err := s.CreateUser(ctx, model.InsertUser{Username: "a", Email: "same@example.com"})
		require.NoError(t, err)
		_, err = s.CreateUser(ctx, model.InsertUser{Username: "b", Email: "same@example.com"})
		require.NoError(t, err)

		u, err := s.GetUserByEmail(ctx, "same@example.com")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, first.ID, u.ID)
	})

	t.Run("CreateItemDefaults", func(t *testing.T) {
		s := fresh(t)

		created, err := s.CreateItem(ctx, sampleItem("phone"))
		require.NoError(t, err)

		got, err := s.GetItem(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(0), got.Views)
		assert.Nil(t, got.Images)
		assert.Nil(t, got.LocationDetails)
		assert.Nil(t, got.Coordinates)
		assert.Equal(t, "phone", got.Name)
		assert.True(t, sampleItem("phone").Date.Equal(got.Date))
	})

	t.Run("CreateItemKeepsOptionalFields", func(t *testing.T) {
		s := fresh(t)

		details := "under the bench"
		in := sampleItem("wallet")
		in.LocationDetails = &details
		in.Coordinates = &model.Coordinates{Lat: 28.6315, Lng: 77.2167}
		in.Images = []string{"/uploads/a.jpg", "/uploads/b.jpg"}

		created, err := s.CreateItem(ctx, in)
		require.NoError(t, err)

		got, err := s.GetItem(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LocationDetails)
		assert.Equal(t, details, *got.LocationDetails)
		assert.Equal(t, &model.Coordinates{Lat: 28.6315, Lng: 77.2167}, got.Coordinates)
		assert.Equal(t, []string{"/uploads/a.jpg", "/uploads/b.jpg"}, got.Images)
	})

	t.Run("SnapshotsAreIndependent", func(t *testing.T) {
		s := fresh(t)

		in := sampleItem("keys")
		in.Images = []string{"/uploads/k.jpg"}
		created, err := s.CreateItem(ctx, in)
		require.NoError(t, err)

		in.Images[0] = "mutated"
		created.Images[0] = "mutated"
		created.Views = 42

		got, err := s.GetItem(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"/uploads/k.jpg"}, got.Images)
		assert.Equal(t, int64(0), got.Views)
	})

	t.Run("IDsIncreaseAndAreNeverReused", func(t *testing.T) {
		s := fresh(t)

		a, err := s.CreateItem(ctx, sampleItem("a"))
		require.NoError(t, err)
		b, err := s.CreateItem(ctx, sampleItem("b"))
		require.NoError(t, err)
		assert.Greater(t, b.ID, a.ID)

		ok, err := s.DeleteItem(ctx, b.ID)
		require.NoError(t, err)
		require.True(t, ok)

		c, err := s.CreateItem(ctx, sampleItem("c"))
		require.NoError(t, err)
		assert.Greater(t, c.ID, b.ID)

		m1, err := s.CreateMessage(ctx, model.InsertMessage{ItemID: a.ID, FromUserID: 1, ToUserID: 2, Content: "hi"})
		require.NoError(t, err)
		m2, err := s.CreateMessage(ctx, model.InsertMessage{ItemID: a.ID, FromUserID: 2, ToUserID: 1, Content: "hello"})
		require.NoError(t, err)
		assert.Greater(t, m2.ID, m1.ID)
	})

	t.Run("IncrementItemViews", func(t *testing.T) {
		s := fresh(t)

		item, err := s.CreateItem(ctx, sampleItem("bag"))
		require.NoError(t, err)

		for range 5 {
			require.NoError(t, s.IncrementItemViews(ctx, item.ID))
		}
		require.NoError(t, s.IncrementItemViews(ctx, 999))

		got, err := s.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Views)
	})

	t.Run("UpdateItemMerges", func(t *testing.T) {
		s := fresh(t)

		in := sampleItem("A")
		in.Location = "X"
		in.Images = []string{"/uploads/1.jpg"}
		item, err := s.CreateItem(ctx, in)
		require.NoError(t, err)
		require.NoError(t, s.IncrementItemViews(ctx, item.ID))

		y := "Y"
		updated, err := s.UpdateItem(ctx, item.ID, model.ItemPatch{Location: &y})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "A", updated.Name)
		assert.Equal(t, "Y", updated.Location)
		assert.Equal(t, []string{"/uploads/1.jpg"}, updated.Images)
		assert.Equal(t, int64(1), updated.Views)
		assert.True(t, item.CreatedAt.Equal(updated.CreatedAt))

		got, err := s.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Y", got.Location)
		assert.Equal(t, "A", got.Name)
	})

	t.Run("UpdateItemNullableFields", func(t *testing.T) {
		s := fresh(t)

		item, err := s.CreateItem(ctx, sampleItem("umbrella"))
		require.NoError(t, err)

		updated, err := s.UpdateItem(ctx, item.ID, model.ItemPatch{
			LocationDetails: model.Some("platform 2"),
			Coordinates:     model.Some(model.Coordinates{Lat: 1.5, Lng: -2.5}),
			Images:          model.Some([]string{"/uploads/u.jpg"}),
		})
		require.NoError(t, err)
		require.NotNil(t, updated.LocationDetails)
		assert.Equal(t, "platform 2", *updated.LocationDetails)

		updated, err = s.UpdateItem(ctx, item.ID, model.ItemPatch{LocationDetails: model.Null[string]()})
		require.NoError(t, err)
		assert.Nil(t, updated.LocationDetails)
		assert.Equal(t, &model.Coordinates{Lat: 1.5, Lng: -2.5}, updated.Coordinates)
		assert.Equal(t, []string{"/uploads/u.jpg"}, updated.Images)
	})

	t.Run("UpdateMissingItem", func(t *testing.T) {
		s := fresh(t)

		name := "x"
		got, err := s.UpdateItem(ctx, 42, model.ItemPatch{Name: &name})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("DeleteItem", func(t *testing.T) {
		s := fresh(t)

		item, err := s.CreateItem(ctx, sampleItem("card"))
		require.NoError(t, err)

		ok, err := s.DeleteItem(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.DeleteItem(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := s.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetItemsFiltersAndSorts", func(t *testing.T) {
		s := fresh(t)

		var ids []int64
		for i, status := range []string{"lost", "found", "lost", "found", "lost"} {
			in := sampleItem(fmt.Sprintf("item-%d", i))
			in.Status = status
			in.UserID = int64(i%2 + 1)
			if i == 3 {
				in.Type = "documents"
			}
			item, err := s.CreateItem(ctx, in)
			require.NoError(t, err)
			ids = append(ids, item.ID)
		}

		lost, err := s.GetItems(ctx, &model.ItemFilter{Status: "lost"})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[4], ids[2], ids[0]}, itemIDs(lost))

		docs, err := s.GetItems(ctx, &model.ItemFilter{Type: "documents"})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[3]}, itemIDs(docs))

		byUser, err := s.GetItems(ctx, &model.ItemFilter{UserID: 2})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[3], ids[1]}, itemIDs(byUser))

		combined, err := s.GetItems(ctx, &model.ItemFilter{Status: "found", UserID: 2})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[3], ids[1]}, itemIDs(combined))

		all, err := s.GetItems(ctx, nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, ids, itemIDs(all))

		none, err := s.GetItems(ctx, &model.ItemFilter{Status: "stolen"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("GetItemsPaginates", func(t *testing.T) {
		s := fresh(t)

		var ids []int64
		for i := range 5 {
			item, err := s.CreateItem(ctx, sampleItem(fmt.Sprintf("p%d", i)))
			require.NoError(t, err)
			ids = append(ids, item.ID)
		}

		page, err := s.GetItems(ctx, &model.ItemFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[3], ids[2]}, itemIDs(page))

		first, err := s.GetItems(ctx, &model.ItemFilter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[4], ids[3]}, itemIDs(first))

		tail, err := s.GetItems(ctx, &model.ItemFilter{Limit: 10, Offset: 3})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[1], ids[0]}, itemIDs(tail))

		beyond, err := s.GetItems(ctx, &model.ItemFilter{Limit: 2, Offset: 50})
		require.NoError(t, err)
		assert.Empty(t, beyond)

		huge, err := s.GetItems(ctx, &model.ItemFilter{Limit: math.MaxInt, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[3], ids[2], ids[1], ids[0]}, itemIDs(huge))

		unlimited, err := s.GetItems(ctx, &model.ItemFilter{Offset: 3})
		require.NoError(t, err)
		assert.Len(t, unlimited, 5)
	})

	t.Run("GetItemsOrdersByCreatedAtNotID", func(t *testing.T) {
		s := fresh(t)

		// Hand out timestamps that run backwards so id order and recency disagree.
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		var mu sync.Mutex
		step := 0
		setNow(t, s, func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			step++
			return base.Add(-time.Duration(step) * time.Hour)
		})

		a, err := s.CreateItem(ctx, sampleItem("older-id"))
		require.NoError(t, err)
		b, err := s.CreateItem(ctx, sampleItem("newer-id"))
		require.NoError(t, err)

		items, err := s.GetItems(ctx, &model.ItemFilter{})
		require.NoError(t, err)
		assert.Equal(t, []int64{a.ID, b.ID}, itemIDs(items))
	})

	t.Run("SearchItems", func(t *testing.T) {
		s := fresh(t)

		bag := sampleItem("Blue bag")
		bag.Description = "Backpack with laptop"
		bag.Location = "New Delhi Railway Station"
		bagItem, err := s.CreateItem(ctx, bag)
		require.NoError(t, err)

		cat := sampleItem("Cat")
		cat.Type = "pets"
		cat.Status = model.ItemStatusFound
		cat.Description = "Grey kitten"
		cat.Location = "Mumbai"
		cat.Date = time.Date(2024, 4, 29, 23, 59, 0, 0, time.UTC)
		catItem, err := s.CreateItem(ctx, cat)
		require.NoError(t, err)

		empty := sampleItem("Untitled")
		empty.Description = ""
		empty.Location = "delhi cantonment"
		emptyItem, err := s.CreateItem(ctx, empty)
		require.NoError(t, err)

		got, err := s.SearchItems(ctx, "backpack", nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{bagItem.ID}, itemIDs(got))

		got, err = s.SearchItems(ctx, "MUMBAI", nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{catItem.ID}, itemIDs(got))

		got, err = s.SearchItems(ctx, "", &model.SearchFilter{Location: "delhi"})
		require.NoError(t, err)
		assert.Equal(t, []int64{emptyItem.ID, bagItem.ID}, itemIDs(got))

		got, err = s.SearchItems(ctx, "", nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{emptyItem.ID, catItem.ID, bagItem.ID}, itemIDs(got))

		got, err = s.SearchItems(ctx, "", &model.SearchFilter{Status: model.ItemStatusFound, Type: "pets"})
		require.NoError(t, err)
		assert.Equal(t, []int64{catItem.ID}, itemIDs(got))

		day := time.Date(2024, 4, 29, 8, 0, 0, 0, time.UTC)
		got, err = s.SearchItems(ctx, "", &model.SearchFilter{Date: &day})
		require.NoError(t, err)
		assert.Equal(t, []int64{catItem.ID}, itemIDs(got))

		got, err = s.SearchItems(ctx, "kitten", &model.SearchFilter{Location: "delhi"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Messages", func(t *testing.T) {
		s := fresh(t)

		m1, err := s.CreateMessage(ctx, model.InsertMessage{ItemID: 1, FromUserID: 1, ToUserID: 2, Content: "is this yours?"})
		require.NoError(t, err)
		assert.False(t, m1.Read)
		m2, err := s.CreateMessage(ctx, model.InsertMessage{ItemID: 1, FromUserID: 2, ToUserID: 1, Content: "yes!"})
		require.NoError(t, err)
		m3, err := s.CreateMessage(ctx, model.InsertMessage{ItemID: 2, FromUserID: 3, ToUserID: 2, Content: "found your keys"})
		require.NoError(t, err)

		forUser1, err := s.GetMessages(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{m2.ID, m1.ID}, messageIDs(forUser1))

		forUser2, err := s.GetMessages(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{m3.ID, m2.ID, m1.ID}, messageIDs(forUser2))

		byItem, err := s.GetMessagesByItem(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{m3.ID}, messageIDs(byItem))

		nobody, err := s.GetMessages(ctx, 77)
		require.NoError(t, err)
		assert.NotNil(t, nobody)
		assert.Empty(t, nobody)

		got, err := s.GetMessage(ctx, m1.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "is this yours?", got.Content)

		missing, err := s.GetMessage(ctx, 500)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("MarkMessageAsRead", func(t *testing.T) {
		s := fresh(t)

		msg, err := s.CreateMessage(ctx, model.InsertMessage{ItemID: 1, FromUserID: 1, ToUserID: 2, Content: "ping"})
		require.NoError(t, err)

		ok, err := s.MarkMessageAsRead(ctx, msg.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.MarkMessageAsRead(ctx, msg.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := s.GetMessage(ctx, msg.ID)
		require.NoError(t, err)
		assert.True(t, got.Read)

		ok, err = s.MarkMessageAsRead(ctx, 999)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Count", func(t *testing.T) {
		s := fresh(t)

		c, err := s.Count(ctx)
		require.NoError(t, err)
		assert.True(t, c.Empty())

		_, err = s.CreateUser(ctx, model.InsertUser{Username: "u"})
		require.NoError(t, err)
		_, err = s.CreateItem(ctx, sampleItem("i"))
		require.NoError(t, err)
		_, err = s.CreateMessage(ctx, model.InsertMessage{ItemID: 1, FromUserID: 1, ToUserID: 1})
		require.NoError(t, err)

		c, err = s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, Counts{Users: 1, Items: 1, Messages: 1}, c)
		assert.False(t, c.Empty())
	})
}
