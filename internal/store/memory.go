package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
)

// Memory is an in-process Store. Each collection has its own lock so that id
// assignment is atomic per entity type.
type Memory struct {
	now func() time.Time

	usersMu    sync.RWMutex
	users      map[int64]model.User
	nextUserID int64

	itemsMu    sync.RWMutex
	items      map[int64]model.Item
	nextItemID int64

	messagesMu    sync.RWMutex
	messages      map[int64]model.Message
	nextMessageID int64
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		now:           func() time.Time { return time.Now().UTC() },
		users:         make(map[int64]model.User),
		nextUserID:    1,
		items:         make(map[int64]model.Item),
		nextItemID:    1,
		messages:      make(map[int64]model.Message),
		nextMessageID: 1,
	}
}

// GetUser returns a user by ID.
func (m *Memory) GetUser(_ context.Context, id int64) (*model.User, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetUserByUsername returns the first user with this username.
func (m *Memory) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return m.findUser(func(u *model.User) bool { return u.Username == username }), nil
}

// GetUserByEmail returns the first user with this email.
func (m *Memory) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return m.findUser(func(u *model.User) bool { return u.Email == email }), nil
}

// findUser scans users in id order.
func (m *Memory) findUser(match func(*model.User) bool) *model.User {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()

	var found *model.User
	for _, u := range m.users {
		if !match(&u) {
			continue
		}
		if found == nil || u.ID < found.ID {
			found = &u
		}
	}
	return found
}

// CreateUser stores a new user.
func (m *Memory) CreateUser(_ context.Context, in model.InsertUser) (*model.User, error) {
	m.usersMu.Lock()
	defer m.usersMu.Unlock()

	u := model.User{
		ID:        m.nextUserID,
		Username:  in.Username,
		Password:  in.Password,
		Email:     in.Email,
		Name:      in.Name,
		CreatedAt: m.now(),
	}
	m.nextUserID++
	m.users[u.ID] = u
	return &u, nil
}

// GetItem returns an item by ID.
func (m *Memory) GetItem(_ context.Context, id int64) (*model.Item, error) {
	m.itemsMu.RLock()
	defer m.itemsMu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	item = cloneItem(item)
	return &item, nil
}

// GetItems lists items, see Store.
func (m *Memory) GetItems(_ context.Context, filter *model.ItemFilter) ([]model.Item, error) {
	m.itemsMu.RLock()
	items := make([]model.Item, 0, len(m.items))
	for _, item := range m.items {
		if filter != nil && !matchesItemFilter(&item, filter) {
			continue
		}
		items = append(items, cloneItem(item))
	}
	m.itemsMu.RUnlock()

	if filter == nil {
		slices.SortFunc(items, func(a, b model.Item) int { return cmp.Compare(a.ID, b.ID) })
		return items, nil
	}

	sortItems(items)
	return paginate(items, filter.Limit, filter.Offset), nil
}

// CreateItem stores a new item.
func (m *Memory) CreateItem(_ context.Context, in model.InsertItem) (*model.Item, error) {
	m.itemsMu.Lock()
	defer m.itemsMu.Unlock()

	item := newItem(m.nextItemID, in, m.now())
	m.nextItemID++
	m.items[item.ID] = item

	out := cloneItem(item)
	return &out, nil
}

// UpdateItem merges patch onto an existing item.
func (m *Memory) UpdateItem(_ context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	m.itemsMu.Lock()
	defer m.itemsMu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(&item)
	item = cloneItem(item)
	m.items[id] = item

	out := cloneItem(item)
	return &out, nil
}

// DeleteItem removes an item.
func (m *Memory) DeleteItem(_ context.Context, id int64) (bool, error) {
	m.itemsMu.Lock()
	defer m.itemsMu.Unlock()

	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

// IncrementItemViews adds one view to an existing item.
func (m *Memory) IncrementItemViews(_ context.Context, id int64) error {
	m.itemsMu.Lock()
	defer m.itemsMu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil
	}
	item.Views++
	m.items[id] = item
	return nil
}

// SearchItems matches items against a text query and filter.
func (m *Memory) SearchItems(_ context.Context, query string, filter *model.SearchFilter) ([]model.Item, error) {
	m.itemsMu.RLock()
	items := make([]model.Item, 0)
	for _, item := range m.items {
		if matchesSearch(&item, query, filter) {
			items = append(items, cloneItem(item))
		}
	}
	m.itemsMu.RUnlock()

	sortItems(items)
	return items, nil
}

// GetMessage returns a message by ID.
func (m *Memory) GetMessage(_ context.Context, id int64) (*model.Message, error) {
	m.messagesMu.RLock()
	defer m.messagesMu.RUnlock()

	msg, ok := m.messages[id]
	if !ok {
		return nil, nil
	}
	return &msg, nil
}

// GetMessages returns a user's inbox and outbox.
func (m *Memory) GetMessages(_ context.Context, userID int64) ([]model.Message, error) {
	return m.filterMessages(func(msg *model.Message) bool {
		return msg.FromUserID == userID || msg.ToUserID == userID
	}), nil
}

// GetMessagesByItem returns the thread for an item.
func (m *Memory) GetMessagesByItem(_ context.Context, itemID int64) ([]model.Message, error) {
	return m.filterMessages(func(msg *model.Message) bool {
		return msg.ItemID == itemID
	}), nil
}

func (m *Memory) filterMessages(match func(*model.Message) bool) []model.Message {
	m.messagesMu.RLock()
	msgs := make([]model.Message, 0)
	for _, msg := range m.messages {
		if match(&msg) {
			msgs = append(msgs, msg)
		}
	}
	m.messagesMu.RUnlock()

	sortMessages(msgs)
	return msgs
}

// CreateMessage stores a new unread message.
func (m *Memory) CreateMessage(_ context.Context, in model.InsertMessage) (*model.Message, error) {
	m.messagesMu.Lock()
	defer m.messagesMu.Unlock()

	msg := model.Message{
		ID:         m.nextMessageID,
		ItemID:     in.ItemID,
		FromUserID: in.FromUserID,
		ToUserID:   in.ToUserID,
		Content:    in.Content,
		CreatedAt:  m.now(),
	}
	m.nextMessageID++
	m.messages[msg.ID] = msg
	return &msg, nil
}

// MarkMessageAsRead sets the read flag.
func (m *Memory) MarkMessageAsRead(_ context.Context, id int64) (bool, error) {
	m.messagesMu.Lock()
	defer m.messagesMu.Unlock()

	msg, ok := m.messages[id]
	if !ok {
		return false, nil
	}
	msg.Read = true
	m.messages[id] = msg
	return true, nil
}

// Count returns entity totals.
func (m *Memory) Count(_ context.Context) (Counts, error) {
	var c Counts

	m.usersMu.RLock()
	c.Users = int64(len(m.users))
	m.usersMu.RUnlock()

	m.itemsMu.RLock()
	c.Items = int64(len(m.items))
	m.itemsMu.RUnlock()

	m.messagesMu.RLock()
	c.Messages = int64(len(m.messages))
	m.messagesMu.RUnlock()

	return c, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
