package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/store"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/uploads"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/validate"
)

// maxMultipartMemory is how much of a multipart body is held in memory.
const maxMultipartMemory = 16 << 20

// ItemsHandler handles item listing, search and CRUD endpoints.
type ItemsHandler struct {
	Store   store.Store
	Uploads *uploads.Dir
}

// createItemRequest shadows the insert payload's date with the wire format.
type createItemRequest struct {
	model.InsertItem
	Date string `json:"date"`
}

type updateItemRequest struct {
	model.ItemPatch
	Date *string `json:"date"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseItemFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.Store.GetItems(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Search handles GET /api/items/search.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, filter, err := parseSearch(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.Store.SearchItems(r.Context(), query, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Mine handles GET /api/users/me/items.
func (h *ItemsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	items, err := h.Store.GetItems(r.Context(), &model.ItemFilter{UserID: user.ID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}. Every read counts as a view.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Store.IncrementItemViews(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Messages handles GET /api/items/{id}/messages. Callers only see the
// messages they sent or received.
func (h *ItemsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	msgs, err := h.Store.GetMessagesByItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := CurrentUser(r.Context())
	visible := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.FromUserID == user.ID || m.ToUserID == user.ID {
			visible = append(visible, m)
		}
	}
	jsonResponse(w, http.StatusOK, visible)
}

// Create handles POST /api/items. The body is JSON, or multipart/form-data
// with the JSON in a "data" field and photos under "images".
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	body, files, err := h.readItemRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate.CreateItem.Validate(body); err != nil {
		writeError(w, r, err)
		return
	}

	var req createItemRequest
	if err := decodeJSON(body, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in := req.InsertItem
	if err := h.checkImages(in.Images, nil); err != nil {
		writeError(w, r, err)
		return
	}
	in.UserID = user.ID
	in.Date = date
	if in.ContactName == "" {
		in.ContactName = user.Name
	}
	if in.ContactEmail == "" {
		in.ContactEmail = user.Email
	}

	saved, err := h.saveImages(files)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(saved) > 0 {
		in.Images = append(in.Images, saved...)
	}

	item, err := h.Store.CreateItem(r.Context(), in)
	if err != nil {
		h.discardImages(saved)
		writeError(w, r, err)
		return
	}

	slog.Info("item created", "id", item.ID, "status", item.Status, "user", user.Username)
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PATCH /api/items/{id}. Only the owner may edit; uploaded
// photos are appended to the item's images.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	existing, err := h.ownedItem(r, id, user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, files, err := h.readItemRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}
	if err := validate.UpdateItem.Validate(body); err != nil {
		writeError(w, r, err)
		return
	}

	var req updateItemRequest
	if err := decodeJSON(body, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch := req.ItemPatch
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.Date = &date
	}
	if patch.Images.Set {
		if err := h.checkImages(patch.Images.Value, existing.Images); err != nil {
			writeError(w, r, err)
			return
		}
	}

	saved, err := h.saveImages(files)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(saved) > 0 {
		base := existing.Images
		if patch.Images.Set {
			base = patch.Images.Value
		}
		patch.Images = model.Some(append(append([]string(nil), base...), saved...))
	}

	item, err := h.Store.UpdateItem(r.Context(), id, patch)
	if err != nil {
		h.discardImages(saved)
		writeError(w, r, err)
		return
	}
	if item == nil {
		h.discardImages(saved)
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	h.discardImages(dropped(existing.Images, item.Images))

	slog.Info("item updated", "id", item.ID, "user", user.Username)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	existing, err := h.ownedItem(r, id, user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	deleted, err := h.Store.DeleteItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	h.discardImages(existing.Images)

	slog.Info("item deleted", "id", id, "user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// ownedItem loads an item and checks that user may modify it.
func (h *ItemsHandler) ownedItem(r *http.Request, id int64, user *model.User) (*model.Item, error) {
	item, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errorf(http.StatusNotFound, "item not found")
	}
	if item.UserID != user.ID {
		return nil, errorf(http.StatusForbidden, "you can only modify your own items")
	}
	return item, nil
}

// checkImages rejects upload paths in submitted that the item does not
// already hold. Only the upload step may add files from the upload dir.
func (h *ItemsHandler) checkImages(submitted, held []string) error {
	if h.Uploads == nil {
		return nil
	}
	for _, u := range submitted {
		if h.Uploads.Owns(u) && !slices.Contains(held, u) {
			return errorf(http.StatusBadRequest, "image %s does not belong to this item", u)
		}
	}
	return nil
}

// dropped returns the entries of before missing from after.
func dropped(before, after []string) []string {
	var out []string
	for _, u := range before {
		if !slices.Contains(after, u) {
			out = append(out, u)
		}
	}
	return out
}

// readItemRequest returns the JSON document and any uploaded photos.
func (h *ItemsHandler) readItemRequest(w http.ResponseWriter, r *http.Request) ([]byte, []*multipart.FileHeader, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		body, err := readBody(w, r)
		return body, nil, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxFiles*uploads.MaxFileSize+maxBodySize)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, nil, errorf(http.StatusBadRequest, "invalid multipart form")
	}

	files := r.MultipartForm.File["images"]
	if len(files) > uploads.MaxFiles {
		return nil, nil, errorf(http.StatusBadRequest, "at most %d images per request", uploads.MaxFiles)
	}
	return []byte(r.FormValue("data")), files, nil
}

// saveImages stores uploaded photos and returns their URL paths. On failure
// nothing is left behind.
func (h *ItemsHandler) saveImages(files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if h.Uploads == nil {
		return nil, errorf(http.StatusBadRequest, "image uploads are disabled")
	}

	saved := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.saveImage(fh)
		if err != nil {
			h.discardImages(saved)
			if errors.Is(err, uploads.ErrUnsupportedImage) || errors.Is(err, uploads.ErrTooLarge) {
				return nil, errorf(http.StatusBadRequest, "%s: %v", fh.Filename, err)
			}
			return nil, err
		}
		saved = append(saved, url)
	}
	return saved, nil
}

func (h *ItemsHandler) saveImage(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.Uploads.Save(f)
}

func (h *ItemsHandler) discardImages(urls []string) {
	if h.Uploads == nil {
		return
	}
	for _, u := range urls {
		if err := h.Uploads.Remove(u); err != nil {
			slog.Warn("failed to remove upload", "path", u, "error", err)
		}
	}
}
