package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/db"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
)

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorf(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// parseDate accepts a calendar day (YYYY-MM-DD) or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(db.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errorf(http.StatusBadRequest, "invalid date %q", s)
	}
	return t.UTC(), nil
}

func queryInt(q url.Values, key string) (int64, error) {
	v, err := strconv.ParseInt(q.Get(key), 10, 64)
	if err != nil {
		return 0, errorf(http.StatusBadRequest, "invalid %s", key)
	}
	return v, nil
}

// parseItemFilter turns list query parameters into a filter. Without any of
// them the result is nil, which lists every item.
func parseItemFilter(q url.Values) (*model.ItemFilter, error) {
	if !q.Has("status") && !q.Has("type") && !q.Has("userId") && !q.Has("limit") && !q.Has("offset") {
		return nil, nil
	}

	f := &model.ItemFilter{Status: q.Get("status"), Type: q.Get("type")}
	if q.Get("userId") != "" {
		id, err := queryInt(q, "userId")
		if err != nil {
			return nil, err
		}
		f.UserID = id
	}
	if q.Get("limit") != "" {
		n, err := queryInt(q, "limit")
		if err != nil || n < 0 {
			return nil, errorf(http.StatusBadRequest, "invalid limit")
		}
		f.Limit = int(n)
	}
	if q.Get("offset") != "" {
		n, err := queryInt(q, "offset")
		if err != nil {
			return nil, err
		}
		f.Offset = int(n)
	}
	return f, nil
}

// parseSearch returns the free-text query and the optional search filter.
func parseSearch(q url.Values) (string, *model.SearchFilter, error) {
	query := q.Get("q")
	status, typ, date, location := q.Get("status"), q.Get("type"), q.Get("date"), q.Get("location")
	if status == "" && typ == "" && date == "" && location == "" {
		return query, nil, nil
	}

	f := &model.SearchFilter{Status: status, Type: typ, Location: location}
	if date != "" {
		t, err := parseDate(date)
		if err != nil {
			return "", nil, err
		}
		f.Date = &t
	}
	return query, f, nil
}
