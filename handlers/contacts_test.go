package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/oaiiae/addressbook/datastores"
)

func newContactsAPI(t *testing.T, store ds.ContactsStore) (humatest.TestAPI, *[]error) {
	t.Helper()
	var errs []error
	_, api := humatest.New(t)
	huma.AutoRegister(api, &Contacts{
		Store:        store,
		Now:          func() time.Time { return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC) },
		ErrorHandler: func(_ context.Context, err error) { errs = append(errs, err) },
	})
	return api, &errs
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func seed() *ds.ContactsInmem {
	return ds.NewContactsInmem(
		&ds.Contact{Name: "Maria", Phones: []string{"0501234567"}, Birthday: time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)},
		&ds.Contact{Name: "Mark", Phones: []string{"0679876543"}},
		&ds.Contact{Name: "Olena", Phones: []string{"0930000000"}},
	)
}

func TestContactsList(t *testing.T) {
	api, _ := newContactsAPI(t, seed())

	resp := api.Get("/?size=2")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "3", resp.Header().Get("X-Total-Count"))
	body := decode[[]ContactModel](t, resp.Body.Bytes())
	require.Len(t, body, 2)
	assert.Equal(t, "Maria", body[0].Name)
	assert.Equal(t, "1990-01-01", body[0].Birthday)
	require.NotNil(t, body[0].DaysToBirthday)
	assert.Equal(t, 297, *body[0].DaysToBirthday)
	assert.Nil(t, body[1].DaysToBirthday)

	resp = api.Get("/?size=2&page=2")
	require.Equal(t, http.StatusOK, resp.Code)
	body = decode[[]ContactModel](t, resp.Body.Bytes())
	require.Len(t, body, 1)
	assert.Equal(t, "Olena", body[0].Name)

	resp = api.Get("/?q=MAR")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "2", resp.Header().Get("X-Total-Count"))
	body = decode[[]ContactModel](t, resp.Body.Bytes())
	require.Len(t, body, 2)
	assert.Equal(t, "Mark", body[1].Name)

	resp = api.Get("/?q=nobody")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[[]ContactModel](t, resp.Body.Bytes()))

	resp = api.Get("/?size=0")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestContactsListPageOutOfRange(t *testing.T) {
	api, _ := newContactsAPI(t, seed())

	for _, path := range []string{
		"/?page=100000000000000000&size=100",
		"/?q=mar&page=100000000000000000&size=100",
		"/?page=9223372036854775807&size=100",
		"/?page=3&size=2",
	} {
		resp := api.Get(path)
		require.Equal(t, http.StatusOK, resp.Code, path)
		assert.Empty(t, decode[[]ContactModel](t, resp.Body.Bytes()), path)
		assert.NotEmpty(t, resp.Header().Get("X-Total-Count"), path)
	}
}

func TestContactsGet(t *testing.T) {
	api, errs := newContactsAPI(t, seed())

	resp := api.Get("/Mark")
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[ContactModel](t, resp.Body.Bytes())
	assert.Equal(t, []string{"0679876543"}, body.Phones)

	resp = api.Get("/Nobody")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	require.Len(t, *errs, 1)
}

func TestContactsPut(t *testing.T) {
	store := seed()
	api, _ := newContactsAPI(t, store)
	ctx := context.Background()

	resp := api.Put("/Ivan", map[string]any{"phones": []string{"0441112233"}, "birthday": "2000-03-10"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decode[ContactModel](t, resp.Body.Bytes())
	require.NotNil(t, body.DaysToBirthday)
	assert.Zero(t, *body.DaysToBirthday)

	// replacing keeps the count
	resp = api.Put("/Mark", map[string]any{"phones": []string{"0441112233", "0442223344"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	mark, err := store.Get(ctx, "Mark")
	require.NoError(t, err)
	assert.Equal(t, []string{"0441112233", "0442223344"}, mark.Phones)

	resp = api.Put("/Mark", map[string]any{"phones": []string{"123"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mark, err = store.Get(ctx, "Mark")
	require.NoError(t, err)
	assert.Len(t, mark.Phones, 2)
}

func TestContactsPhones(t *testing.T) {
	store := seed()
	api, _ := newContactsAPI(t, store)
	ctx := context.Background()

	resp := api.Post("/Mark/phones", map[string]any{"phone": "0441112233"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = api.Post("/Mark/phones", map[string]any{"phone": "044"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Post("/Nobody/phones", map[string]any{"phone": "0441112233"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.Put("/Mark/phones/0679876543", map[string]any{"phone": "0555555555"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = api.Put("/Mark/phones/0000000000", map[string]any{"phone": "0555555555"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	mark, err := store.Get(ctx, "Mark")
	require.NoError(t, err)
	assert.Equal(t, []string{"0555555555", "0441112233"}, mark.Phones)

	resp = api.Delete("/Mark/phones/0555555555")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	mark, err = store.Get(ctx, "Mark")
	require.NoError(t, err)
	assert.Equal(t, []string{"0441112233"}, mark.Phones)
}

func TestContactsBirthday(t *testing.T) {
	api, _ := newContactsAPI(t, seed())

	resp := api.Get("/Maria/birthday")
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[struct {
		Birthday string `json:"birthday"`
		Days     int    `json:"days"`
	}](t, resp.Body.Bytes())
	assert.Equal(t, "1990-01-01", body.Birthday)
	assert.Equal(t, 297, body.Days)

	assert.Equal(t, http.StatusNotFound, api.Get("/Mark/birthday").Code)
	assert.Equal(t, http.StatusNotFound, api.Get("/Nobody/birthday").Code)
}

func TestGreeting(t *testing.T) {
	_, api := humatest.New(t)
	huma.AutoRegister(api, &Greeting{})

	resp := api.Get("/Maria")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Hello, Maria! How can I help you?")
}
