package handlers

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/addressbook/datastores"
)

type Contacts struct {
	Store        ds.ContactsStore
	Now          func() time.Time
	ErrorHandler func(context.Context, error)
}

type ContactModel struct {
	Name           string   `json:"name"                       readOnly:"true" example:"Maria"`
	Phones         []string `json:"phones"                                     doc:"phone numbers, 10 characters each"`
	Birthday       string   `json:"birthday,omitempty"                         example:"1990-05-17" format:"date"`
	DaysToBirthday *int     `json:"daysToBirthday,omitempty"   readOnly:"true" doc:"days left until the next birthday"`
}

func (h *Contacts) model(c *ds.Contact) ContactModel {
	m := ContactModel{Name: c.Name, Phones: c.Phones}
	if m.Phones == nil {
		m.Phones = []string{}
	}
	if days, ok := c.DaysToBirthday(h.now()); ok {
		m.Birthday = c.Birthday.Format(time.DateOnly)
		m.DaysToBirthday = &days
	}
	return m
}

func (h *Contacts) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Contacts) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusInternalServerError),
	)
}

type ContactsListOutput struct {
	Total int `header:"X-Total-Count" doc:"number of contacts matching the query"`
	Body  []ContactModel
}

func (h *Contacts) list(ctx context.Context, input *struct {
	Query string `query:"q"                              doc:"case-insensitive filter on name and phones"`
	Page  int    `query:"page" default:"1"  minimum:"1"   doc:"page number, starting at 1"`
	Size  int    `query:"size" default:"10" minimum:"1"   maximum:"100" doc:"contacts per page"`
}) (*ContactsListOutput, error) {
	// pages past math.MaxInt contacts are empty
	offset := math.MaxInt
	if input.Page-1 <= (math.MaxInt-input.Size)/input.Size {
		offset = (input.Page - 1) * input.Size
	}

	var (
		contacts []*ds.Contact
		total    int
		err      error
	)
	if input.Query != "" {
		contacts, err = h.Store.Search(ctx, input.Query)
		total = len(contacts)
		start := min(offset, total)
		contacts = contacts[start : start+min(input.Size, total-start)]
	} else {
		total, err = h.Store.Count(ctx)
		if err == nil {
			contacts, err = h.Store.List(ctx, offset, input.Size)
		}
	}
	if err != nil {
		return nil, err
	}

	body := make([]ContactModel, 0, len(contacts))
	for _, contact := range contacts {
		body = append(body, h.model(contact))
	}

	return &ContactsListOutput{Total: total, Body: body}, nil
}

func (h *Contacts) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/{name}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

type ContactsGetOutput struct {
	Body ContactModel
}

type ContactPath struct {
	Name string `path:"name" example:"Maria" doc:"name of the contact"`
}

func (h *Contacts) get(ctx context.Context, input *ContactPath) (*ContactsGetOutput, error) {
	contact, err := h.Store.Get(ctx, input.Name)
	if err != nil {
		return nil, storeError(err)
	}
	return &ContactsGetOutput{Body: h.model(contact)}, nil
}

func (h *Contacts) RegisterPut(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/{name}",
		handlerWithErrorHandler(h.put, h.ErrorHandler),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

func (h *Contacts) put(ctx context.Context, input *struct {
	ContactPath
	Body ContactModel
}) (*ContactsGetOutput, error) {
	contact, err := ds.NewContact(input.Name, input.Body.Birthday)
	if err != nil {
		return nil, storeError(err)
	}
	for _, phone := range input.Body.Phones {
		if err := contact.AddPhone(phone); err != nil {
			return nil, storeError(err)
		}
	}

	if err := h.Store.Add(ctx, contact); err != nil {
		return nil, storeError(err)
	}
	return &ContactsGetOutput{Body: h.model(contact)}, nil
}

type PhoneModel struct {
	Phone string `json:"phone" example:"0501234567" minLength:"10" maxLength:"10"`
}

// update applies fn to the named contact and stores the result.
func (h *Contacts) update(ctx context.Context, name string, fn func(*ds.Contact) error) (*ContactsGetOutput, error) {
	contact, err := h.Store.Get(ctx, name)
	if err != nil {
		return nil, storeError(err)
	}
	if err := fn(contact); err != nil {
		return nil, storeError(err)
	}
	if err := h.Store.Add(ctx, contact); err != nil {
		return nil, storeError(err)
	}
	return &ContactsGetOutput{Body: h.model(contact)}, nil
}

func (h *Contacts) RegisterAddPhone(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/{name}/phones",
		handlerWithErrorHandler(h.addPhone, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

func (h *Contacts) addPhone(ctx context.Context, input *struct {
	ContactPath
	Body PhoneModel
}) (*ContactsGetOutput, error) {
	return h.update(ctx, input.Name, func(c *ds.Contact) error { return c.AddPhone(input.Body.Phone) })
}

type PhonePath struct {
	ContactPath
	Phone string `path:"phone" example:"0501234567" doc:"phone number of the contact"`
}

func (h *Contacts) RegisterEditPhone(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/{name}/phones/{phone}",
		handlerWithErrorHandler(h.editPhone, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

func (h *Contacts) editPhone(ctx context.Context, input *struct {
	PhonePath
	Body PhoneModel
}) (*ContactsGetOutput, error) {
	return h.update(ctx, input.Name, func(c *ds.Contact) error { return c.EditPhone(input.Phone, input.Body.Phone) })
}

func (h *Contacts) RegisterRemovePhone(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/{name}/phones/{phone}",
		handlerWithErrorHandler(h.removePhone, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

func (h *Contacts) removePhone(ctx context.Context, input *PhonePath) (*ContactsGetOutput, error) {
	return h.update(ctx, input.Name, func(c *ds.Contact) error { c.RemovePhone(input.Phone); return nil })
}

func (h *Contacts) RegisterBirthday(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/{name}/birthday",
		handlerWithErrorHandler(h.birthday, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

type ContactsBirthdayOutput struct {
	Body struct {
		Birthday string `json:"birthday" format:"date"`
		Days     int    `json:"days"     doc:"days left until the next birthday, 0 on the day itself"`
	}
}

func (h *Contacts) birthday(ctx context.Context, input *ContactPath) (*ContactsBirthdayOutput, error) {
	contact, err := h.Store.Get(ctx, input.Name)
	if err != nil {
		return nil, storeError(err)
	}
	days, ok := contact.DaysToBirthday(h.now())
	if !ok {
		return nil, huma.Error404NotFound("birthday not set")
	}
	out := &ContactsBirthdayOutput{}
	out.Body.Birthday = contact.Birthday.Format(time.DateOnly)
	out.Body.Days = days
	return out, nil
}
