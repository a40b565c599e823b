package handlers

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

const helpPrompt = "How can I help you?"

type Greeting struct{}

func (h *Greeting) RegisterAPI(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/{name}", h.handle)
}

// GreetingOutput represents the greeting operation response.
type GreetingOutput struct {
	Body struct {
		Message string `json:"message" example:"Hello, Maria! How can I help you?" doc:"Greeting message"`
	}
}

func (h *Greeting) handle(_ context.Context, input *struct {
	Name string `path:"name" maxLength:"30" example:"Maria" doc:"Name to greet"`
}) (*GreetingOutput, error) {
	resp := &GreetingOutput{}
	resp.Body.Message = fmt.Sprintf("Hello, %s! %s", input.Name, helpPrompt)
	return resp, nil
}
