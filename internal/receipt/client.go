package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = "openai/gpt-4o-mini"
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultTimeout = 60 * time.Second
)

const instruction = `Analizza questo scontrino e restituisci SOLO un oggetto JSON con questi campi:
- "amount": il totale in numero (es. 42.50)
- "description": breve descrizione degli articoli principali
- "category": una tra queste categorie: "alimentari", "trasporti", "casa", "salute", "svago", "abbigliamento", "ristorazione", "altro"
- "date": la data dello scontrino in formato ISO (YYYY-MM-DD), se non visibile usa la data di oggi

Rispondi SOLO con il JSON, senza markdown o altro testo.`

var fieldsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"amount": {
			"type": "number",
			"description": "Receipt total"
		},
		"description": {
			"type": "string",
			"description": "Short description of the main items"
		},
		"category": {
			"type": "string",
			"enum": ["alimentari", "trasporti", "casa", "salute", "svago", "abbigliamento", "ristorazione", "altro"]
		},
		"date": {
			"type": "string",
			"description": "Receipt date as YYYY-MM-DD"
		}
	},
	"required": ["amount", "description", "category", "date"],
	"additionalProperties": false
}`)

// Client extracts receipt fields through an OpenAI compatible chat
// completion API.
type Client struct {
	client *openai.Client
	model  string
	loc    *time.Location
	now    func() time.Time
}

type Option func(*Client)

func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithClock sets the source of "today" for receipts without a date.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func New(apiKey, baseURL, model string, timeout time.Duration, opts ...Option) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	config.HTTPClient = &http.Client{Timeout: timeout}

	if model == "" {
		model = DefaultModel
	}

	c := &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		loc:    time.Local,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Model() string {
	return c.model
}

// Extract sends the image with the fixed instruction and validates the
// answer. Every failure is reported as ErrUnreadable.
func (c *Client) Extract(ctx context.Context, img Image) (*Fields, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    img.DataURL(),
							Detail: openai.ImageURLDetailAuto,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: instruction,
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "receipt",
				Schema: fieldsSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: calling model: %w", ErrUnreadable, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response from model", ErrUnreadable)
	}

	var raw rawFields
	if err := json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing model response: %w", ErrUnreadable, err)
	}

	fields, err := raw.validate(c.now().In(c.loc))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	return fields, nil
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
