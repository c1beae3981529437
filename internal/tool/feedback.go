// feedback.go implements the `submit_feedback` tool (spec §1/§6): persist
// a structured feedback record to disk via internal/feedback.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/feedback"
	"docsmcp/pkg/models"
)

// FeedbackArgs is the `submit_feedback` tool's input schema (spec §6).
type FeedbackArgs struct {
	Feedback     string              `json:"feedback"`
	Rating       int                 `json:"rating,omitempty"`
	Improvements []string            `json:"improvements,omitempty"`
	MissingDocs  []string            `json:"missingDocs,omitempty"`
	PainPoints   []string            `json:"painPoints,omitempty"`
	Client       *models.ClientInfo  `json:"client,omitempty"`
}

// FeedbackHandler persists submit_feedback calls via a feedback.Store.
type FeedbackHandler struct {
	store *feedback.Store
}

func NewFeedbackHandler(store *feedback.Store) *FeedbackHandler {
	return &FeedbackHandler{store: store}
}

func (h *FeedbackHandler) Definition() Definition {
	return Definition{
		Name:        "submit_feedback",
		Description: "Submit structured feedback about the documentation service.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"feedback":     map[string]any{"type": "string"},
				"rating":       map[string]any{"type": "number", "minimum": 1, "maximum": 5},
				"improvements": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"missingDocs":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"painPoints":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"client":       map[string]any{"type": "object"},
			},
			"required": []string{"feedback"},
		},
	}
}

func (h *FeedbackHandler) Handle(ctx context.Context, raw []byte) (Response, error) {
	var args FeedbackArgs
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return Response{}, docsmcperr.New(docsmcperr.InvalidArgs, "submit_feedback", err)
		}
	}
	rec := models.Feedback{
		Feedback:     args.Feedback,
		Rating:       args.Rating,
		Improvements: args.Improvements,
		MissingDocs:  args.MissingDocs,
		PainPoints:   args.PainPoints,
	}
	if args.Client != nil {
		rec.Client = *args.Client
	}
	path, err := h.store.Save(rec)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Content:  []Content{{Type: "text", Text: fmt.Sprintf("Thank you for your feedback. Recorded at %s.", path)}},
		Metadata: map[string]any{"path": path},
	}, nil
}
