package models

import "time"

// Feedback is the persisted shape of a submit_feedback call.
type Feedback struct {
	Feedback     string       `json:"feedback"`
	Rating       int          `json:"rating,omitempty"`
	Improvements []string     `json:"improvements,omitempty"`
	MissingDocs  []string     `json:"missing_docs,omitempty"`
	PainPoints   []string     `json:"pain_points,omitempty"`
	Client       ClientInfo   `json:"client,omitempty"`
	SubmittedAt  time.Time    `json:"submitted_at"`
}

// ClientInfo identifies the MCP client submitting feedback, when supplied.
type ClientInfo struct {
	AgentName    string `json:"agent_name,omitempty"`
	AgentVersion string `json:"agent_version,omitempty"`
	Model        string `json:"model,omitempty"`
	Platform     string `json:"platform,omitempty"`
}
