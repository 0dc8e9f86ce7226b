package models

// Requests for the session command and report HTTP endpoints. Defined in
// domain for consistency and reuse.

type StartSessionRequest struct {
	Participant string `json:"participant" validate:"required,min=1,max=64"`
}

type MarkTimestampRequest struct {
	Label string `json:"label" default:"" validate:"max=128"`
}

type HRVReportRequest struct {
	Participant string `param:"participant" json:"participant" validate:"required"`
	Clean       bool   `query:"clean" json:"clean" default:"false"`
	From        string `query:"from" json:"from,omitempty"`
	To          string `query:"to" json:"to,omitempty"`
}
