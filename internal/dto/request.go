package dto

// SubmitRequestPayload carries a complete submission from the transport.
// Multi-step draft entry (text, then deadline, then confirmation) happens on
// the gateway side; the engine only ever sees the finished payload.
type SubmitRequestPayload struct {
	Body       string  `json:"body"`
	Attachment *string `json:"attachment,omitempty"`
	Deadline   string  `json:"deadline,omitempty"`
	Tag        *string `json:"tag,omitempty"`
}

// AssignRequestPayload names the handler chosen for a submitted request.
type AssignRequestPayload struct {
	HandlerID string `json:"handler_id" binding:"required"`
}

// CompleteRequestPayload optionally attaches the closing document reference.
type CompleteRequestPayload struct {
	ClosingDocument *string `json:"closing_document,omitempty"`
}

// RequestQuery mirrors supported ledger listing filters.
type RequestQuery struct {
	Status    string `form:"status"`
	AuthorID  string `form:"author_id"`
	HandlerID string `form:"handler_id"`
	Tag       string `form:"tag"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}
