package apierror

// Envelope is the wire shape of every non-2xx response.
type Envelope struct {
	Error Body `json:"error"`
}

type Body struct {
	StatusCode int               `json:"status_code"`
	Details    Detail            `json:"details"`
	Fields     map[string]Detail `json:"fields,omitempty"`
}

func (e *Error) Envelope() Envelope {
	return Envelope{Error: Body{
		StatusCode: e.Status,
		Details:    Detail{Message: e.Message, Code: e.Code},
		Fields:     e.Fields,
	}}
}
