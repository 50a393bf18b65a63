package domain

const (
	UrgencyHigh = "1"
	UrgencyLow  = "3"
)

// Payload is the body accepted by the ticketing endpoint.
type Payload struct {
	CallerID         string `json:"caller_id"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	Urgency          string `json:"urgency"`
}

// UrgencyFor maps the important flag onto the two urgency levels in use.
func UrgencyFor(important bool) string {
	if important {
		return UrgencyHigh
	}
	return UrgencyLow
}

func NewPayload(callerID, title, memo string, important bool) Payload {
	return Payload{
		CallerID:         callerID,
		ShortDescription: title,
		Description:      memo,
		Urgency:          UrgencyFor(important),
	}
}

// Ticket identifies the incident created remotely. Both fields may be empty
// when the endpoint does not echo them back.
type Ticket struct {
	Number string
	SysID  string
}
