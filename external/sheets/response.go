package sheets

import "github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/attendance"

// envelope is the {ok, error} frame every sheet response carries.
type envelope interface {
	succeeded() bool
	failureMessage() string
}

type statusResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (r *statusResponse) succeeded() bool        { return r.OK }
func (r *statusResponse) failureMessage() string { return r.Error }

type summaryResponse struct {
	statusResponse
	Counts map[string]countsPayload `json:"counts"`
	My     map[string]selfPayload   `json:"my"`
}

type countsPayload struct {
	Skaters int `json:"skaters"`
	Goalies int `json:"goalies"`
}

type selfPayload struct {
	Attending bool `json:"attending"`
}

func (r *summaryResponse) toSummary() attendance.Summary {
	out := attendance.EmptySummary()
	for id, item := range r.Counts {
		out.Counts[id] = attendance.Counts{Skaters: item.Skaters, Goalies: item.Goalies}
	}
	for id, item := range r.My {
		out.My[id] = attendance.SelfStatus{Attending: item.Attending}
	}
	return out
}

type attendeesResponse struct {
	statusResponse
	Attendees []attendeePayload `json:"attendees"`
}

// attendeePayload keeps raw values: rows are typed in by hand on the sheet and
// may hold numbers or nulls.
type attendeePayload struct {
	Display any `json:"display"`
	Pos     any `json:"pos"`
}
