package mgmt

// Server is a managed machine as returned by the servers endpoint.
type Server struct {
	ID       int    `json:"id"`
	Hostname string `json:"hostname"`
	Group    string `json:"group"`
}

// Action is a unit of remote work. A dispatched script yields a parent
// action (ParentID 0) with one child action per targeted server.
type Action struct {
	ID       int    `json:"id"`
	ParentID int    `json:"parent_id,omitempty"`
	ServerID int    `json:"server_id,omitempty"`
	Status   string `json:"status"`
}

// ActionFilter narrows ListActions. Exactly one field should be set.
type ActionFilter struct {
	ID       int
	ParentID int
}

// executeRequest is the body sent to the execute endpoint.
type executeRequest struct {
	Group string `json:"group"`
}

// envelope wraps every response body.
type envelope[T any] struct {
	Data T `json:"data"`
}
