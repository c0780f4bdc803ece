package api

// SessionModel is the representation of an interpreter session.
type SessionModel struct {
	URI                       string            `json:"uri"`
	ID                        string            `json:"id"`
	Locale                    string            `json:"locale"`
	FlipTreeY                 bool              `json:"flip_tree_y"`
	LevelInstructionsDisabled bool              `json:"level_instructions_disabled"`
	Aliases                   map[string]string `json:"aliases"`
	Created                   string            `json:"created,omitempty"`
	Modified                  string            `json:"modified,omitempty"`
}

// CreateSessionResponse is returned when a session is created. Token must be
// given as a bearer token to run commands in the session.
type CreateSessionResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// CommandRequest is a chain of commands to run.
type CommandRequest struct {
	Input string `json:"input"`
}

// CommandResponse holds the outcome of every command in a chain, in order.
type CommandResponse struct {
	Outcomes []OutcomeModel `json:"outcomes"`
}

// OutcomeModel is the outcome of one command.
type OutcomeModel struct {
	Input    string        `json:"input"`
	Kind     string        `json:"kind"`
	Message  string        `json:"message"`
	Renderer string        `json:"renderer,omitempty"`
	Final    bool          `json:"final,omitempty"`
	Route    *RouteModel   `json:"route,omitempty"`
	Signals  []SignalModel `json:"signals,omitempty"`
}

// RouteModel is a recognized command that the client must carry out.
type RouteModel struct {
	Event    string   `json:"event"`
	Method   string   `json:"method"`
	Captures []string `json:"captures"`
}

// SignalModel is a notification the client must act on.
type SignalModel struct {
	Event   string `json:"event"`
	Payload string `json:"payload,omitempty"`
}

// CatalogueModel is the list of display lines for "show commands".
type CatalogueModel struct {
	Lines []string `json:"lines"`
}

// InfoModel is general information on the running server.
type InfoModel struct {
	Version struct {
		Server     string `json:"server"`
		Branchling string `json:"branchling"`
	} `json:"version"`
}
