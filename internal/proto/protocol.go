package proto

// ProtocolVersion is echoed on every server message and checked against the
// client hello. A mismatch closes the socket.
const ProtocolVersion = "1.0"

const (
	TypeHello        = "hello"
	TypeJoin         = "join"
	TypeInput        = "input"
	TypeRestart      = "restart"
	TypePauseRequest = "pause_request"
	TypePauseVote    = "pause_vote"

	TypeWelcome       = "welcome"
	TypeState         = "state"
	TypeInfo          = "info"
	TypeError         = "error"
	TypePauseProposal = "pause_proposal"
	TypePauseResult   = "pause_result"
)

const (
	ActionPause  = "pause"
	ActionResume = "resume"

	VoteAccept = "accept"
	VoteReject = "reject"
)

// ClientMessage is the closed set of messages a client may send. Adding a
// message type means adding a variant here and a case in DecodeClient.
type ClientMessage interface {
	clientMessage()
}

type Hello struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

type Join struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id,omitempty"`
	Key    string `json:"key,omitempty"`
	Name   string `json:"name,omitempty"`
}

type Input struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type Restart struct {
	Type string `json:"type"`
}

type PauseRequest struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

type PauseVote struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	Vote      string `json:"vote"`
}

func (Hello) clientMessage()        {}
func (Join) clientMessage()         {}
func (Input) clientMessage()        {}
func (Restart) clientMessage()      {}
func (PauseRequest) clientMessage() {}
func (PauseVote) clientMessage()    {}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type EntityView struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	ClientID string  `json:"client_id,omitempty"`
	Alive    bool    `json:"alive"`
	Score    int     `json:"score"`
	Points   []Point `json:"points"`
}

type FoodView struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Snapshot is the per-client projected view of the world. Entities are never
// culled; foods are radius-culled and count-capped before it is built.
type Snapshot struct {
	Entities     []EntityView `json:"entities"`
	Foods        []FoodView   `json:"foods"`
	IsRunning    bool         `json:"is_running"`
	IsPaused     bool         `json:"is_paused"`
	YourEntityID int          `json:"your_entity_id"`
}

type Welcome struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	ClientID        string   `json:"client_id"`
	RoomID          string   `json:"room_id"`
	EntityID        int      `json:"entity_id"`
	Snapshot        Snapshot `json:"snapshot"`
}

type State struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Snapshot
}

type Info struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Message         string `json:"message"`
}

type ErrorMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Message         string `json:"message"`
}

type PauseProposal struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	RequestID       string            `json:"request_id"`
	Action          string            `json:"action"`
	RequesterID     string            `json:"requester_id"`
	RequesterName   string            `json:"requester_name"`
	Eligible        []string          `json:"eligible"`
	Votes           map[string]string `json:"votes"`
	ExpiresAtMS     int64             `json:"expires_at_ms"`
}

type PauseResult struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id"`
	Action          string `json:"action"`
	Accepted        bool   `json:"accepted"`
	Reason          string `json:"reason,omitempty"`
}
