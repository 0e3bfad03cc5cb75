package bridge

import (
	"github.com/san-kum/pathreplay/internal/replay"
)

// Command types accepted from the browser.
const (
	CmdEmpty      = "empty"
	CmdRegenerate = "regenerate"
	CmdNext       = "next"
	CmdPlay       = "play"
	CmdStop       = "stop"
	CmdReset      = "reset"
	CmdAlgorithm  = "algorithm"
)

// Message types sent to the browser.
const (
	MsgSession = "session"
	MsgFrame   = "frame"
	MsgError   = "error"
)

type Command struct {
	Type string `json:"type"`
	// Algorithm is a name or numeric selector. Optional on regenerate.
	Algorithm string `json:"algorithm,omitempty"`
	// ObstacleCount overrides the session default when positive.
	ObstacleCount int `json:"obstacleCount,omitempty"`
}

type sessionMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Algorithm string `json:"algorithm"`
}

type Frame struct {
	Type         string  `json:"type"`
	Map          [][]int `json:"map"`
	VisitedCount int     `json:"visitedCount"`
	StepIndex    int     `json:"stepIndex"`
	Steps        int     `json:"steps"`
	Done         bool    `json:"done"`
	State        string  `json:"state"`
	Playing      bool    `json:"playing"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Error   string `json:"error"`
}

func frameOf(s replay.Snapshot, e *replay.Engine) Frame {
	state := e.State()
	if s.Done {
		state = replay.Completed
	}
	f := Frame{
		Type:         MsgFrame,
		VisitedCount: s.VisitedCount,
		StepIndex:    s.StepIndex,
		Steps:        e.Len(),
		Done:         s.Done,
		State:        state.String(),
		Playing:      e.Playing() && !s.Done,
	}
	if s.Grid != nil {
		f.Map = s.Grid.Codes()
	}
	return f
}
