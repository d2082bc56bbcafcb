package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/prepverse/interview-gateway/internal/profile"
)

// Command is a peer instruction to the session orchestrator. Implemented only
// by the variant structs in this package, so orchestrator dispatch is an
// exhaustive type switch.
type Command interface {
	commandType() string
}

// StartCommand begins the interview. The inline profile wins over the
// candidate ID; the ID is resolved through the profile provider when no
// inline profile is given.
type StartCommand struct {
	CandidateID   string             `json:"candidate_id"`
	Profile       *profile.Candidate `json:"profile"`
	InterviewType string             `json:"interview_type"`
	NumQuestions  int                `json:"num_questions"`
	TTSEngine     string             `json:"tts_engine"`
	ASREngine     string             `json:"asr_engine"`
}

// AudioChunkCommand is one binary audio frame. Not parsed from JSON; the
// transport constructs it directly from binary websocket frames.
type AudioChunkCommand struct {
	Data []byte
}

// StopRecordingCommand ends response capture for the current question.
type StopRecordingCommand struct{}

// SkipQuestionCommand advances to the next question without recording a response.
type SkipQuestionCommand struct{}

// EndInterviewCommand forces termination from any state.
type EndInterviewCommand struct{}

func (StartCommand) commandType() string         { return "start" }
func (AudioChunkCommand) commandType() string    { return "audio_chunk" }
func (StopRecordingCommand) commandType() string { return "stop_recording" }
func (SkipQuestionCommand) commandType() string  { return "skip_question" }
func (EndInterviewCommand) commandType() string  { return "end_interview" }

// CommandType exposes the wire tag of a command, for logging and tests.
func CommandType(cmd Command) string {
	return cmd.commandType()
}

// ParseCommand decodes a text frame into its command variant. Unknown types
// are a protocol violation reported to the caller.
func ParseCommand(data []byte) (Command, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse command frame: %w", err)
	}

	switch head.Type {
	case "start":
		var cmd StartCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("parse start command: %w", err)
		}
		return cmd, nil
	case "stop_recording":
		return StopRecordingCommand{}, nil
	case "skip_question":
		return SkipQuestionCommand{}, nil
	case "end_interview":
		return EndInterviewCommand{}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", head.Type)
	}
}
