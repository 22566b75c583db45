package engine

import (
	"encoding/json"
	"fmt"
	"io"
)

// Digest returns the hex digest carried by the final result step.
func Digest(steps []Step) (string, error) {
	if len(steps) == 0 {
		return "", ErrNoResult
	}
	last := steps[len(steps)-1]
	if last.Operation != OpResult {
		return "", fmt.Errorf("last step is %q: %w", last.Operation, ErrNoResult)
	}
	v, ok := last.Values.Get("Digest")
	if !ok {
		return "", fmt.Errorf("result step without digest: %w", ErrNoResult)
	}
	return v.Text, nil
}

// StepsForRound returns the steps of one compression round of one block.
func StepsForRound(steps []Step, block, round int) []Step {
	var out []Step
	for _, s := range steps {
		if s.Block == block && s.Round == round {
			out = append(out, s)
		}
	}
	return out
}

// BlockCount is the number of compressed blocks in a trace.
func BlockCount(steps []Step) int {
	n := 0
	for _, s := range steps {
		if s.Operation == OpFinalize {
			n++
		}
	}
	return n
}

// FixedStepsPerBlock counts the prepare, init and finalise steps of a block.
const FixedStepsPerBlock = 3

// ExpectedSteps is the trace length for a message spread over blocks blocks.
func ExpectedSteps(blocks, rounds int) int {
	return 2 + blocks*(FixedStepsPerBlock+rounds*len(RoundOperations))
}

// TraceDocument is the exported form of one Hash call.
type TraceDocument struct {
	Message string `json:"message"`
	Config  Config `json:"config"`
	Digest  string `json:"digest"`
	Steps   []Step `json:"steps"`
}

// WriteJSON writes the trace as an indented TraceDocument.
func WriteJSON(w io.Writer, message string, cfg Config, steps []Step) error {
	digest, err := Digest(steps)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(TraceDocument{Message: message, Config: cfg, Digest: digest, Steps: steps}); err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	return nil
}

// ReadJSON decodes a TraceDocument written by WriteJSON.
func ReadJSON(r io.Reader) (*TraceDocument, error) {
	var doc TraceDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return &doc, nil
}
