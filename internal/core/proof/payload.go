// Package proof builds the proof-of-completion payload a pickup agent scans
// to release cash. Encoding is pure and deterministic.
package proof

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/pickup/internal/core/transfer"
)

// Agent is the subset of payout agent fields carried in the payload.
type Agent struct {
	ID      string
	Name    string
	Address string
}

// Payload is the decoded form of a proof payload.
// Field order here is the canonical key order of the encoding.
type Payload struct {
	TransferRef  string `json:"transactionHash"`
	AgentID      string `json:"agentId"`
	AgentName    string `json:"agentName"`
	AgentAddress string `json:"agentAddress"`
	Amount       string `json:"amount"`
}

// Encode serializes the proof fields into a canonical JSON object.
// Same inputs always produce byte-identical output.
func Encode(transferRef string, agent Agent, amount float64) string {
	p := Payload{
		TransferRef:  transferRef,
		AgentID:      agent.ID,
		AgentName:    agent.Name,
		AgentAddress: agent.Address,
		Amount:       transfer.FormatAmount(amount),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of strings cannot fail.
	_ = enc.Encode(p)

	return strings.TrimSuffix(buf.String(), "\n")
}

// Decode parses a payload produced by Encode.
func Decode(payload string) (Payload, error) {
	var p Payload
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("failed to decode proof payload: %w", err)
	}
	if p.TransferRef == "" {
		return Payload{}, fmt.Errorf("proof payload missing transactionHash")
	}
	return p, nil
}
