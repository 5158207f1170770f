package secondary

import (
	"context"
	"encoding/json"
	"time"
)

// RequestStore defines the secondary port for completed pickup persistence.
// The sequence is append-only and ordered most-recent-first.
type RequestStore interface {
	// Load returns the stored records. Missing or unreadable state yields an
	// empty sequence, never an error.
	Load(ctx context.Context) []*PickupRecord

	// Append inserts a record at the head and persists the whole sequence.
	// Returns false when a record with the same ID already exists.
	// Persistence failures are logged, not returned.
	Append(ctx context.Context, record *PickupRecord) bool
}

// KeyValueStore defines the secondary port for string key-value persistence.
type KeyValueStore interface {
	// Get returns the value for key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set replaces the value for key in a single atomic write.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// PickupRecord represents a completed pickup as stored in persistence.
// The JSON form uses the field names of the cashPickupRequests array written
// by the web wallet, with CreatedAt as epoch milliseconds.
type PickupRecord struct {
	ID           string
	Agent        AgentRecord
	Amount       float64
	TransferRef  string
	CreatedAt    time.Time
	ProofPayload string
}

type pickupRecordJSON struct {
	ID           string      `json:"id"`
	Agent        AgentRecord `json:"agent"`
	Amount       float64     `json:"amount"`
	TransferRef  string      `json:"transactionHash"`
	Timestamp    int64       `json:"timestamp"`
	ProofPayload string      `json:"qrCodeData"`
}

// MarshalJSON implements json.Marshaler.
func (r PickupRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(pickupRecordJSON{
		ID:           r.ID,
		Agent:        r.Agent,
		Amount:       r.Amount,
		TransferRef:  r.TransferRef,
		Timestamp:    r.CreatedAt.UnixMilli(),
		ProofPayload: r.ProofPayload,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *PickupRecord) UnmarshalJSON(data []byte) error {
	var raw pickupRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = PickupRecord{
		ID:           raw.ID,
		Agent:        raw.Agent,
		Amount:       raw.Amount,
		TransferRef:  raw.TransferRef,
		CreatedAt:    time.UnixMilli(raw.Timestamp).UTC(),
		ProofPayload: raw.ProofPayload,
	}
	return nil
}
