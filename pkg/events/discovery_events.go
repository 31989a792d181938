package events

import (
	"encoding/json"
	"time"
)

// ChangeOp names the store mutation that produced a change event.
type ChangeOp string

const (
	OpInsert    ChangeOp = "INSERT"
	OpUpdate    ChangeOp = "UPDATE"
	OpDelete    ChangeOp = "DELETE"
	OpDeleteAll ChangeOp = "DELETE_ALL"
)

// DiscoveryChanged is published on every successful mutation of an owner's
// discovery set. Subscribers re-query on receipt; the event itself carries
// no record data.
type DiscoveryChanged struct {
	Op          ChangeOp  `json:"op"`
	OwnerId     string    `json:"owner_id"`
	DiscoveryId string    `json:"discovery_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e DiscoveryChanged) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func UnmarshalDiscoveryChanged(payload []byte) (DiscoveryChanged, error) {
	var e DiscoveryChanged
	err := json.Unmarshal(payload, &e)
	return e, err
}

// DiscoveryChangedTopic is the per-owner pub/sub topic for change events.
func DiscoveryChangedTopic(ownerId string) string {
	return "discovery.changed." + ownerId
}
