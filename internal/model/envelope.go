package model

import "time"

// Envelope is the standard result wrapper returned by the contract
// operations: an outcome tag, the payload, and the generation time.
type Envelope struct {
	Status      string    `json:"status"`
	Data        any       `json:"data"`
	GeneratedAt time.Time `json:"generated_at"`
}

// OK wraps data in a successful envelope stamped with the current UTC time.
func OK(data any) Envelope {
	return Envelope{
		Status:      "ok",
		Data:        data,
		GeneratedAt: time.Now().UTC(),
	}
}
