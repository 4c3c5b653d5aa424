// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
)

// Persister is durable storage for the serialized auth state.
// keychain.Manager implements it on top of the OS credential store.
type Persister interface {
	SaveAuthState(data []byte) error
	// LoadAuthState returns (nil, nil) when nothing is stored.
	LoadAuthState() ([]byte, error)
	ClearAuthState() error
}

// State is the persisted form of the auth store.
type State struct {
	Token  string  `json:"token"`
	Record *Record `json:"record,omitempty"`
}

// Load reads the auth state from p. Missing state yields the zero value.
func Load(p Persister) (State, error) {
	var s State
	data, err := p.LoadAuthState()
	if err != nil {
		return s, err
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, err
	}
	return s, nil
}

// Save writes the auth state to p. An empty token clears it instead.
func Save(p Persister, s State) error {
	if s.Token == "" {
		return Clear(p)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return p.SaveAuthState(b)
}

// Clear removes the auth state from p.
func Clear(p Persister) error {
	return p.ClearAuthState()
}
