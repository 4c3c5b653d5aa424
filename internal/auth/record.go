// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
)

// Record is an auth collection record: the authenticated principal.
// Fields beyond the well-known ones are kept in Extra so custom collection
// schemas survive a persistence round trip.
type Record struct {
	ID              string `json:"id"`
	CollectionID    string `json:"collectionId,omitempty"`
	CollectionName  string `json:"collectionName,omitempty"`
	Email           string `json:"email,omitempty"`
	EmailVisibility bool   `json:"emailVisibility,omitempty"`
	Verified        bool   `json:"verified,omitempty"`
	Created         string `json:"created,omitempty"`
	Updated         string `json:"updated,omitempty"`

	Extra map[string]any `json:"-"`
}

var knownRecordFields = map[string]struct{}{
	"id": {}, "collectionId": {}, "collectionName": {}, "email": {},
	"emailVisibility": {}, "verified": {}, "created": {}, "updated": {},
}

// DisplayName returns the best human-readable identifier of the record.
func (r *Record) DisplayName() string {
	if r == nil {
		return ""
	}
	if r.Email != "" {
		return r.Email
	}
	if v, ok := r.Extra["username"].(string); ok && v != "" {
		return v
	}
	return r.ID
}

// Clone returns a deep-enough copy for handing out to subscribers.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Extra != nil {
		c.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// UnmarshalJSON decodes the well-known fields and keeps the rest in Extra.
func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k := range knownRecordFields {
		delete(all, k)
	}
	*r = Record(p)
	if len(all) > 0 {
		r.Extra = all
	}
	return nil
}

// MarshalJSON writes the well-known fields merged with Extra.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	b, err := json.Marshal(plain(r))
	if err != nil || len(r.Extra) == 0 {
		return b, err
	}
	out := make(map[string]any, len(r.Extra)+len(knownRecordFields))
	for k, v := range r.Extra {
		out[k] = v
	}
	var known map[string]any
	if err := json.Unmarshal(b, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		out[k] = v
	}
	return json.Marshal(out)
}
