package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Element is a versioned drawing primitive. Only id, version and the deletion
// flag are inspected; the full encoded object is kept verbatim in Raw.
type Element struct {
	ID        string
	Version   int64
	IsDeleted bool
	Raw       json.RawMessage
}

type elementHeader struct {
	ID        string `json:"id"`
	Version   int64  `json:"version"`
	IsDeleted bool   `json:"isDeleted"`
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var h elementHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	if h.ID == "" {
		return fmt.Errorf("element without id")
	}
	e.ID = h.ID
	e.Version = h.Version
	e.IsDeleted = h.IsDeleted
	e.Raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}

func (e Element) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	return json.Marshal(elementHeader{ID: e.ID, Version: e.Version, IsDeleted: e.IsDeleted})
}
