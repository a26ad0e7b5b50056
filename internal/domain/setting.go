package domain

import (
	"encoding/json"
	"time"
)

// Well-known setting keys read by the backend itself. Any other key is opaque.
const (
	SettingStoreInfo = "store_info"
)

// Setting is a site configuration entry with an opaque JSON value
type Setting struct {
	Key       string          `json:"key" db:"setting_key"`
	Value     json.RawMessage `json:"value" db:"setting_value"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// StoreInfo is the shape of the store_info setting as far as checkout cares
type StoreInfo struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`
}
