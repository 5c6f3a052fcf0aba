package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AdminUsername is the account that gets the admin panel
const AdminUsername = "admin"

// StartingCoins is the balance every new account is created with
const StartingCoins = 100

// isoLayout matches the timestamps browser clients write (Date.toISOString)
const isoLayout = "2006-01-02T15:04:05.000Z"

// Account is a registered player stored in the shared document.
// Password is stored as produced by the configured credential verifier,
// which for documents shared with browser clients is the plaintext.
type Account struct {
	Username  string
	Password  string
	Coins     int
	CreatedAt time.Time

	// Extra holds fields written by other clients that this client does
	// not model. They are written back unchanged on save.
	Extra map[string]any
}

// MarshalJSON writes the known fields on top of any preserved extras
func (a Account) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+4)
	for k, v := range a.Extra {
		out[k] = v
	}
	out["username"] = a.Username
	out["password"] = a.Password
	out["coins"] = a.Coins
	if !a.CreatedAt.IsZero() {
		out["createdAt"] = a.CreatedAt.UTC().Format(isoLayout)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the known fields and keeps everything else in Extra.
// A createdAt value that is not an RFC 3339 string is kept in Extra as-is.
// A null account is an error.
func (a *Account) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return errors.New("account is null")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var acc Account
	if err := takeField(raw, "username", &acc.Username); err != nil {
		return err
	}
	if err := takeField(raw, "password", &acc.Password); err != nil {
		return err
	}
	if err := takeField(raw, "coins", &acc.Coins); err != nil {
		return err
	}

	if v, ok := raw["createdAt"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				acc.CreatedAt = t
				delete(raw, "createdAt")
			}
		}
	}

	if len(raw) > 0 {
		acc.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			acc.Extra[k] = val
		}
	}

	*a = acc
	return nil
}

// Clone returns a deep copy of the account
func (a Account) Clone() Account {
	c := a
	if a.Extra != nil {
		c.Extra = cloneObject(a.Extra)
	}
	return c
}

func takeField(raw map[string]json.RawMessage, key string, dst any) error {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	delete(raw, key)
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
