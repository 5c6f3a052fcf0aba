package model

import "strings"

// RemoteConfig identifies the shared document and the credential used to reach it.
// The JSON names match what the browser client keeps in local storage.
type RemoteConfig struct {
	Token  string `json:"githubToken"`
	GistID string `json:"gistId"`
}

// Trimmed returns a copy with surrounding whitespace removed from both fields
func (c RemoteConfig) Trimmed() RemoteConfig {
	return RemoteConfig{
		Token:  strings.TrimSpace(c.Token),
		GistID: strings.TrimSpace(c.GistID),
	}
}

// IsConfigured reports whether both the token and the gist id are set
func (c RemoteConfig) IsConfigured() bool {
	return c.Token != "" && c.GistID != ""
}

// MaskedToken returns the token with all but the last four characters hidden
func (c RemoteConfig) MaskedToken() string {
	if c.Token == "" {
		return ""
	}
	if len(c.Token) <= 4 {
		return strings.Repeat("*", len(c.Token))
	}
	return strings.Repeat("*", len(c.Token)-4) + c.Token[len(c.Token)-4:]
}
