package models

// RemoteConfig addresses the optional remote store. Endpoint and Credential
// are opaque to the gateway; only the remote dialer interprets them.
type RemoteConfig struct {
	Endpoint   string `json:"endpoint"`
	Credential string `json:"credential"`
}

// Masked returns a copy safe to show back to a user.
func (c RemoteConfig) Masked() RemoteConfig {
	if c.Credential == "" {
		return c
	}
	masked := "****"
	if len(c.Credential) > 8 {
		masked = c.Credential[:2] + "****" + c.Credential[len(c.Credential)-2:]
	}
	return RemoteConfig{Endpoint: c.Endpoint, Credential: masked}
}
