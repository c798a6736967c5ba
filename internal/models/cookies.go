package models

// CookieRecord is one cookie in the persisted credential snapshot, as
// captured from an authenticated browser session.
type CookieRecord struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Expires  int64  `json:"expires,omitempty"` // unix seconds, 0 = session cookie
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"http_only"`
	SameSite string `json:"same_site,omitempty"` // "strict", "lax", "none" or empty
}
