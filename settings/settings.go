// Package settings persists the values remembered between runs: the last folder
// URL and spreadsheet, and the cached access token.
package settings

import (
	"context"
	"time"
)

const (
	LastFolderURL   = "last_folder_url"
	LastExcelPath   = "last_excel_path"
	AccessToken     = "acc_token"
	AccessTokenTTL  = "acc_token_expires"
	ticksUnixOffset = 621355968000000000
)

// Settings holds the cached values. TokenExpires is a .NET tick count (100ns
// intervals since 0001-01-01 UTC), the format the values have always been
// stored in.
type Settings struct {
	LastFolderURL string `json:"last_folder_url,omitempty"`
	LastExcelPath string `json:"last_excel_path,omitempty"`
	Token         string `json:"acc_token,omitempty"`
	TokenExpires  int64  `json:"acc_token_expires,omitempty"`
}

type Store interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}

// Expiry returns the cached token expiry, or the zero time if there is none.
func (s Settings) Expiry() time.Time {
	if s.TokenExpires == 0 {
		return time.Time{}
	}

	return FromTicks(s.TokenExpires)
}

func (s *Settings) SetToken(token string, expiry time.Time) {
	s.Token = token
	s.TokenExpires = 0
	if token != "" && !expiry.IsZero() {
		s.TokenExpires = ToTicks(expiry)
	}
}

func (s *Settings) ClearToken() {
	s.Token = ""
	s.TokenExpires = 0
}

func ToTicks(t time.Time) int64 {
	return t.UTC().UnixNano()/100 + ticksUnixOffset
}

func FromTicks(ticks int64) time.Time {
	return time.Unix(0, (ticks-ticksUnixOffset)*100).UTC()
}
