package model

import "time"

// Session is the client-held proof of an authenticated user.  It is
// issued by the identity provider on sign-in, replaced on refresh and
// cleared on sign-out.
type Session struct {
    UserID       uint64    `json:"user_id"`
    Role         string    `json:"role"`
    AccessToken  string    `json:"access_token"`
    RefreshToken string    `json:"refresh_token"`
    ExpiresAt    time.Time `json:"expires_at"`
}
