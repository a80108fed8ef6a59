package domain

// LinkClaims is the payload carried by a signed link token.
type LinkClaims struct {
	UserID int64 `json:"user_id"`
}
