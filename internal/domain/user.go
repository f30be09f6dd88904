package domain

// User is the per-caller record behind admission control: an opaque
// external identifier and a lifetime request tally. The tally is
// informational; the quota window itself is counted by the cache layer.
type User struct {
	userID       string
	requestCount int64
}

// ReconstructUser restores a user from storage.
func ReconstructUser(userID string, requestCount int64) User {
	return User{userID: userID, requestCount: requestCount}
}

// UserID returns the external identifier.
func (u *User) UserID() string { return u.userID }

// RequestCount returns the lifetime request tally.
func (u *User) RequestCount() int64 { return u.requestCount }
