package domain

// Principal is the authenticated caller attached to a request. It is created
// at login, serialized into the session store, and immutable for the lifetime
// of the token that references it.
type Principal struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Status   bool   `json:"status"`
}
