package domain

import "time"

// User models a system account that can log in.
type User struct {
	ID           string    `json:"userId"`
	UserName     string    `json:"userName"`
	PasswordHash string    `json:"-"`
	NickName     string    `json:"nickName,omitempty"`
	Status       bool      `json:"status"`
	RoleIDs      []string  `json:"-"`
	LoginIP      string    `json:"loginIp,omitempty"`
	LoginTime    time.Time `json:"loginTime,omitempty"`
	CreateBy     string    `json:"createBy,omitempty"`
	UpdateBy     string    `json:"updateBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal derives the session payload for this user.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, UserName: u.UserName, Status: u.Status}
}
