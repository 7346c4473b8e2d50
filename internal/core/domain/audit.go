package domain

import "time"

// Audit log categories, matching the operation the route performs.
const (
	LogTypeLogin  = "login"
	LogTypeCreate = "create"
	LogTypeUpdate = "update"
	LogTypeDelete = "delete"
)

// AuditEntry is one persisted operation-log record. The middleware fills the
// request fields before the handler runs and the outcome fields after, then
// persists the entry exactly once per request.
type AuditEntry struct {
	ID            string    `json:"logId,omitempty"`
	LogType       string    `json:"logType,omitempty"`
	LogTitle      string    `json:"logTitle,omitempty"`
	RequestMethod string    `json:"requestMethod,omitempty"`
	APIURL        string    `json:"apiUrl,omitempty"`
	RequestData   string    `json:"requestData,omitempty"`
	ResponseData  string    `json:"responseData,omitempty"`
	UserName      string    `json:"userName,omitempty"`
	IP            string    `json:"ip,omitempty"`
	Status        bool      `json:"status"`
	Message       string    `json:"message,omitempty"`
	TakeTimeMs    int64     `json:"takeTime"`
	RequestTime   time.Time `json:"requestTime"`
}

// Stampable is implemented by records that carry create/update attribution.
type Stampable interface {
	StampCreate(userName string)
	StampUpdate(userName string)
}

// StampCreate sets both attribution fields on a new user record.
func (u *User) StampCreate(userName string) {
	u.CreateBy = userName
	u.UpdateBy = userName
}

// StampUpdate sets the update attribution on an existing user record.
func (u *User) StampUpdate(userName string) {
	u.UpdateBy = userName
}
