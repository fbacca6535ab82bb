package domain

import "time"

// User represents a shipper account. Registration and authentication are
// handled upstream; this service only needs the owner identity and the
// lazily-created processor customer id cached on it.
type User struct {
	ID                  string
	Email               string
	FirstName           string
	LastName            string
	ProcessorCustomerID string
	CreatedAt           time.Time
}

// FullName returns the display name used for the processor customer record.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Email
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}
