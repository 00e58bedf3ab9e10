package models

import "time"

// User is a row of auth_user, the table inherited from the previous
// backend. Password holds the stored hash in either supported format.
type User struct {
	ID         int64
	UserName   string
	Email      string
	Password   string
	IsActive   bool
	DateJoined time.Time
}
