package models

import "github.com/dmitrijs2005/userkeeper/internal/timex"

// User is the stored user record. ID is assigned by the store on insert and
// never changes afterwards.
type User struct {
	ID          uint64
	Email       string
	FirstName   string
	LastName    string
	BirthDate   timex.Date
	Address     string
	PhoneNumber string
}

// Clone returns a copy that shares nothing with u.
func (u *User) Clone() *User {
	c := *u
	return &c
}
