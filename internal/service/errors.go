package service

import "errors"

// Sentinel errors surfaced to handlers. Every message is user-facing domain
// language; database error codes never leak past the service layer.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountSuspended   = errors.New("this account is suspended")
	ErrNotFound           = errors.New("the requested record was not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrItemReferenced     = errors.New("this item has related defect records")
	ErrLastActiveAdmin    = errors.New("cannot suspend or delete the last active admin")
	ErrSelfDelete         = errors.New("you cannot delete your own account")
)
