package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrSelfRequest       = errors.New("cannot send a friend request to yourself")
	ErrRequestExists     = errors.New("a pending or accepted friend request already exists between these users")
	ErrNotRecipient      = errors.New("only the recipient can respond to this friend request")
	ErrRequestResolved   = errors.New("friend request was already resolved")
	ErrDeletePermission  = errors.New("you can only delete your own notifications")
	ErrSelfInterest      = errors.New("cannot express interest in your own project")
	ErrForbidden         = errors.New("not allowed")
	ErrBanned            = errors.New("account is banned")
	ErrProfileIncomplete = errors.New("complete your profile first")
	ErrBlankContent      = errors.New("content cannot be blank")
)

// QuotaExceededError is returned when a daily creation limit is reached.
type QuotaExceededError struct {
	Kind  string
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily limit of %d %s reached", e.Limit, e.Kind)
}
