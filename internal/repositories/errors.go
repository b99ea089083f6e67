package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row or document.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
	// ErrQuotaExceeded is returned by quota-guarded inserts when the author
	// already reached the daily limit.
	ErrQuotaExceeded = errors.New("daily quota exceeded")
	// ErrNotFriends is returned by the conditional message insert when no
	// accepted friendship links sender and receiver.
	ErrNotFriends = errors.New("users are not friends")
)

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
