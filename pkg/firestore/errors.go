package firestore

import (
	"errors"

	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsNotFound reports whether err is a Firestore NotFound status.
func IsNotFound(err error) bool {
	return err != nil && status.Code(err) == codes.NotFound
}

// IsDone reports whether an iterator is exhausted.
func IsDone(err error) bool {
	return errors.Is(err, iterator.Done)
}
