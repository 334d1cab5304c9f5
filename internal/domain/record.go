package domain

import "context"

// Well-known Record Store keys.
const (
	KeyUsers       = "users"
	KeyAuthToken   = "authToken"
	KeyCurrentUser = "currentUser"
)

// TasksKey returns the key holding the task collection of a user.
func TasksKey(userID string) string {
	return "tasks_" + userID
}

// RecordStore abstracts a string-keyed store of JSON blobs.
// Get returns ErrNotFound for missing keys; Remove of a missing key is not an error.
type RecordStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}
