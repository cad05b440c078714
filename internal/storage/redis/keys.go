package redis

import (
	"fmt"

	"github.com/whisperwall/whisperwall/internal/model"
)

// Key prefix for all application data
const keyPrefix = "wwall"

// userKey returns the Redis key for a User record
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// federatedIndexKey returns the Redis key for the
// (provider, subject) -> user_id index
func federatedIndexKey(provider, subject string) string {
	return fmt.Sprintf("%s:idx:federated:%s:%s", keyPrefix, provider, subject)
}

// secretsKey returns the Redis key for a user's secret list
func secretsKey(id model.UserID) string {
	return fmt.Sprintf("%s:secrets:%s", keyPrefix, id)
}

// secretHoldersKey returns the Redis key for the SET of users with secrets
func secretHoldersKey() string {
	return fmt.Sprintf("%s:idx:secret_holders", keyPrefix)
}

// sessionKey returns the Redis key for a Session record
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}
