package redis

import (
	"fmt"

	"github.com/mcoot/quizgame/internal/model"
)

// Key prefix for all client data
const keyPrefix = "quizgame"

// profileKey returns the Redis key for a Profile
func profileKey(name model.ProfileName) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, name)
}

// profileIndexKey returns the Redis key for the SET of profile names
func profileIndexKey() string {
	return fmt.Sprintf("%s:idx:profiles", keyPrefix)
}
