package cache

import (
	"fmt"
	"time"
)

// TTLs per cached entity. Users change rarely; the tag list is close to static.
const (
	UserTTL      = 5 * time.Minute
	CommunityTTL = 5 * time.Minute
	TagListTTL   = 10 * time.Minute
)

// Key builders. Keeping every key format in one place makes invalidation
// auditable.

func UserKey(id uint) string {
	return fmt.Sprintf("quill:user:%d", id)
}

func CommunityKey(id uint) string {
	return fmt.Sprintf("quill:community:%d", id)
}

func TagListKey() string {
	return "quill:tags"
}
