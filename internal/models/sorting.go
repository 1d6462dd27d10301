package models

import "fmt"

// PostSorting enumerates the supported post orderings.
type PostSorting string

const (
	SortCreateAsc  PostSorting = "createAsc"
	SortCreateDesc PostSorting = "createDesc"
	SortLikeAsc    PostSorting = "likeAsc"
	SortLikeDesc   PostSorting = "likeDesc"
)

// ParsePostSorting validates a caller-supplied sorting name. An empty string
// means "no explicit ordering" and is accepted.
func ParsePostSorting(s string) (PostSorting, error) {
	switch PostSorting(s) {
	case "", SortCreateAsc, SortCreateDesc, SortLikeAsc, SortLikeDesc:
		return PostSorting(s), nil
	}
	return "", fmt.Errorf("unknown post sorting %q", s)
}
