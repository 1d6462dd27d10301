package repository

import (
	"testing"
	"time"

	"quill/internal/database"
	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newUser(t *testing.T, db *gorm.DB, fullName string) *models.User {
	t.Helper()
	user := &models.User{
		Username: gofakeit.Username() + gofakeit.DigitN(4),
		Email:    gofakeit.DigitN(6) + gofakeit.Email(),
		Password: "hashed",
		FullName: fullName,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newCommunity(t *testing.T, db *gorm.DB, creator *models.User, closed bool) *models.Community {
	t.Helper()
	community := &models.Community{
		Name:      gofakeit.Company() + gofakeit.DigitN(5),
		IsClosed:  closed,
		CreatorID: creator.ID,
	}
	require.NoError(t, db.Create(community).Error)
	return community
}

func addMember(t *testing.T, db *gorm.DB, community *models.Community, user *models.User, role models.CommunityRole) {
	t.Helper()
	require.NoError(t, db.Create(&models.CommunityMembership{
		CommunityID: community.ID,
		UserID:      user.ID,
		Role:        role,
	}).Error)
}

func newTag(t *testing.T, db *gorm.DB, creator *models.User, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, CreatorID: creator.ID}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// newPost creates a post and pins its creation time so ordering tests are
// deterministic.
func newPost(t *testing.T, db *gorm.DB, author *models.User, community *models.Community, readingTime int, createdAt time.Time, tags ...*models.Tag) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       gofakeit.Sentence(3),
		Description: gofakeit.Paragraph(1, 2, 5, " "),
		ReadingTime: readingTime,
		AuthorID:    author.ID,
	}
	if community != nil {
		post.CommunityID = &community.ID
	}
	require.NoError(t, db.Create(post).Error)
	require.NoError(t, db.Model(post).UpdateColumn("created_at", createdAt).Error)
	for _, tag := range tags {
		require.NoError(t, db.Model(post).Association("Tags").Append(tag))
	}
	return post
}

func addLike(t *testing.T, db *gorm.DB, post *models.Post, user *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error)
}

func postIDs(posts []*models.Post) []uint {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
