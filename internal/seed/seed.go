// Package seed populates the database with realistic demo data.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedPassword is the plaintext password every seeded account uses.
const seedPassword = "Quill-Demo-Pass1"

var tagNames = []string{
	"golang", "databases", "writing", "travel", "productivity",
	"self-hosting", "photography", "cooking", "open-source", "music",
	"book-reviews", "devops", "career", "history", "science",
}

var communitySeeds = []struct {
	name        string
	description string
	closed      bool
}{
	{"Backend Kitchen", "Servers, queues, and everything behind the API.", false},
	{"Slow Writing Club", "Long-form essays, drafted slowly and on purpose.", false},
	{"Field Notes", "Short observations from wherever you happen to be.", false},
	{"Editors' Room", "Invite-only workshop for drafts in progress.", true},
	{"The Archive", "Private stacks. Members only.", true},
}

// Seeder generates demo content directly through GORM.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll wipes every seeded table. Order matters because of foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"likes", "comments", "post_tags", "posts",
		"community_memberships", "communities", "tags", "sessions", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// Run creates users, communities, tags, posts, and likes. Counts below
// numUsers/numPosts minimums are raised so the graph stays interesting.
func (s *Seeder) Run(numUsers, numPosts int) error {
	if numUsers < 5 {
		numUsers = 5
	}
	if numPosts < numUsers {
		numPosts = numUsers
	}

	users, err := s.seedUsers(numUsers)
	if err != nil {
		return err
	}
	communities, err := s.seedCommunities(users)
	if err != nil {
		return err
	}
	tags, err := s.seedTags(users)
	if err != nil {
		return err
	}
	posts, err := s.seedPosts(users, communities, tags, numPosts)
	if err != nil {
		return err
	}
	return s.seedLikes(users, posts)
}

func (s *Seeder) seedUsers(n int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password: string(hash),
			FullName: gofakeit.Name(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedCommunities(users []models.User) ([]models.Community, error) {
	communities := make([]models.Community, 0, len(communitySeeds))
	for i, cs := range communitySeeds {
		creator := users[i%len(users)]
		community := models.Community{
			Name:        cs.name,
			Description: cs.description,
			IsClosed:    cs.closed,
			CreatorID:   creator.ID,
		}
		if err := s.db.Create(&community).Error; err != nil {
			return nil, fmt.Errorf("seeding community %q: %w", cs.name, err)
		}

		memberships := []models.CommunityMembership{
			{CommunityID: community.ID, UserID: creator.ID, Role: models.CommunityRoleAdmin},
		}
		// Roughly a third of the user base subscribes to each community.
		for _, u := range users {
			if u.ID == creator.ID || rand.Intn(3) != 0 {
				continue
			}
			memberships = append(memberships, models.CommunityMembership{
				CommunityID: community.ID,
				UserID:      u.ID,
				Role:        models.CommunityRoleSubscriber,
			})
		}
		if err := s.db.Create(&memberships).Error; err != nil {
			return nil, fmt.Errorf("seeding memberships for %q: %w", cs.name, err)
		}
		communities = append(communities, community)
	}
	return communities, nil
}

func (s *Seeder) seedTags(users []models.User) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(tagNames))
	for i, name := range tagNames {
		tag := models.Tag{
			Name:      name,
			CreatorID: users[i%len(users)].ID,
		}
		if err := s.db.Create(&tag).Error; err != nil {
			return nil, fmt.Errorf("seeding tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *Seeder) seedPosts(users []models.User, communities []models.Community, tags []models.Tag, n int) ([]models.Post, error) {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		post := models.Post{
			Title:       gofakeit.Sentence(rand.Intn(6) + 3),
			Description: gofakeit.Paragraph(2, 4, 12, "\n\n"),
			ReadingTime: rand.Intn(25) + 1,
			AuthorID:    author.ID,
			CreatedAt:   time.Now().UTC().Add(-time.Duration(rand.Intn(24*90)) * time.Hour),
		}

		// Two thirds of posts land in a community; the author must be allowed
		// to post there, so pick one they created.
		if rand.Intn(3) != 0 {
			for _, community := range communities {
				if community.CreatorID == author.ID {
					id := community.ID
					post.CommunityID = &id
					break
				}
			}
		}

		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("seeding post %d: %w", i, err)
		}

		picked := pickTags(tags, rand.Intn(4))
		if len(picked) > 0 {
			if err := s.db.Model(&post).Association("Tags").Append(picked); err != nil {
				return nil, fmt.Errorf("tagging post %d: %w", post.ID, err)
			}
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedLikes(users []models.User, posts []models.Post) error {
	for _, post := range posts {
		for _, u := range users {
			if rand.Intn(4) != 0 {
				continue
			}
			like := models.Like{UserID: u.ID, PostID: post.ID}
			if err := s.db.Create(&like).Error; err != nil {
				return fmt.Errorf("seeding like on post %d: %w", post.ID, err)
			}
		}
	}
	return nil
}

func pickTags(tags []models.Tag, n int) []models.Tag {
	if n == 0 || len(tags) == 0 {
		return nil
	}
	idx := rand.Perm(len(tags))
	if n > len(idx) {
		n = len(idx)
	}
	picked := make([]models.Tag, 0, n)
	for _, i := range idx[:n] {
		picked = append(picked, tags[i])
	}
	return picked
}
