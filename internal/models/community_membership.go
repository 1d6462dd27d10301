package models

import "time"

// CommunityRole defines a member's role in a community.
type CommunityRole string

const (
	// CommunityRoleAdmin may publish posts into the community.
	CommunityRoleAdmin CommunityRole = "admin"
	// CommunityRoleSubscriber follows the community and reads its posts.
	CommunityRoleSubscriber CommunityRole = "subscriber"
)

// CommunityMembership maps users to communities and tracks role.
// The creator gets an admin membership row at community creation.
type CommunityMembership struct {
	CommunityID uint          `gorm:"primaryKey;autoIncrement:false" json:"community_id"`
	Community   *Community    `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	UserID      uint          `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User        *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        CommunityRole `gorm:"type:varchar(20);not null;default:'subscriber'" json:"role"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
