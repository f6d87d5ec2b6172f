package models

import "time"

// Follow is a directed follow relationship: FollowerID follows FollowingID.
// The pair is unique; rows are created and deleted, never updated.
type Follow struct {
	ID          string    `json:"follow_id" bson:"follow_id" gorm:"primaryKey;type:varchar(36)"`
	FollowerID  string    `json:"user_id" bson:"user_id" gorm:"column:user_id;type:varchar(64);not null;index;uniqueIndex:idx_followers_pair"`
	FollowingID string    `json:"target_userid" bson:"target_userid" gorm:"column:target_userid;type:varchar(64);not null;index;uniqueIndex:idx_followers_pair"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

func (Follow) TableName() string { return "followers" }

// FollowerEntry is one element of a user's followers list.
type FollowerEntry struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FollowingEntry is one element of the list of users someone follows.
type FollowingEntry struct {
	TargetUserID string    `json:"target_userid"`
	CreatedAt    time.Time `json:"created_at"`
}

// FollowRequest is the body of a follow call.
type FollowRequest struct {
	TargetUserID string `json:"target_userid" validate:"required,max=64"`
}

// ToFollowerEntries projects edges onto their follower side.
func ToFollowerEntries(follows []Follow) []FollowerEntry {
	entries := make([]FollowerEntry, 0, len(follows))
	for _, f := range follows {
		entries = append(entries, FollowerEntry{UserID: f.FollowerID, CreatedAt: f.CreatedAt})
	}
	return entries
}

// ToFollowingEntries projects edges onto their followed side.
func ToFollowingEntries(follows []Follow) []FollowingEntry {
	entries := make([]FollowingEntry, 0, len(follows))
	for _, f := range follows {
		entries = append(entries, FollowingEntry{TargetUserID: f.FollowingID, CreatedAt: f.CreatedAt})
	}
	return entries
}
