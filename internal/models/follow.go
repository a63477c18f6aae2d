package models

// Follow is a directed edge: FollowerID follows FollowedID. The composite primary key
// keeps the edge unique.
type Follow struct {
	FollowerID uint `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint `json:"followed_id" gorm:"primaryKey;autoIncrement:false;index"`
}

func (Follow) TableName() string { return "follows" }
