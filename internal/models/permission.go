package models

// Grant is an access-control-list row permitting a subject (a user or a
// group) to perform an action on a resource. The full five-column tuple is
// kept unique by a migration index.
type Grant struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SubjectType  string `gorm:"not null" json:"subject_type"`
	SubjectID    uint   `gorm:"not null" json:"subject_id"`
	Permission   string `gorm:"not null" json:"permission"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   uint   `gorm:"not null" json:"resource_id"`
}

// Group is a named set of users used to share a grant, one per survey for
// its result viewers.
type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

type GroupMember struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	GroupID uint `gorm:"not null;index" json:"group_id"`
	UserID  uint `gorm:"not null;index" json:"user_id"`
}
