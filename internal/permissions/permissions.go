// Package permissions implements per-object authorization as an
// access-control-list table. A grant names a subject (user or group), a
// permission and a resource; a user holds a permission when a matching
// user grant exists or when any group the user belongs to holds one.
package permissions

import (
	"fmt"

	"surveyhub/internal/models"

	"gorm.io/gorm"
)

// Permission names.
const (
	ViewAssignment = "view_assignment"
	ViewResults    = "view_results"
)

// Subject and resource type tags stored in the grants table.
const (
	subjectUser  = "user"
	subjectGroup = "group"

	resourceSurvey     = "survey"
	resourceAssignment = "survey_assignment"
)

type Subject struct {
	Type string
	ID   uint
}

type Resource struct {
	Type string
	ID   uint
}

func UserSubject(id uint) Subject  { return Subject{Type: subjectUser, ID: id} }
func GroupSubject(id uint) Subject { return Subject{Type: subjectGroup, ID: id} }

func SurveyResource(id uint) Resource     { return Resource{Type: resourceSurvey, ID: id} }
func AssignmentResource(id uint) Resource { return Resource{Type: resourceAssignment, ID: id} }

// Grant records that subject may exercise permission on resource. The db
// argument may be a transaction so grants commit atomically with the
// resources they cover.
func Grant(db *gorm.DB, subject Subject, permission string, resource Resource) error {
	grant := models.Grant{
		SubjectType:  subject.Type,
		SubjectID:    subject.ID,
		Permission:   permission,
		ResourceType: resource.Type,
		ResourceID:   resource.ID,
	}
	return db.Create(&grant).Error
}

// Check reports whether the user holds permission on resource, either
// directly or through group membership.
func Check(db *gorm.DB, userID uint, permission string, resource Resource) (bool, error) {
	var count int64
	memberOf := db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
	err := db.Model(&models.Grant{}).
		Where("permission = ? AND resource_type = ? AND resource_id = ?", permission, resource.Type, resource.ID).
		Where(
			db.Where("subject_type = ? AND subject_id = ?", subjectUser, userID).
				Or("subject_type = ? AND subject_id IN (?)", subjectGroup, memberOf),
		).
		Count(&count).Error
	return count > 0, err
}

// ResultViewerGroupName is the per-survey group naming scheme.
func ResultViewerGroupName(surveyID uint) string {
	return fmt.Sprintf("survey_%d_result_viewers", surveyID)
}

// CreateGroup creates a named group.
func CreateGroup(db *gorm.DB, name string) (*models.Group, error) {
	group := models.Group{Name: name}
	if err := db.Create(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// GroupByName looks up a group by its unique name.
func GroupByName(db *gorm.DB, name string) (*models.Group, error) {
	var group models.Group
	err := db.First(&group, "name = ?", name).Error
	return &group, err
}

// AddToGroup makes the user a member of the group. Adding an existing
// member is a no-op.
func AddToGroup(db *gorm.DB, groupID, userID uint) error {
	var count int64
	err := db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil || count > 0 {
		return err
	}
	return db.Create(&models.GroupMember{GroupID: groupID, UserID: userID}).Error
}

// GroupMemberIDs returns the user ids belonging to the group.
func GroupMemberIDs(db *gorm.DB, groupID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// SurveyIDsWithResultAccess lists every survey the user may view results
// for, the inverse of Check used by the profile dashboard.
func SurveyIDsWithResultAccess(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	memberOf := db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
	err := db.Model(&models.Grant{}).
		Distinct("resource_id").
		Where("permission = ? AND resource_type = ?", ViewResults, resourceSurvey).
		Where(
			db.Where("subject_type = ? AND subject_id = ?", subjectUser, userID).
				Or("subject_type = ? AND subject_id IN (?)", subjectGroup, memberOf),
		).
		Pluck("resource_id", &ids).Error
	return ids, err
}
