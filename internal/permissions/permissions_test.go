package permissions_test

import (
	"testing"

	"surveyhub/internal/permissions"
	"surveyhub/internal/testutil"
)

func TestDirectUserGrant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, db, "alice@example.com")

	resource := permissions.AssignmentResource(7)
	allowed, err := permissions.Check(db, user.ID, permissions.ViewAssignment, resource)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if allowed {
		t.Fatal("user allowed before any grant")
	}

	if err := permissions.Grant(db, permissions.UserSubject(user.ID), permissions.ViewAssignment, resource); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	allowed, err = permissions.Check(db, user.ID, permissions.ViewAssignment, resource)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !allowed {
		t.Fatal("user denied after direct grant")
	}

	// The grant is per-object: a different resource id stays denied.
	allowed, err = permissions.Check(db, user.ID, permissions.ViewAssignment, permissions.AssignmentResource(8))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if allowed {
		t.Fatal("grant leaked onto another resource")
	}
}

func TestGroupGrant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	member := testutil.CreateUser(t, db, "bob@example.com")
	outsider := testutil.CreateUser(t, db, "carol@example.com")

	group, err := permissions.CreateGroup(db, permissions.ResultViewerGroupName(1))
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := permissions.AddToGroup(db, group.ID, member.ID); err != nil {
		t.Fatalf("AddToGroup: %v", err)
	}

	resource := permissions.SurveyResource(1)
	if err := permissions.Grant(db, permissions.GroupSubject(group.ID), permissions.ViewResults, resource); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	allowed, err := permissions.Check(db, member.ID, permissions.ViewResults, resource)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !allowed {
		t.Fatal("group member denied")
	}

	allowed, err = permissions.Check(db, outsider.ID, permissions.ViewResults, resource)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if allowed {
		t.Fatal("non-member allowed")
	}
}

func TestAddToGroupIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, db, "dave@example.com")

	group, err := permissions.CreateGroup(db, "reviewers")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := permissions.AddToGroup(db, group.ID, user.ID); err != nil {
		t.Fatalf("AddToGroup: %v", err)
	}
	if err := permissions.AddToGroup(db, group.ID, user.ID); err != nil {
		t.Fatalf("second AddToGroup: %v", err)
	}

	ids, err := permissions.GroupMemberIDs(db, group.ID)
	if err != nil {
		t.Fatalf("GroupMemberIDs: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 membership row, got %d", len(ids))
	}
}

func TestSurveyIDsWithResultAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, db, "erin@example.com")

	// Direct grant on survey 1, group grant on survey 2, nothing on 3.
	if err := permissions.Grant(db, permissions.UserSubject(user.ID), permissions.ViewResults, permissions.SurveyResource(1)); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	group, err := permissions.CreateGroup(db, permissions.ResultViewerGroupName(2))
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := permissions.AddToGroup(db, group.ID, user.ID); err != nil {
		t.Fatalf("AddToGroup: %v", err)
	}
	if err := permissions.Grant(db, permissions.GroupSubject(group.ID), permissions.ViewResults, permissions.SurveyResource(2)); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	ids, err := permissions.SurveyIDsWithResultAccess(db, user.ID)
	if err != nil {
		t.Fatalf("SurveyIDsWithResultAccess: %v", err)
	}
	got := map[uint]bool{}
	for _, id := range ids {
		got[id] = true
	}
	if len(got) != 2 || !got[1] || !got[2] {
		t.Fatalf("expected surveys 1 and 2, got %v", ids)
	}
}
