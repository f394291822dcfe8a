package repository_test

import (
	"context"
	"reflect"
	"testing"

	"surveyhub/internal/models"
	"surveyhub/internal/repository"
	"surveyhub/internal/testutil"
)

func TestTallyCountsResponsesPerChoice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assignment, questions := seedAssignment(t, db, 2)

	// A second assignee answers too.
	other := testutil.CreateUser(t, db, "second@example.com")
	otherAssignment := &models.SurveyAssignment{
		SurveyID:     assignment.SurveyID,
		AssignedByID: assignment.AssignedByID,
		AssignedToID: other.ID,
	}
	if err := db.Create(otherAssignment).Error; err != nil {
		t.Fatalf("Failed to create assignment: %v", err)
	}

	first := map[uint]uint{
		questions[0].ID: questions[0].Choices[0].ID,
		questions[1].ID: questions[1].Choices[1].ID,
	}
	second := map[uint]uint{
		questions[0].ID: questions[0].Choices[0].ID,
		questions[1].ID: questions[1].Choices[0].ID,
	}
	if err := repository.SaveSurveyResponses(context.Background(), assignment.ID, first); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if err := repository.SaveSurveyResponses(context.Background(), otherAssignment.ID, second); err != nil {
		t.Fatalf("second submission: %v", err)
	}

	results, err := repository.TallySurveyResults(context.Background(), assignment.SurveyID)
	if err != nil {
		t.Fatalf("TallySurveyResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 question results, got %d", len(results))
	}

	// Question 0: both picked the first choice.
	if got := results[0].Choices[0].Responses; got != 2 {
		t.Errorf("question 0 choice 0: got %d responses, want 2", got)
	}
	if got := results[0].Choices[1].Responses; got != 0 {
		t.Errorf("question 0 choice 1: got %d responses, want 0", got)
	}
	// Question 1: one each.
	if got := results[1].Choices[0].Responses; got != 1 {
		t.Errorf("question 1 choice 0: got %d responses, want 1", got)
	}
	if got := results[1].Choices[1].Responses; got != 1 {
		t.Errorf("question 1 choice 1: got %d responses, want 1", got)
	}
}

func TestTallyIncludesUnpickedChoicesWithZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assignment, questions := seedAssignment(t, db, 1)
	_ = assignment

	results, err := repository.TallySurveyResults(context.Background(), questions[0].SurveyID)
	if err != nil {
		t.Fatalf("TallySurveyResults: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 question result, got %d", len(results))
	}
	if len(results[0].Choices) != 2 {
		t.Fatalf("expected 2 choices in tally, got %d", len(results[0].Choices))
	}
	for _, choice := range results[0].Choices {
		if choice.Responses != 0 {
			t.Errorf("choice %d: got %d responses, want 0", choice.ChoiceID, choice.Responses)
		}
	}
}

func TestTallyIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assignment, questions := seedAssignment(t, db, 2)

	answers := map[uint]uint{}
	for _, q := range questions {
		answers[q.ID] = q.Choices[0].ID
	}
	if err := repository.SaveSurveyResponses(context.Background(), assignment.ID, answers); err != nil {
		t.Fatalf("SaveSurveyResponses: %v", err)
	}

	first, err := repository.TallySurveyResults(context.Background(), assignment.SurveyID)
	if err != nil {
		t.Fatalf("first tally: %v", err)
	}
	second, err := repository.TallySurveyResults(context.Background(), assignment.SurveyID)
	if err != nil {
		t.Fatalf("second tally: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("tallies differ between calls:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
