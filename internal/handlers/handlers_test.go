package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"surveyhub/internal/config"
	"surveyhub/internal/models"
	"surveyhub/internal/router"
	"surveyhub/internal/services"
	"surveyhub/internal/testutil"
	"surveyhub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testClient drives the full router while carrying the session cookie and
// CSRF token between requests, like a browser would.
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	csrf    string
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()

	log := zap.NewNop()
	handler := router.Setup(log, services.NewEmailService(log), nil)
	client := &testClient{t: t, handler: handler, cookies: map[string]*http.Cookie{}}

	// Prime the session cookie and CSRF token.
	client.get("/health")
	return client
}

func (c *testClient) do(method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	c.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", c.csrf)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}
	if token := w.Header().Get("X-CSRF-Token"); token != "" {
		c.csrf = token
	}
	return w
}

func (c *testClient) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, "", nil)
}

func (c *testClient) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (c *testClient) postJSON(path string, payload interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(payload)
	if err != nil {
		c.t.Fatalf("marshal payload: %v", err)
	}
	return c.do(http.MethodPost, path, "application/json", bytes.NewReader(data))
}

func (c *testClient) login(email string) {
	c.t.Helper()
	w := c.postForm("/login", url.Values{
		"email":    {email},
		"password": {"Sup3r-Secret!"},
	})
	if w.Code != http.StatusOK {
		c.t.Fatalf("login as %s: status %d, body %s", email, w.Code, w.Body.String())
	}
}

func (c *testClient) logout() {
	c.t.Helper()
	if w := c.do(http.MethodPost, "/logout", "", nil); w.Code != http.StatusOK {
		c.t.Fatalf("logout: status %d", w.Code)
	}
}

func TestRegistrationAndConfirmationFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	client := newTestClient(t)

	w := client.postForm("/register", url.Values{
		"email":            {"new@example.com"},
		"password":         {"Sup3r-Secret!"},
		"password_confirm": {"Sup3r-Secret!"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := db.First(&user, "email = ?", "new@example.com").Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.IsActive {
		t.Fatal("user active before confirmation")
	}

	// Login is refused until the account is confirmed.
	w = client.postForm("/login", url.Values{
		"email":    {"new@example.com"},
		"password": {"Sup3r-Secret!"},
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unconfirmed login, got %d", w.Code)
	}

	// A wrong token yields the generic error and no activation.
	uid := utils.EncodeUserID(user.ID)
	w = client.get(fmt.Sprintf("/confirm/%s/%s", uid, "bogus-token"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad token, got %d", w.Code)
	}

	token, err := utils.NewConfirmationToken(config.Conf.Auth.TokenSecret, user.ID, config.Conf.Auth.ConfirmationTTL)
	if err != nil {
		t.Fatalf("NewConfirmationToken: %v", err)
	}
	w = client.get(fmt.Sprintf("/confirm/%s/%s", uid, token))
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: status %d, body %s", w.Code, w.Body.String())
	}

	if err := db.First(&user, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !user.IsActive {
		t.Fatal("user not activated by confirmation")
	}

	client.login("new@example.com")
}

func TestRegisterValidationErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	client := newTestClient(t)
	testutil.CreateUser(t, db, "taken@example.com")

	cases := []struct {
		name  string
		form  url.Values
		field string
	}{
		{"missing email", url.Values{"password": {"Sup3r-Secret!"}, "password_confirm": {"Sup3r-Secret!"}}, "email"},
		{"invalid email", url.Values{"email": {"nope"}, "password": {"Sup3r-Secret!"}, "password_confirm": {"Sup3r-Secret!"}}, "email"},
		{"taken email", url.Values{"email": {"taken@example.com"}, "password": {"Sup3r-Secret!"}, "password_confirm": {"Sup3r-Secret!"}}, "email"},
		{"weak password", url.Values{"email": {"a@b.com"}, "password": {"weak"}, "password_confirm": {"weak"}}, "password"},
		{"mismatch", url.Values{"email": {"a@b.com"}, "password": {"Sup3r-Secret!"}, "password_confirm": {"Other-Secret1!"}}, "password_confirm"},
	}
	for _, tc := range cases {
		w := client.postForm("/register", tc.form)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, w.Code)
			continue
		}
		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Errorf("%s: bad body %s", tc.name, w.Body.String())
			continue
		}
		if _, ok := resp.Errors[tc.field]; !ok {
			t.Errorf("%s: expected error on %q, got %v", tc.name, tc.field, resp.Errors)
		}
	}
}

func TestSurveyCreateValidationPersistsNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	client := newTestClient(t)
	testutil.CreateUser(t, db, "owner@example.com")
	client.login("owner@example.com")

	w := client.postJSON("/survey/create", map[string]interface{}{
		"title":        "",
		"questions":    []interface{}{},
		"assignee_ids": []uint{},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %s", w.Body.String())
	}
	for _, field := range []string{"title", "questions", "assignees"} {
		if _, ok := resp.Errors[field]; !ok {
			t.Errorf("expected error on %q, got %v", field, resp.Errors)
		}
	}

	var count int64
	if err := db.Model(&models.Survey{}).Count(&count).Error; err != nil {
		t.Fatalf("count surveys: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 surveys, got %d", count)
	}
}

func TestEndToEndSurveyLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	client := newTestClient(t)
	testutil.CreateUser(t, db, "owner@example.com")
	assignee := testutil.CreateUser(t, db, "assignee@example.com")
	reviewer := testutil.CreateUser(t, db, "reviewer@example.com")
	testutil.CreateUser(t, db, "outsider@example.com")

	// Owner creates an assigned survey.
	client.login("owner@example.com")
	w := client.postJSON("/survey/create", map[string]interface{}{
		"title": "Lunch preferences",
		"questions": []map[string]interface{}{
			{"text": "Soup or salad?", "choices": []string{"Soup", "Salad"}},
			{"text": "Dessert?", "choices": []string{"Yes", "No"}},
		},
		"assignee_ids": []uint{assignee.ID},
		"reviewer_ids": []uint{reviewer.ID},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create survey: status %d, body %s", w.Code, w.Body.String())
	}

	var survey models.Survey
	if err := db.First(&survey, "title = ?", "Lunch preferences").Error; err != nil {
		t.Fatalf("survey not created: %v", err)
	}
	var assignment models.SurveyAssignment
	if err := db.First(&assignment, "survey_id = ?", survey.ID).Error; err != nil {
		t.Fatalf("assignment not created: %v", err)
	}
	client.logout()

	// The assignee sees and answers the assignment.
	client.login("assignee@example.com")
	assignmentPath := fmt.Sprintf("/survey/assignment/%d", assignment.ID)
	if w := client.get(assignmentPath); w.Code != http.StatusOK {
		t.Fatalf("show assignment: status %d, body %s", w.Code, w.Body.String())
	}

	var questions []models.Question
	preloadChoices := func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }
	if err := db.Preload("Choices", preloadChoices).Where("survey_id = ?", survey.ID).Order("position").Find(&questions).Error; err != nil {
		t.Fatalf("load questions: %v", err)
	}

	// Incomplete submission leaves no rows.
	w = client.postJSON(assignmentPath, map[string]interface{}{
		"answers": map[string]uint{
			fmt.Sprint(questions[0].ID): questions[0].Choices[0].ID,
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("incomplete submission: expected 400, got %d", w.Code)
	}
	var responseCount int64
	db.Model(&models.SurveyResponse{}).Count(&responseCount)
	if responseCount != 0 {
		t.Fatalf("expected 0 responses after incomplete submission, got %d", responseCount)
	}

	// Complete submission persists one row per question.
	answers := map[string]uint{}
	for _, q := range questions {
		answers[fmt.Sprint(q.ID)] = q.Choices[0].ID
	}
	w = client.postJSON(assignmentPath, map[string]interface{}{"answers": answers})
	if w.Code != http.StatusOK {
		t.Fatalf("submission: status %d, body %s", w.Code, w.Body.String())
	}
	db.Model(&models.SurveyResponse{}).Count(&responseCount)
	if responseCount != int64(len(questions)) {
		t.Fatalf("expected %d responses, got %d", len(questions), responseCount)
	}

	// Second submission is rejected as a duplicate.
	w = client.postJSON(assignmentPath, map[string]interface{}{"answers": answers})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate submission: expected 409, got %d", w.Code)
	}

	// The assignee is not a reviewer and may not see results.
	resultsPath := fmt.Sprintf("/survey/results/%d", survey.ID)
	if w := client.get(resultsPath); w.Code != http.StatusForbidden {
		t.Fatalf("assignee results access: expected 403, got %d", w.Code)
	}
	client.logout()

	// The reviewer reads the tally.
	client.login("reviewer@example.com")
	w = client.get(resultsPath)
	if w.Code != http.StatusOK {
		t.Fatalf("reviewer results: status %d, body %s", w.Code, w.Body.String())
	}
	var tally struct {
		Questions []struct {
			Text    string `json:"text"`
			Choices []struct {
				Text      string `json:"text"`
				Responses int64  `json:"responses"`
			} `json:"choices"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tally); err != nil {
		t.Fatalf("bad tally body: %s", w.Body.String())
	}
	if len(tally.Questions) != 2 {
		t.Fatalf("expected 2 questions in tally, got %d", len(tally.Questions))
	}
	for _, q := range tally.Questions {
		if len(q.Choices) != 2 {
			t.Fatalf("question %q: expected both choices in tally, got %d", q.Text, len(q.Choices))
		}
		if q.Choices[0].Responses != 1 || q.Choices[1].Responses != 0 {
			t.Errorf("question %q: got counts %d/%d, want 1/0", q.Text, q.Choices[0].Responses, q.Choices[1].Responses)
		}
	}

	// Reviewers cannot manage the survey; that is owner-only.
	managePath := fmt.Sprintf("/survey/manage/%d", survey.ID)
	if w := client.get(managePath); w.Code != http.StatusForbidden {
		t.Fatalf("reviewer manage access: expected 403, got %d", w.Code)
	}
	client.logout()

	// An outsider has no access to the assignment or results.
	client.login("outsider@example.com")
	if w := client.get(assignmentPath); w.Code != http.StatusForbidden {
		t.Fatalf("outsider assignment access: expected 403, got %d", w.Code)
	}
	if w := client.get(resultsPath); w.Code != http.StatusForbidden {
		t.Fatalf("outsider results access: expected 403, got %d", w.Code)
	}
}

func TestManageEndpointAddsAssigneesAndReviewers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	client := newTestClient(t)
	testutil.CreateUser(t, db, "owner@example.com")
	first := testutil.CreateUser(t, db, "first@example.com")
	second := testutil.CreateUser(t, db, "second@example.com")

	client.login("owner@example.com")
	w := client.postJSON("/survey/create", map[string]interface{}{
		"title": "Standup format",
		"questions": []map[string]interface{}{
			{"text": "Keep standups?", "choices": []string{"Yes", "No"}},
		},
		"assignee_ids": []uint{first.ID},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create survey: status %d, body %s", w.Code, w.Body.String())
	}

	var survey models.Survey
	if err := db.First(&survey, "title = ?", "Standup format").Error; err != nil {
		t.Fatalf("survey not created: %v", err)
	}
	managePath := fmt.Sprintf("/survey/manage/%d", survey.ID)

	// The manage form partitions users into available assignees/reviewers.
	w = client.get(managePath)
	if w.Code != http.StatusOK {
		t.Fatalf("manage form: status %d, body %s", w.Code, w.Body.String())
	}
	var form struct {
		AvailableAssignees []models.User `json:"available_assignees"`
		AvailableReviewers []models.User `json:"available_reviewers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &form); err != nil {
		t.Fatalf("bad form body: %s", w.Body.String())
	}
	if len(form.AvailableAssignees) != 1 || form.AvailableAssignees[0].ID != second.ID {
		t.Fatalf("expected only %d assignable, got %v", second.ID, form.AvailableAssignees)
	}
	if len(form.AvailableReviewers) != 2 {
		t.Fatalf("expected 2 available reviewers, got %d", len(form.AvailableReviewers))
	}

	// Assign the second user and make them a reviewer.
	w = client.postJSON(managePath, map[string]interface{}{
		"assignee_ids": []uint{second.ID},
		"reviewer_ids": []uint{second.ID},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("manage: status %d, body %s", w.Code, w.Body.String())
	}

	var assignments int64
	db.Model(&models.SurveyAssignment{}).Where("survey_id = ?", survey.ID).Count(&assignments)
	if assignments != 2 {
		t.Fatalf("expected 2 assignments, got %d", assignments)
	}
	client.logout()

	// The new reviewer can read results now.
	client.login("second@example.com")
	if w := client.get(fmt.Sprintf("/survey/results/%d", survey.ID)); w.Code != http.StatusOK {
		t.Fatalf("new reviewer results: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestProfileRequiresAuthentication(t *testing.T) {
	testutil.SetupTestDB(t)
	client := newTestClient(t)

	if w := client.get("/profile"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
