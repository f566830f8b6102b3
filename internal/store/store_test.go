package store

import (
	"errors"
	"reflect"
	"testing"

	"quizforge/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestQuizCRUD(t *testing.T) {
	s := newTestStore(t)

	// Empty DB should return zero count and empty list.
	count, err := s.QuizCount()
	if err != nil {
		t.Fatalf("QuizCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 quizzes, got %d", count)
	}

	doc := model.SampleDocument()
	id, err := s.CreateQuiz(doc)
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if id == "" {
		t.Fatal("CreateQuiz returned an empty id")
	}

	got, err := s.GetQuiz(id)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got == nil {
		t.Fatal("GetQuiz returned nil for a stored quiz")
	}
	if !reflect.DeepEqual(doc, got) {
		t.Errorf("stored document differs:\n got %+v\nwant %+v", got, doc)
	}

	missing, err := s.GetQuiz("no-such-id")
	if err != nil {
		t.Fatalf("GetQuiz missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for an unknown quiz id")
	}
}

func TestSaveQuizOverwrites(t *testing.T) {
	s := newTestStore(t)

	doc := model.SampleDocument()
	id, err := s.CreateQuiz(doc)
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	doc.Meta.Shuffle = true
	doc.Questions = doc.Questions[:1]
	if err := s.SaveQuiz(id, doc); err != nil {
		t.Fatalf("SaveQuiz: %v", err)
	}

	got, err := s.GetQuiz(id)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if !got.Meta.Shuffle || len(got.Questions) != 1 {
		t.Errorf("save did not overwrite: shuffle=%v questions=%d", got.Meta.Shuffle, len(got.Questions))
	}
}

func TestSaveQuizUnknownID(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveQuiz("no-such-id", model.SampleDocument()); err == nil {
		t.Error("expected error saving to an unknown id")
	}
}

func TestSaveQuizRejectsInvalidDocument(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateQuiz(model.SampleDocument())
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	// Draft questions may be incomplete, but structural breakage (duplicate
	// ids) is never persisted.
	broken := model.SampleDocument()
	broken.Questions[1].ID = broken.Questions[0].ID
	if err := s.SaveQuiz(id, broken); err == nil {
		t.Error("expected validation error")
	}
}

func TestListQuizzes(t *testing.T) {
	s := newTestStore(t)

	first := model.SampleDocument()
	firstID, err := s.CreateQuiz(first)
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	second := model.NewDocument("Second Quiz")
	second.Questions = []model.Question{
		{ID: "s1", Type: model.TypeText, Text: "Q", Accept: model.AnswerList{"a"}},
	}
	if _, err := s.CreateQuiz(second); err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	infos, err := s.ListQuizzes()
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("listed %d quizzes, want 2", len(infos))
	}
	byID := map[string]model.QuizInfo{}
	for _, info := range infos {
		byID[info.ID] = info
	}
	got := byID[firstID]
	if got.Title != "Sample Quiz" || got.Questions != 2 {
		t.Errorf("listing for first quiz = %+v", got)
	}
}

func TestRenameQuiz(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateQuiz(model.SampleDocument())
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	if err := s.RenameQuiz(id, "Geography Basics"); err != nil {
		t.Fatalf("RenameQuiz: %v", err)
	}
	doc, err := s.GetQuiz(id)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if doc.Meta.Title != "Geography Basics" {
		t.Errorf("document title = %q", doc.Meta.Title)
	}
	infos, _ := s.ListQuizzes()
	if infos[0].Title != "Geography Basics" {
		t.Errorf("listing title = %q", infos[0].Title)
	}

	if err := s.RenameQuiz("no-such-id", "x"); err == nil {
		t.Error("expected error renaming an unknown quiz")
	}
}

func TestDeleteQuiz(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateQuiz(model.SampleDocument())
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	if err := s.DeleteQuiz(id); err != nil {
		t.Fatalf("DeleteQuiz: %v", err)
	}
	doc, err := s.GetQuiz(id)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if doc != nil {
		t.Error("quiz still present after delete")
	}
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateUser(model.User{
		Username:     "maya",
		DisplayName:  "Maya",
		PasswordHash: "not-a-real-hash",
		Role:         model.RoleAuthor,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.GetUserByUsername("maya")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id || u.Role != model.RoleAuthor || !u.Active {
		t.Errorf("user = %+v", u)
	}

	byID, err := s.GetUserByID(id)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID == nil || byID.Username != "maya" {
		t.Errorf("user by id = %+v", byID)
	}

	missing, err := s.GetUserByUsername("nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for an unknown username")
	}

	if err := s.ToggleUserActive(id); err != nil {
		t.Fatalf("ToggleUserActive: %v", err)
	}
	u, _ = s.GetUserByID(id)
	if u.Active {
		t.Error("toggle did not deactivate the user")
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateUser(model.User{
		Username: "root", PasswordHash: "h", Role: "superuser", Active: true,
	})
	if err == nil {
		t.Fatal("CreateUser accepted an unknown role")
	}
}

func TestToggleRefusesLastActiveAdmin(t *testing.T) {
	s := newTestStore(t)
	adminID, err := s.CreateUser(model.User{
		Username: "admin", PasswordHash: "h", Role: model.RoleAdmin, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := s.ToggleUserActive(adminID); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("ToggleUserActive on the only admin = %v, want ErrLastAdmin", err)
	}
	u, _ := s.GetUserByID(adminID)
	if u == nil || !u.Active {
		t.Error("refused toggle still deactivated the admin")
	}

	// With a second active admin the first one can be deactivated.
	if _, err := s.CreateUser(model.User{
		Username: "backup", PasswordHash: "h", Role: model.RoleAdmin, Active: true,
	}); err != nil {
		t.Fatalf("CreateUser backup: %v", err)
	}
	if err := s.ToggleUserActive(adminID); err != nil {
		t.Fatalf("ToggleUserActive with a backup admin: %v", err)
	}
}

func TestDeactivationRevokesSessions(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateUser(model.User{
		Username: "admin", PasswordHash: "h", Role: model.RoleAdmin, Active: true,
	}); err != nil {
		t.Fatalf("CreateUser admin: %v", err)
	}
	authorID, err := s.CreateUser(model.User{
		Username: "maya", PasswordHash: "h", Role: model.RoleAuthor, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := s.CreateAuthSession(authorID)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}

	if err := s.ToggleUserActive(authorID); err != nil {
		t.Fatalf("ToggleUserActive: %v", err)
	}
	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess != nil {
		t.Error("session survived the user's deactivation")
	}
}

func TestAuthSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	userID, err := s.CreateUser(model.User{
		Username: "maya", PasswordHash: "h", Role: model.RoleAuthor, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	token, err := s.CreateAuthSession(userID)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if token == "" {
		t.Fatal("empty session token")
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != userID {
		t.Errorf("session = %+v", sess)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession after delete: %v", err)
	}
	if sess != nil {
		t.Error("session survived delete")
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetMetadata("missing")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v != "" {
		t.Errorf("missing key = %q, want empty", v)
	}

	if err := s.SetLastOpenedQuiz("quiz-1"); err != nil {
		t.Fatalf("SetLastOpenedQuiz: %v", err)
	}
	if err := s.SetLastOpenedQuiz("quiz-2"); err != nil {
		t.Fatalf("SetLastOpenedQuiz again: %v", err)
	}
	got, err := s.LastOpenedQuiz()
	if err != nil {
		t.Fatalf("LastOpenedQuiz: %v", err)
	}
	if got != "quiz-2" {
		t.Errorf("LastOpenedQuiz = %q, want quiz-2", got)
	}
}
