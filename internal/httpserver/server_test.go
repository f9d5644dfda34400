package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/history"
	"github.com/robalobadob/wordle-solver/internal/store"
	"github.com/robalobadob/wordle-solver/internal/words"
)

var testWords = []string{
	"crane", "slate", "pious", "dumpy", "whack",
	"fjord", "glyph", "brick", "stomp", "vexed",
}

func testTable(t *testing.T) *feedback.Table {
	t.Helper()
	v, _ := words.FromStrings(testWords)
	tbl, err := feedback.Build(context.Background(), v)
	require.NoError(t, err)
	return tbl
}

func newTestServer(t *testing.T, tbl *feedback.Table, hist *history.Store, rows int) *Server {
	t.Helper()
	return New(store.NewMemoryStore(), tbl, hist, Options{Secret: []byte("test-secret"), MaxRows: rows})
}

// do performs a request against the router and decodes a JSON body into out
// when out is non-nil.
func do(t *testing.T, s *Server, method, path, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func create(t *testing.T, s *Server) createRes {
	t.Helper()
	var res createRes
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/sessions", "", nil, &res))
	require.NotEmpty(t, res.SessionID)
	require.NotEmpty(t, res.Token)
	return res
}

func patternFor(guess, target string) string {
	return feedback.Score(words.MustParse(guess), words.MustParse(target)).String()
}

func TestHealthAndDebug(t *testing.T) {
	s := newTestServer(t, testTable(t), nil, 6)

	var health map[string]bool
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "", nil, &health))
	assert.True(t, health["ok"])

	var dbg map[string]any
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/debug/words", "", nil, &dbg))
	assert.EqualValues(t, 10, dbg["size"])
	assert.NotEmpty(t, dbg["fingerprint"])

	var nf map[string]string
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/nope", "", nil, &nf))
	assert.Equal(t, "not_found", nf["error"])
}

func TestScore(t *testing.T) {
	s := newTestServer(t, testTable(t), nil, 6)

	var res scoreRes
	code := do(t, s, http.MethodPost, "/score", "", scoreReq{Guess: "crane", Target: "brick"}, &res)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, patternFor("crane", "brick"), res.Pattern)
	assert.Len(t, res.Marks, words.Length)
	assert.Equal(t, "misplaced", res.Marks[0])
	assert.Equal(t, "correct", res.Marks[1])

	var e map[string]string
	code = do(t, s, http.MethodPost, "/score", "", scoreReq{Guess: "zebra", Target: "brick"}, &e)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, e["error"], "zebra")

	code = do(t, s, http.MethodPost, "/score", "", scoreReq{Guess: "toolong", Target: "brick"}, &e)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSessionAuth(t *testing.T) {
	s := newTestServer(t, testTable(t), nil, 6)
	a := create(t, s)
	b := create(t, s)

	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/sessions/"+a.SessionID, "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/sessions/"+a.SessionID, "garbage", nil, nil))
	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodGet, "/sessions/"+a.SessionID, b.Token, nil, nil))

	other := New(store.NewMemoryStore(), s.table, nil, Options{Secret: []byte("other-secret")})
	assert.Equal(t, http.StatusUnauthorized, do(t, other, http.MethodGet, "/sessions/"+a.SessionID, a.Token, nil, nil))

	var view sessionView
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/sessions/"+a.SessionID, a.Token, nil, &view))
	assert.Equal(t, 10, view.Remaining)
	assert.Empty(t, view.Rows)
	assert.Equal(t, 6, view.MaxRows)
}

func TestSessionFlow(t *testing.T) {
	s := newTestServer(t, testTable(t), nil, 6)
	sess := create(t, s)
	base := "/sessions/" + sess.SessionID
	assert.Equal(t, 10, sess.Remaining)

	var sugg []suggestionView
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, base+"/suggestions?limit=3", sess.Token, nil, &sugg))
	require.Len(t, sugg, 3)
	assert.True(t, slices.IsSortedFunc(sugg, func(a, b suggestionView) int {
		switch {
		case a.Bits > b.Bits:
			return -1
		case a.Bits < b.Bits:
			return 1
		}
		return 0
	}))
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, base+"/suggestions?limit=0", sess.Token, nil, nil))

	var fb feedbackRes
	req := feedbackReq{Guess: "crane", Pattern: patternFor("crane", "brick")}
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, base+"/feedback", sess.Token, req, &fb))
	assert.Equal(t, 1, fb.Row)
	assert.False(t, fb.Solved)
	assert.Less(t, fb.Remaining, 10)

	var sol solutionsRes
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, base+"/solutions", sess.Token, nil, &sol))
	assert.Equal(t, fb.Remaining, sol.Count)
	assert.Contains(t, sol.Words, "brick")
	assert.True(t, slices.IsSorted(sol.Words))

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, base+"/feedback", sess.Token, feedbackReq{Guess: "brick", Pattern: "*****"}, &fb))
	assert.True(t, fb.Solved)
	assert.True(t, fb.Finished)
	assert.Equal(t, "brick", fb.Solution)

	var e map[string]string
	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPost, base+"/feedback", sess.Token, feedbackReq{Guess: "slate", Pattern: patternFor("slate", "brick")}, &e))
	assert.Equal(t, store.ErrFinished.Error(), e["error"])

	var view sessionView
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, base, sess.Token, nil, &view))
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "crane", view.Rows[0].Guess)
	assert.True(t, view.Solved)
	assert.Equal(t, 1, view.Remaining)
}

func TestFeedbackErrors(t *testing.T) {
	s := newTestServer(t, testTable(t), nil, 2)
	sess := create(t, s)
	base := "/sessions/" + sess.SessionID

	var e map[string]string
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, base+"/feedback", sess.Token, feedbackReq{Guess: "crane", Pattern: "**"}, &e))
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, base+"/feedback", sess.Token, feedbackReq{Guess: "cr4ne", Pattern: "-----"}, &e))
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodPost, base+"/feedback", sess.Token, feedbackReq{Guess: "zebra", Pattern: "-----"}, &e))

	for range 2 {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, base+"/feedback", sess.Token, feedbackReq{Guess: "slate", Pattern: "-----"}, nil))
	}
	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPost, base+"/feedback", sess.Token, feedbackReq{Guess: "slate", Pattern: "-----"}, &e))
	assert.Equal(t, store.ErrRowsExhausted.Error(), e["error"])

	var reset map[string]int
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, base+"/reset", sess.Token, nil, &reset))
	assert.Equal(t, 10, reset["remaining"])
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, base+"/feedback", sess.Token, feedbackReq{Guess: "slate", Pattern: "-----"}, nil))
}

func TestReplaceVocabulary(t *testing.T) {
	s := newTestServer(t, testTable(t), nil, 6)
	sess := create(t, s)
	base := "/sessions/" + sess.SessionID

	var res vocabularyRes
	body := vocabularyReq{Words: []string{"żółty", "łóżko", "ŻÓŁTY", "abc", "kotek"}}
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, base+"/vocabulary", sess.Token, body, &res))
	assert.Equal(t, 3, res.Accepted)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, []string{"abc"}, res.Rejected)
	assert.Equal(t, 3, res.Remaining)

	var fb feedbackRes
	req := feedbackReq{Guess: "żółty", Pattern: patternFor("żółty", "łóżko")}
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, base+"/feedback", sess.Token, req, &fb))
	assert.Equal(t, 1, fb.Remaining)
	assert.Equal(t, "łóżko", fb.Solution)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, base+"/vocabulary", sess.Token, vocabularyReq{Words: []string{"x"}}, nil))

	// The shared table is untouched for other sessions.
	other := create(t, s)
	var view sessionView
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/sessions/"+other.SessionID, other.Token, nil, &view))
	assert.Equal(t, 10, view.VocabularySize)
}

func TestSessionReplayedFromHistory(t *testing.T) {
	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	tbl := testTable(t)
	first := newTestServer(t, tbl, hist, 6)
	sess := create(t, first)
	base := "/sessions/" + sess.SessionID

	var fb feedbackRes
	req := feedbackReq{Guess: "crane", Pattern: patternFor("crane", "stomp")}
	require.Equal(t, http.StatusOK, do(t, first, http.MethodPost, base+"/feedback", sess.Token, req, &fb))

	// A fresh server with an empty memory store, as after a restart.
	second := newTestServer(t, tbl, hist, 6)
	var view sessionView
	require.Equal(t, http.StatusOK, do(t, second, http.MethodGet, base, sess.Token, nil, &view))
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "crane", view.Rows[0].Guess)
	assert.Equal(t, fb.Remaining, view.Remaining)

	row, err := hist.Session(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, history.StatusPlaying, row.Status)

	require.Equal(t, http.StatusOK, do(t, second, http.MethodPost, base+"/feedback", sess.Token, feedbackReq{Guess: "stomp", Pattern: "*****"}, &fb))
	row, err = hist.Session(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, history.StatusSolved, row.Status)

	// Nothing is logged once the game is over.
	assert.Equal(t, http.StatusConflict, do(t, second, http.MethodPost, base+"/feedback", sess.Token, feedbackReq{Guess: "slate", Pattern: "-----"}, nil))
	rows, err := hist.Observations(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	row, err = hist.Session(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, history.StatusSolved, row.Status)
}

func TestUnknownSessionWithValidToken(t *testing.T) {
	s := newTestServer(t, testTable(t), nil, 6)
	tok, _, err := s.signToken("ghost")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/sessions/ghost", tok, nil, nil))
}

func TestReplaceVocabularyTooLarge(t *testing.T) {
	s := New(store.NewMemoryStore(), testTable(t), nil, Options{Secret: []byte("test-secret"), MaxVocabulary: 3})
	sess := create(t, s)
	base := "/sessions/" + sess.SessionID

	var e map[string]string
	body := vocabularyReq{Words: []string{"crane", "slate", "pious", "dumpy"}}
	assert.Equal(t, http.StatusRequestEntityTooLarge, do(t, s, http.MethodPut, base+"/vocabulary", sess.Token, body, &e))
	assert.Equal(t, "vocabulary_too_large", e["error"])

	huge := make([]string, 2000)
	for i := range huge {
		huge[i] = "crane"
	}
	assert.Equal(t, http.StatusRequestEntityTooLarge, do(t, s, http.MethodPut, base+"/vocabulary", sess.Token, vocabularyReq{Words: huge}, &e))

	var view sessionView
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, base, sess.Token, nil, &view))
	assert.Equal(t, 10, view.VocabularySize, "rejected uploads leave the session alone")

	var res vocabularyRes
	body = vocabularyReq{Words: []string{"crane", "slate", "pious"}}
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, base+"/vocabulary", sess.Token, body, &res))
	assert.Equal(t, 3, res.Remaining)
}

func TestConcurrentReplays(t *testing.T) {
	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	tbl := testTable(t)
	first := newTestServer(t, tbl, hist, 6)
	a, b := create(t, first), create(t, first)
	for _, sess := range []createRes{a, b} {
		req := feedbackReq{Guess: "crane", Pattern: patternFor("crane", "stomp")}
		require.Equal(t, http.StatusOK, do(t, first, http.MethodPost, "/sessions/"+sess.SessionID+"/feedback", sess.Token, req, nil))
	}

	second := newTestServer(t, tbl, hist, 6)
	var wg sync.WaitGroup
	for i := range 8 {
		sess := []createRes{a, b}[i%2]
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, http.StatusOK, do(t, second, http.MethodGet, "/sessions/"+sess.SessionID, sess.Token, nil, nil))
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, second.store.Len())

	var view sessionView
	require.Equal(t, http.StatusOK, do(t, second, http.MethodGet, "/sessions/"+a.SessionID, a.Token, nil, &view))
	assert.Len(t, view.Rows, 1)
}
