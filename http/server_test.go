package http_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/pilot"
	"github.com/fwojciec/pilot/assistant"
	"github.com/fwojciec/pilot/http"
	"github.com/fwojciec/pilot/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const (
	testEmail    = "test@test.com"
	testPassword = "test123"
)

func testUsers() *mock.UserService {
	return &mock.UserService{
		AuthenticateFn: func(_ context.Context, email, password string) (*pilot.User, error) {
			if email == testEmail && password == testPassword {
				return &pilot.User{ID: "user-1", Email: email, Name: "Marie-Anne"}, nil
			}
			return nil, pilot.Errorf(pilot.EUNAUTHORIZED, "invalid credentials")
		},
	}
}

func testIndex() *pilot.Index {
	return pilot.NewIndex(
		&pilot.StudyDocument{
			Version:  "v1",
			Checksum: "0123456789abcdef",
			Sections: []*pilot.Section{{
				ID:      "financement",
				Numero:  "2",
				Titre:   "Financement",
				Contenu: "<p>Les OPCO financent.</p>",
				SousSections: []*pilot.Section{
					{ID: "akto", Numero: "2.1", Titre: "AKTO", Contenu: "<p>OPCO de branche.</p>"},
				},
			}},
		},
		&pilot.StudyDocument{
			Version:  "v2",
			Sections: []*pilot.Section{{ID: "segments", Numero: "1", Titre: "Segments", Contenu: "<p>OPCO et ESS.</p>"}},
		},
	)
}

func newTestServer() *http.Server {
	s := http.NewServer()
	s.Users = testUsers()
	s.Index = testIndex()
	return s
}

func newRequest(method, target, body string) *nethttp.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", basicAuth(testEmail, testPassword))
	return req
}

func basicAuth(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

func do(t *testing.T, s *http.Server, req *nethttp.Request) (*nethttp.Response, []byte) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServer_Authentication(t *testing.T) {
	t.Parallel()

	t.Run("missing credentials are rejected", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()
		req := httptest.NewRequest("GET", "/api/search?q=opco", nil)

		resp, body := do(t, s, req)

		assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, `Basic realm="pilot"`, resp.Header.Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"error":"Non authentifié"}`, string(body))
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()
		req := newRequest("GET", "/api/search?q=opco", "")
		req.Header.Set("Authorization", basicAuth(testEmail, "wrong"))

		resp, _ := do(t, s, req)

		assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("repeated failures are throttled", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()
		s.AuthLimiter = http.NewKeyLimiter(rate.Every(time.Hour), 2)

		for range 2 {
			req := newRequest("GET", "/api/search?q=opco", "")
			req.Header.Set("Authorization", basicAuth(testEmail, "wrong"))
			resp, _ := do(t, s, req)
			require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
		}

		resp, body := do(t, s, newRequest("GET", "/api/search?q=opco", ""))

		assert.Equal(t, nethttp.StatusTooManyRequests, resp.StatusCode)
		assert.Contains(t, string(body), "Trop de tentatives")
	})
}

func TestServer_AuthenticationIsRemembered(t *testing.T) {
	t.Parallel()

	t.Run("checks credentials once per session", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		users := testUsers()
		s := newTestServer()
		s.Users = &mock.UserService{
			AuthenticateFn: func(ctx context.Context, email, password string) (*pilot.User, error) {
				calls.Add(1)
				return users.Authenticate(ctx, email, password)
			},
		}

		for range 10 {
			resp, _ := do(t, s, newRequest("GET", "/api/search?q=opco", ""))
			require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		}

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("failed credentials are checked every time", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		users := testUsers()
		s := newTestServer()
		s.Users = &mock.UserService{
			AuthenticateFn: func(ctx context.Context, email, password string) (*pilot.User, error) {
				calls.Add(1)
				return users.Authenticate(ctx, email, password)
			},
		}

		for range 3 {
			req := newRequest("GET", "/api/search?q=opco", "")
			req.Header.Set("Authorization", basicAuth(testEmail, "wrong"))
			resp, _ := do(t, s, req)
			require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
		}

		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("different credentials are not served from the session", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()
		resp, _ := do(t, s, newRequest("GET", "/api/search?q=opco", ""))
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)

		req := newRequest("GET", "/api/search?q=opco", "")
		req.Header.Set("Authorization", basicAuth(testEmail, "wrong"))
		resp, _ = do(t, s, req)

		assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	})
}

func TestServer_Search(t *testing.T) {
	t.Parallel()

	t.Run("returns results with count", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()

		resp, body := do(t, s, newRequest("GET", "/api/search?q=OPCO", ""))

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		var got http.SearchResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "OPCO", got.Query)
		require.NotNil(t, got.Count)
		assert.Equal(t, 3, *got.Count)
		require.Len(t, got.Results, 3)
		assert.Equal(t, "financement", got.Results[0].SectionID)
		assert.Equal(t, "akto", got.Results[1].SectionID)
		assert.Equal(t, "financement", got.Results[1].ParentID)
		assert.Equal(t, "segments", got.Results[2].SectionID)
	})

	t.Run("filters by version", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()

		_, body := do(t, s, newRequest("GET", "/api/search?q=opco&version=v2", ""))

		var got http.SearchResponse
		require.NoError(t, json.Unmarshal(body, &got))
		require.Len(t, got.Results, 1)
		assert.Equal(t, "v2", got.Results[0].Version)
	})

	t.Run("short query returns bare empty results", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()

		resp, body := do(t, s, newRequest("GET", "/api/search?q=a", ""))

		assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"results":[]}`, string(body))
	})

	t.Run("unknown version is not found", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()

		resp, _ := do(t, s, newRequest("GET", "/api/search?q=opco&version=v9", ""))

		assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	})

	t.Run("serves repeated queries from cache", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()

		first, err := s.Search("opco", "v2")
		require.NoError(t, err)

		s.Index = pilot.NewIndex()
		second, err := s.Search("OPCO", "v2")
		require.NoError(t, err)

		assert.Equal(t, first.Results, second.Results)
		assert.Equal(t, "OPCO", second.Query)
	})

	t.Run("does not cache queries without results", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()
		s.Index = pilot.NewIndex()

		first, err := s.Search("opco", "")
		require.NoError(t, err)
		require.Empty(t, first.Results)

		s.Index = testIndex()
		second, err := s.Search("opco", "")
		require.NoError(t, err)

		assert.Len(t, second.Results, 3)
	})

	t.Run("stops caching when the cache is full", func(t *testing.T) {
		t.Parallel()

		s := http.NewServer(http.WithSearchCacheSize(1))
		s.Index = testIndex()

		_, err := s.Search("opco", "")
		require.NoError(t, err)
		_, err = s.Search("akto", "")
		require.NoError(t, err)

		s.Index = pilot.NewIndex()

		cached, err := s.Search("opco", "")
		require.NoError(t, err)
		assert.Len(t, cached.Results, 3)

		uncached, err := s.Search("akto", "")
		require.NoError(t, err)
		assert.Empty(t, uncached.Results)
	})
}

func TestServer_Study(t *testing.T) {
	t.Parallel()

	t.Run("returns document with etag", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()

		resp, body := do(t, s, newRequest("GET", "/etude/v1", ""))

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		assert.Equal(t, `"0123456789abcdef"`, resp.Header.Get("ETag"))
		var doc pilot.StudyDocument
		require.NoError(t, json.Unmarshal(body, &doc))
		assert.Equal(t, "v1", doc.Version)
		require.Len(t, doc.Sections, 1)
		assert.Len(t, doc.Sections[0].SousSections, 1)
	})

	t.Run("matching etag is not modified", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()
		req := newRequest("GET", "/etude/v1", "")
		req.Header.Set("If-None-Match", `"0123456789abcdef"`)

		resp, _ := do(t, s, req)

		assert.Equal(t, nethttp.StatusNotModified, resp.StatusCode)
	})

	t.Run("unknown version is not found", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()

		resp, _ := do(t, s, newRequest("GET", "/etude/v3", ""))

		assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	})

	t.Run("returns subsection", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()

		resp, body := do(t, s, newRequest("GET", "/etude/v1/section/akto", ""))

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		var section pilot.Section
		require.NoError(t, json.Unmarshal(body, &section))
		assert.Equal(t, "2.1", section.Numero)
	})

	t.Run("unknown section is not found", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()

		resp, _ := do(t, s, newRequest("GET", "/etude/v1/section/nope", ""))

		assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	})
}

// chatServer returns a server whose assistant stores one conversation per
// user in memory.
func chatServer(responder pilot.Responder) *http.Server {
	s := newTestServer()
	var msgs []*pilot.Message
	convs := &mock.ConversationService{
		CreateConversationFn: func(_ context.Context, conv *pilot.Conversation) error {
			conv.ID = "conv-1"
			return nil
		},
		FindConversationByIDFn: func(_ context.Context, userID, id string) (*pilot.Conversation, error) {
			if id != "conv-1" || userID != "user-1" {
				return nil, pilot.Errorf(pilot.ENOTFOUND, "conversation not found")
			}
			return &pilot.Conversation{ID: id, UserID: userID, Title: "Bonjour..."}, nil
		},
		FindConversationsFn: func(context.Context, string) ([]*pilot.Conversation, error) {
			return nil, nil
		},
		CreateMessageFn: func(_ context.Context, msg *pilot.Message) error {
			msgs = append(msgs, msg)
			return nil
		},
		FindMessagesFn: func(context.Context, string) ([]*pilot.Message, error) {
			return msgs, nil
		},
		TouchConversationFn: func(context.Context, string) error { return nil },
	}
	s.Assistant = &assistant.Session{
		Conversations: convs,
		Checklist: &mock.ChecklistService{
			FindChecklistResponsesFn: func(context.Context, string) ([]*pilot.ChecklistResponse, error) {
				return nil, nil
			},
		},
		Responder: responder,
	}
	return s
}

func TestServer_Assistant(t *testing.T) {
	t.Parallel()

	t.Run("message returns reply", func(t *testing.T) {
		t.Parallel()

		s := chatServer(pilot.NewMatcher())

		resp, body := do(t, s, newRequest("POST", "/api/assistant/message",
			`{"message":"Quels OPCO peuvent financer ?","context":"Étude V2"}`))

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		var got http.MessageResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.True(t, got.Success)
		assert.Equal(t, "conv-1", got.ConversationID)
		assert.True(t, strings.HasPrefix(got.Response, "Les OPCO"))
	})

	t.Run("blank message is a bad request", func(t *testing.T) {
		t.Parallel()

		s := chatServer(pilot.NewMatcher())

		resp, body := do(t, s, newRequest("POST", "/api/assistant/message", `{"message":"   "}`))

		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Message requis"}`, string(body))
	})

	t.Run("unknown conversation is not found", func(t *testing.T) {
		t.Parallel()

		s := chatServer(pilot.NewMatcher())

		resp, _ := do(t, s, newRequest("POST", "/api/assistant/message",
			`{"message":"Bonjour","conversationId":"other"}`))

		assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	})

	t.Run("chat turns are rate limited per user", func(t *testing.T) {
		t.Parallel()

		s := chatServer(pilot.NewMatcher())
		s.ChatLimiter = http.NewKeyLimiter(rate.Every(time.Hour), 1)

		first, _ := do(t, s, newRequest("POST", "/api/assistant/message", `{"message":"Bonjour"}`))
		second, body := do(t, s, newRequest("POST", "/api/assistant/message", `{"message":"Bonjour"}`))

		assert.Equal(t, nethttp.StatusOK, first.StatusCode)
		assert.Equal(t, nethttp.StatusTooManyRequests, second.StatusCode)
		assert.Contains(t, string(body), "Trop de messages")
	})

	t.Run("conversation returns messages", func(t *testing.T) {
		t.Parallel()

		s := chatServer(pilot.NewMatcher())
		do(t, s, newRequest("POST", "/api/assistant/message", `{"message":"Bonjour"}`))

		resp, body := do(t, s, newRequest("GET", "/api/assistant/conversation/conv-1", ""))

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		var got http.ConversationResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "conv-1", got.Conversation.ID)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, pilot.RoleUser, got.Messages[0].Role)
		assert.Equal(t, pilot.RoleAssistant, got.Messages[1].Role)
	})

	t.Run("new conversation", func(t *testing.T) {
		t.Parallel()

		s := chatServer(pilot.NewMatcher())

		resp, body := do(t, s, newRequest("POST", "/api/assistant/new", ""))

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true,"conversationId":"conv-1","response":""}`, string(body))
	})

	t.Run("empty history is an empty array", func(t *testing.T) {
		t.Parallel()

		s := chatServer(pilot.NewMatcher())

		_, body := do(t, s, newRequest("GET", "/api/assistant/history", ""))

		assert.JSONEq(t, `[]`, string(body))
	})
}

func TestServer_Checklist(t *testing.T) {
	t.Parallel()

	t.Run("lists responses keyed by field", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()
		s.Checklist = &mock.ChecklistService{
			FindChecklistResponsesFn: func(_ context.Context, userID string) ([]*pilot.ChecklistResponse, error) {
				if userID != "user-1" {
					return nil, pilot.Errorf(pilot.ENOTFOUND, "unexpected user %q", userID)
				}
				return []*pilot.ChecklistResponse{
					{FieldID: "ca", Value: pilot.PrimitiveValue("500000"), UpdatedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)},
					{FieldID: "segments", Value: pilot.ChecklistValue{Kind: pilot.ValueStructured, Raw: `["ess"]`}, UpdatedAt: time.Date(2026, 1, 15, 10, 31, 0, 0, time.UTC)},
				}, nil
			},
		}

		resp, body := do(t, s, newRequest("GET", "/api/checklist", ""))

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{
			"ca": {"value": "500000", "updated_at": "2026-01-15 10:30:00"},
			"segments": {"value": ["ess"], "updated_at": "2026-01-15 10:31:00"}
		}`, string(body))
	})

	t.Run("saves structured value", func(t *testing.T) {
		t.Parallel()

		var saved *pilot.ChecklistResponse
		s := newTestServer()
		s.Checklist = &mock.ChecklistService{
			SaveChecklistResponseFn: func(_ context.Context, userID string, resp *pilot.ChecklistResponse) error {
				saved = resp
				return nil
			},
		}

		resp, body := do(t, s, newRequest("PUT", "/api/checklist/segments", `{"value":["ess","medico"]}`))

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true,"field_id":"segments"}`, string(body))
		require.NotNil(t, saved)
		assert.Equal(t, "segments", saved.FieldID)
		assert.Equal(t, pilot.ChecklistValue{Kind: pilot.ValueStructured, Raw: `["ess","medico"]`}, saved.Value)
	})

	t.Run("invalid body is a bad request", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()
		s.Checklist = &mock.ChecklistService{}

		resp, _ := do(t, s, newRequest("PUT", "/api/checklist/ca", `{`))

		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	})

	t.Run("deletes response", func(t *testing.T) {
		t.Parallel()

		var deleted string
		s := newTestServer()
		s.Checklist = &mock.ChecklistService{
			DeleteChecklistResponseFn: func(_ context.Context, _ string, fieldID string) error {
				deleted = fieldID
				return nil
			},
		}

		resp, _ := do(t, s, newRequest("DELETE", "/api/checklist/ca", ""))

		assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
		assert.Equal(t, "ca", deleted)
	})

	t.Run("reports progress", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()
		s.ChecklistDef = &pilot.Checklist{Sections: []*pilot.ChecklistSection{{
			ID: "fin", Titre: "Financement", Priorite: pilot.PriorityCritical,
			Fields: []*pilot.ChecklistField{{ID: "ca", Label: "CA"}, {ID: "opco", Label: "OPCO"}},
		}}}
		s.Checklist = &mock.ChecklistService{
			FindChecklistResponsesFn: func(context.Context, string) ([]*pilot.ChecklistResponse, error) {
				return []*pilot.ChecklistResponse{{FieldID: "ca", Value: pilot.PrimitiveValue("1")}}, nil
			},
		}

		_, body := do(t, s, newRequest("GET", "/api/checklist/progress", ""))

		assert.JSONEq(t, `{
			"total": 2, "completed": 1, "percentage": 50,
			"criticalActions": [{"fieldId": "opco", "label": "OPCO", "section": "Financement"}]
		}`, string(body))
	})

	t.Run("store failure is an internal error without detail", func(t *testing.T) {
		t.Parallel()

		s := newTestServer()
		s.Checklist = &mock.ChecklistService{
			FindChecklistResponsesFn: func(context.Context, string) ([]*pilot.ChecklistResponse, error) {
				return nil, errors.New("database is locked")
			},
		}

		resp, body := do(t, s, newRequest("GET", "/api/checklist", ""))

		assert.Equal(t, nethttp.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Erreur interne."}`, string(body))
	})
}

func TestServer_UnknownRoute(t *testing.T) {
	t.Parallel()

	s := newTestServer()

	resp, body := do(t, s, newRequest("GET", "/api/nope", ""))

	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"error"`)
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, nethttp.StatusBadRequest, http.ErrorStatusCode(pilot.EINVALID))
	assert.Equal(t, nethttp.StatusNotFound, http.ErrorStatusCode(pilot.ENOTFOUND))
	assert.Equal(t, nethttp.StatusUnauthorized, http.ErrorStatusCode(pilot.EUNAUTHORIZED))
	assert.Equal(t, nethttp.StatusInternalServerError, http.ErrorStatusCode("unknown"))
}

func TestKeyLimiter(t *testing.T) {
	t.Parallel()

	l := http.NewKeyLimiter(rate.Every(time.Hour), 2)

	assert.False(t, l.Exhausted("a"))
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Exhausted("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys are limited independently")
}
