package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codedrip/models"
)

// MockService is a mock implementation of the analysis service
type MockService struct {
	mock.Mock
}

func (m *MockService) Analyze(ctx context.Context, name, gitURL string) (*models.RepoAnalysis, error) {
	args := m.Called(ctx, name, gitURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RepoAnalysis), args.Error(1)
}

func (m *MockService) List(ctx context.Context) ([]models.RepoAnalysis, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RepoAnalysis), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, id string) (*models.RepoAnalysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RepoAnalysis), args.Error(1)
}

func (m *MockService) Ask(ctx context.Context, id, question string) (string, error) {
	args := m.Called(ctx, id, question)
	return args.String(0), args.Error(1)
}

func (m *MockService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, svc Service, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(svc, RouterConfig{})

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHome(t *testing.T) {
	w := perform(t, new(MockService), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Repo Explorer backend running!", decodeBody(t, w)["message"])
}

func TestHealth(t *testing.T) {
	t.Run("store reachable", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Ping", mock.Anything).Return(nil)

		w := perform(t, svc, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("store down", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Ping", mock.Anything).Return(fmt.Errorf("%w: connection refused", models.ErrPersistence))

		w := perform(t, svc, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "persistence error: connection refused", decodeBody(t, w)["error"])
	})
}

func TestListRepos(t *testing.T) {
	testCases := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "two analyses",
			setupMock: func(svc *MockService) {
				svc.On("List", mock.Anything).Return([]models.RepoAnalysis{
					{ID: "a1", Name: "gin"},
					{ID: "b2", Name: "echo"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "empty store renders an array",
			setupMock: func(svc *MockService) {
				svc.On("List", mock.Anything).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "store failure",
			setupMock: func(svc *MockService) {
				svc.On("List", mock.Anything).Return(nil, fmt.Errorf("%w: timeout", models.ErrPersistence))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"persistence error: timeout"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockService)
			tc.setupMock(svc)

			w := perform(t, svc, http.MethodGet, "/api/repos", "")
			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, w.Body.String())
			} else {
				var repos []map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repos))
				require.Len(t, repos, 2)
				assert.Equal(t, "a1", repos[0]["_id"])
				assert.Equal(t, "echo", repos[1]["name"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAnalyzeRepo(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "created",
			body: `{"name":"Gin","gitUrl":"https://github.com/gin-gonic/gin"}`,
			setupMock: func(svc *MockService) {
				svc.On("Analyze", mock.Anything, "Gin", "https://github.com/gin-gonic/gin").
					Return(&models.RepoAnalysis{ID: "abc", Name: "Gin", GitURL: "https://github.com/gin-gonic/gin"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing git url",
			body:           `{"name":"Gin"}`,
			setupMock:      func(svc *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Git URL is required",
		},
		{
			name:           "malformed body",
			body:           `{`,
			setupMock:      func(svc *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Git URL is required",
		},
		{
			name: "invalid url",
			body: `{"gitUrl":"not-a-url"}`,
			setupMock: func(svc *MockService) {
				svc.On("Analyze", mock.Anything, "", "not-a-url").
					Return(nil, models.NewInputError("Invalid GitHub URL format"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid GitHub URL format",
		},
		{
			name: "remote failure",
			body: `{"gitUrl":"https://github.com/acme/missing"}`,
			setupMock: func(svc *MockService) {
				svc.On("Analyze", mock.Anything, "", "https://github.com/acme/missing").
					Return(nil, fmt.Errorf("%w: GitHub API Error: Not Found", models.ErrRemoteAPI))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "remote api error: GitHub API Error: Not Found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockService)
			tc.setupMock(svc)

			w := perform(t, svc, http.MethodPost, "/api/repos", tc.body)
			assert.Equal(t, tc.expectedStatus, w.Code)

			body := decodeBody(t, w)
			if tc.expectedError != "" {
				assert.Equal(t, map[string]any{"error": tc.expectedError}, body)
			} else {
				assert.Equal(t, "abc", body["_id"])
				assert.Equal(t, "Gin", body["name"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestGetRepo(t *testing.T) {
	testCases := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "found",
			setupMock: func(svc *MockService) {
				svc.On("Get", mock.Anything, "abc").Return(&models.RepoAnalysis{ID: "abc", Name: "gin"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			setupMock: func(svc *MockService) {
				svc.On("Get", mock.Anything, "abc").Return(nil, fmt.Errorf("%w: analysis abc", models.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "Repository not found",
		},
		{
			name: "invalid id",
			setupMock: func(svc *MockService) {
				svc.On("Get", mock.Anything, "abc").Return(nil, fmt.Errorf("%w: %q is not a valid id", models.ErrInvalidID, "abc"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  `invalid id: "abc" is not a valid id`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockService)
			tc.setupMock(svc)

			w := perform(t, svc, http.MethodGet, "/api/repos/abc", "")
			assert.Equal(t, tc.expectedStatus, w.Code)

			body := decodeBody(t, w)
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, body["error"])
			} else {
				assert.Equal(t, "abc", body["_id"])
			}
		})
	}
}

func TestAskQuestion(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "answered",
			body: `{"question":"How does routing work?"}`,
			setupMock: func(svc *MockService) {
				svc.On("Ask", mock.Anything, "abc", "How does routing work?").Return("A radix tree.", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"answer":"A radix tree."}`,
		},
		{
			name:           "missing question",
			body:           `{}`,
			setupMock:      func(svc *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Question is required"}`,
		},
		{
			name: "repository not found",
			body: `{"question":"q"}`,
			setupMock: func(svc *MockService) {
				svc.On("Ask", mock.Anything, "abc", "q").Return("", models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Repository not found"}`,
		},
		{
			name: "retries exhausted",
			body: `{"question":"q"}`,
			setupMock: func(svc *MockService) {
				svc.On("Ask", mock.Anything, "abc", "q").Return("", errors.New("Gemini API error: quota exceeded"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Failed to generate answer: Gemini API error: quota exceeded"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockService)
			tc.setupMock(svc)

			w := perform(t, svc, http.MethodPost, "/api/repos/abc/ask", tc.body)
			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
