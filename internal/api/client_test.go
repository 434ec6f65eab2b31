package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvu/careboard/internal/model"
)

func TestRequestCarriesBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode([]model.Task{})
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret-token")
	_, err := c.ListTasks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode([]model.Task{{ID: 1, Title: "Draw labs"}})
	}))
	defer server.Close()

	c := NewClient(server.URL, "token")
	tasks, err := c.ListTasks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, attempts)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Draw labs", tasks[0].Title)
}

func TestErrorDetailIsParsed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"detail": "title must not be empty"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "token")
	_, err := c.CreateTask(context.Background(), model.Task{})

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "title must not be empty", apiErr.Detail)
	assert.Contains(t, apiErr.Error(), "title must not be empty")
}

func TestUnauthorizedBecomesAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(server.URL, "stale-token")
	_, err := c.ListTasks(context.Background())

	assert.True(t, IsAuthError(err))
}

func TestLoginInstallsToken(t *testing.T) {
	var taskAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(AuthResponse{
				Token: "fresh-token",
				User:  model.User{ID: 1, Username: "ngonzalez"},
			})
		case "/tasks":
			taskAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode([]model.Task{})
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	resp, err := c.Login(context.Background(), "n@example.org", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ngonzalez", resp.User.Username)

	_, err = c.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh-token", taskAuth)
}

func TestSignupInstallsToken(t *testing.T) {
	var taskAuth string
	var signupBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/signup":
			json.NewDecoder(r.Body).Decode(&signupBody)
			json.NewEncoder(w).Encode(AuthResponse{
				Token: "fresh-token",
				User:  model.User{ID: 7, Username: "rpatel"},
			})
		case "/tasks":
			taskAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode([]model.Task{})
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	resp, err := c.Signup(context.Background(), "r@example.org", "pw", "rpatel")
	require.NoError(t, err)
	assert.Equal(t, "rpatel", resp.User.Username)
	assert.Equal(t, "rpatel", signupBody["username"])

	_, err = c.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh-token", taskAuth)
}

func TestGetTaskFetchesByID(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewEncoder(w).Encode(model.Task{ID: 17, Title: "Draw labs"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "token")
	task, err := c.GetTask(context.Background(), 17)
	require.NoError(t, err)

	assert.Equal(t, "/tasks/17", path)
	assert.Equal(t, int64(17), task.ID)
	assert.Equal(t, "Draw labs", task.Title)
}

func TestCreatePatientPostsRecord(t *testing.T) {
	var method, path string
	var posted model.Patient
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&posted)
		posted.ID = 3
		json.NewEncoder(w).Encode(posted)
	}))
	defer server.Close()

	c := NewClient(server.URL, "token")
	created, err := c.CreatePatient(context.Background(), model.Patient{
		FirstName: "Ana", LastName: "Silva", HospitalID: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/patients", path)
	assert.Equal(t, "Ana", posted.FirstName)
	assert.Equal(t, int64(3), created.ID)
}

func TestDeletePatientCallsEndpoint(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL, "token")
	require.NoError(t, c.DeletePatient(context.Background(), 9))

	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/patients/9", path)
}

func TestDeleteSendsNoBodyAndAcceptsNoContent(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL, "token")
	require.NoError(t, c.DeleteTask(context.Background(), 42))

	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/tasks/42", path)
}
