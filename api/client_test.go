package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/inmem"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/mock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newSessionStore(accessToken string, refreshToken string) *inmem.SessionStore {
	store := inmem.NewSessionStore()
	store.Replace(yozie.Session{
		UserId:       "u1",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Profile:      yozie.User{Id: "u1", RawIds: []string{"u1"}},
	})
	return store
}

func Test_BearerTokenAttached(t *testing.T) {
	assert := assert.New(t)

	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := &Client{BaseUrl: server.URL, Session: newSessionStore("token-1", "refresh-1")}

	resp, err := client.Do(Request{Method: fiber.MethodGet, Path: "/anything"})
	if assert.NoError(err) {
		assert.Equal(fiber.StatusOK, resp.StatusCode)
		assert.Equal("Bearer token-1", authHeader)
	}

	_, err = client.Do(Request{Method: fiber.MethodGet, Path: "/anything", Anonymous: true})
	if assert.NoError(err) {
		assert.Equal("", authHeader)
	}
}

func Test_SingleFlightRefresh(t *testing.T) {
	assert := assert.New(t)

	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"accessToken":"fresh","refreshToken":"fresh-refresh"}`))
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sessions := newSessionStore("expired", "refresh-1")
	client := &Client{BaseUrl: server.URL, Session: sessions}

	const concurrent = 8
	var wg sync.WaitGroup
	responses := make([]Response, concurrent)
	errs := make([]error, concurrent)
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i], errs[i] = client.Do(Request{Method: fiber.MethodGet, Path: "/data"})
		}(i)
	}
	wg.Wait()

	assert.Equal(int32(1), atomic.LoadInt32(&refreshCalls),
		"concurrent 401s must share one refresh call")
	for i := 0; i < concurrent; i++ {
		if assert.NoError(errs[i]) {
			assert.Equal(fiber.StatusOK, responses[i].StatusCode)
		}
	}

	session, err := sessions.Current()
	if assert.NoError(err) {
		assert.Equal("fresh", session.AccessToken)
		assert.Equal("fresh-refresh", session.RefreshToken)
		assert.Equal(yozie.UserId("u1"), session.Profile.Id, "profile must survive a refresh")
	}
}

func Test_RefreshFailureEndsSession(t *testing.T) {
	assert := assert.New(t)

	var dataCalls, refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"refresh token revoked"}`))
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dataCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sessions := newSessionStore("expired", "revoked")
	client := &Client{BaseUrl: server.URL, Session: sessions}

	resp, err := client.Do(Request{Method: fiber.MethodGet, Path: "/data"})
	if assert.NoError(err) {
		assert.Equal(fiber.StatusUnauthorized, resp.StatusCode)
		assert.ErrorIs(resp.Err(), yozie.ErrUnauthorized)
	}

	assert.Equal(int32(1), atomic.LoadInt32(&dataCalls), "no retry after a failed refresh")
	assert.Equal(int32(1), atomic.LoadInt32(&refreshCalls))

	_, err = sessions.Current()
	assert.ErrorIs(err, yozie.ErrNoSession, "failed refresh is terminal for the session")
}

func Test_MissingRefreshTokenEndsSession(t *testing.T) {
	assert := assert.New(t)

	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sessions := newSessionStore("expired", "")
	client := &Client{BaseUrl: server.URL, Session: sessions}

	resp, err := client.Do(Request{Method: fiber.MethodGet, Path: "/data"})
	if assert.NoError(err) {
		assert.Equal(fiber.StatusUnauthorized, resp.StatusCode)
	}
	assert.Equal(int32(0), atomic.LoadInt32(&refreshCalls))
	_, err = sessions.Current()
	assert.ErrorIs(err, yozie.ErrNoSession)
}

func Test_TokenStoreFailureSkipsRetry(t *testing.T) {
	assert := assert.New(t)

	var dataCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accessToken":"fresh","refreshToken":"fresh-refresh"}`))
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dataCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sessions := mock.SessionStore{
		CurrentFn: func() (yozie.Session, error) {
			return yozie.Session{UserId: "u1", AccessToken: "expired", RefreshToken: "refresh-1"}, nil
		},
		ReplaceTokensFn: func(string, string) error {
			return errors.New("disk full")
		},
	}
	client := &Client{BaseUrl: server.URL, Session: sessions}

	resp, err := client.Do(Request{Method: fiber.MethodGet, Path: "/data"})
	if assert.NoError(err) {
		assert.Equal(fiber.StatusUnauthorized, resp.StatusCode)
	}
	assert.Equal(int32(1), atomic.LoadInt32(&dataCalls),
		"a token pair that cannot be stored must not be retried with")
}

func Test_QueryEncoding(t *testing.T) {
	assert := assert.New(t)

	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := &Client{BaseUrl: server.URL, Session: inmem.NewSessionStore()}
	_, err := client.Do(Request{
		Method:    fiber.MethodGet,
		Path:      "/products",
		Query:     map[string]string{"category": "shoes & bags"},
		Anonymous: true,
	})
	if assert.NoError(err) {
		assert.Equal("category=shoes+%26+bags", rawQuery)
	}
}
