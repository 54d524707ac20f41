package api

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestTimeout bounds every request. A timed-out request fails like any
// other failed request, there is no dedicated retry.
const RequestTimeout = 2 * time.Minute

// Client issues authenticated requests against the marketplace backend. On
// an authorization failure it refreshes the token pair and retries the
// request exactly once; concurrent failures share a single refresh call
// serialized by refreshMu.
type Client struct {
	BaseUrl string
	Timeout time.Duration
	Session yozie.SessionStore

	refreshMu sync.Mutex
}

type Request struct {
	Method string
	Path   string

	// Body is JSON-serialized when set and no Files/Form are present.
	Body interface{}

	Query map[string]string

	// Form and Files turn the request into a multipart form submission.
	Form  map[string]string
	Files []Upload

	// Anonymous requests carry no bearer token and are never reauthorized.
	Anonymous bool
}

// Upload is one file part of a multipart submission (product photo, vendor
// identity document, logo).
type Upload struct {
	Field   string
	Name    string
	Content []byte
}

type Response struct {
	StatusCode int
	Body       []byte
}

// Do issues the request, transparently healing a single authorization
// failure. If a refresh is already in flight the caller blocks on refreshMu
// until it settles and then retries with whatever token it produced. A
// failed refresh ends the session and yields the original failure.
func (c *Client) Do(req Request) (Response, error) {
	resp, usedToken, err := c.send(req)
	if err != nil {
		return resp, err
	}
	if req.Anonymous || resp.StatusCode != fiber.StatusUnauthorized {
		return resp, nil
	}
	if !c.reauthorize(usedToken) {
		return resp, nil
	}
	retried, _, err := c.send(req)
	return retried, err
}

// reauthorize reports whether the request should be retried. It returns true
// either after a successful refresh or when another caller already replaced
// the token this request was sent with.
func (c *Client) reauthorize(usedToken string) bool {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	session, err := c.Session.Current()
	if err != nil {
		return false
	}
	if session.AccessToken != usedToken {
		// Refreshed by another request while waiting for the lock.
		return true
	}
	if session.RefreshToken == "" {
		c.endSession()
		return false
	}

	pair, err := c.refreshTokens(session.RefreshToken)
	if err != nil {
		logrus.WithError(err).Warningln("Token refresh failed, ending session.")
		c.endSession()
		return false
	}
	if err := c.Session.ReplaceTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		logrus.WithError(err).Errorln("Could not store refreshed tokens.")
		return false
	}
	logrus.Debugln("Token pair refreshed.")
	return true
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (c *Client) refreshTokens(refreshToken string) (tokenPair, error) {
	resp, _, err := c.send(Request{
		Method:    fiber.MethodPost,
		Path:      "/auth/refresh-token",
		Body:      map[string]string{"refreshToken": refreshToken},
		Anonymous: true,
	})
	if err != nil {
		return tokenPair{}, fmt.Errorf("refresh request: %w", err)
	}
	var pair tokenPair
	if err := resp.Decode(&pair); err != nil {
		return tokenPair{}, fmt.Errorf("refresh decode: %w", err)
	}
	if pair.AccessToken == "" {
		return tokenPair{}, errors.New("refresh response missing access token")
	}
	return pair, nil
}

func (c *Client) endSession() {
	if err := c.Session.Clear(); err != nil {
		logrus.WithError(err).Errorln("Could not clear session.")
	}
}

// send is the transport primitive: one request, bearer token attached from
// session state, fixed timeout. It returns the token it attached so Do can
// tell a stale failure from a fresh one.
func (c *Client) send(req Request) (Response, string, error) {
	token := ""
	if !req.Anonymous {
		session, err := c.Session.Current()
		if err == nil {
			token = session.AccessToken
		}
	}

	agent := fiber.AcquireAgent()
	defer fiber.ReleaseAgent(agent)

	r := agent.Request()
	r.Header.SetMethod(req.Method)
	r.SetRequestURI(c.BaseUrl + req.Path + encodeQuery(req.Query))
	if token != "" {
		r.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	switch {
	case len(req.Files) > 0 || len(req.Form) > 0:
		args := fiber.AcquireArgs()
		defer fiber.ReleaseArgs(args)
		for key, value := range req.Form {
			args.Set(key, value)
		}
		for i := range req.Files {
			file := req.Files[i]
			agent.FileData(&fiber.FormFile{
				Fieldname: file.Field,
				Name:      file.Name,
				Content:   file.Content,
			})
		}
		agent.MultipartForm(args)
	case req.Body != nil:
		agent.JSON(req.Body)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = RequestTimeout
	}
	agent.Timeout(timeout)

	if err := agent.Parse(); err != nil {
		return Response{}, token, fmt.Errorf("agent parse: %w", err)
	}
	statusCode, bodyBytes, errArr := agent.Bytes()
	if len(errArr) != 0 {
		return Response{}, token, fmt.Errorf("agent bytes: %v", errArr)
	}

	logrus.WithField("method", req.Method).
		WithField("path", req.Path).
		WithField("status", statusCode).
		Debugln("Request completed.")
	return Response{StatusCode: statusCode, Body: bodyBytes}, token, nil
}

func encodeQuery(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	return "?" + values.Encode()
}
