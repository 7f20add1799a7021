// Package client is a typed wrapper over the question bank HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

type Config struct {
	BaseURL string
	Token   string // bearer token from Login; empty for anonymous calls
	Timeout time.Duration
	// HTTPClient is the base transport; http.DefaultClient when nil.
	HTTPClient *http.Client
}

type Client struct {
	base string
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	h := base
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		h = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}))
	}
	if cfg.Timeout > 0 {
		cp := *h
		cp.Timeout = cfg.Timeout
		h = &cp
	}
	return &Client{base: strings.TrimSuffix(cfg.BaseURL, "/"), cfg: cfg, http: h}
}

// WithToken returns a copy of c that sends tok as its bearer credential.
func (c *Client) WithToken(tok string) *Client {
	cfg := c.cfg
	cfg.Token = tok
	return New(cfg)
}

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Kind   string `json:"error"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api: %d %s", e.Status, e.Kind)
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, &out)
	return out, err
}

func (c *Client) CreateQuestion(ctx context.Context, in QuestionInput) (Question, error) {
	var out Question
	err := c.do(ctx, http.MethodPost, "/questions", in, &out)
	return out, err
}

func (c *Client) ListQuestions(ctx context.Context, f QuestionFilter) ([]Question, error) {
	p := url.Values{}
	if f.Discipline != "" {
		p.Set("discipline", f.Discipline)
	}
	if f.Subject != "" {
		p.Set("subject", f.Subject)
	}
	path := "/questions"
	if len(p) > 0 {
		path += "?" + p.Encode()
	}
	var out []Question
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) GetQuestion(ctx context.Context, id int64) (Question, error) {
	var out Question
	err := c.do(ctx, http.MethodGet, "/questions/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

func (c *Client) UpdateQuestion(ctx context.Context, id int64, in QuestionInput) (Question, error) {
	var out Question
	err := c.do(ctx, http.MethodPut, "/questions/"+strconv.FormatInt(id, 10), in, &out)
	return out, err
}

func (c *Client) DeleteQuestion(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/questions/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) CreateExam(ctx context.Context, in ExamInput) (Exam, error) {
	var out Exam
	err := c.do(ctx, http.MethodPost, "/exams", in, &out)
	return out, err
}

func (c *Client) ListExams(ctx context.Context) ([]Exam, error) {
	var out []Exam
	err := c.do(ctx, http.MethodGet, "/exams", nil, &out)
	return out, err
}

func (c *Client) GetExam(ctx context.Context, id int64) (Exam, error) {
	var out Exam
	err := c.do(ctx, http.MethodGet, "/exams/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

func (c *Client) UpdateExam(ctx context.Context, id int64, in ExamInput) (Exam, error) {
	var out Exam
	err := c.do(ctx, http.MethodPut, "/exams/"+strconv.FormatInt(id, 10), in, &out)
	return out, err
}

func (c *Client) DeleteExam(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/exams/"+strconv.FormatInt(id, 10), nil, nil)
}

// ExportExam downloads the exam as a QTI zip package.
func (c *Client) ExportExam(ctx context.Context, id int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/exams/"+strconv.FormatInt(id, 10)+"/export", nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return nil, decodeAPIError(res)
	}
	return io.ReadAll(res.Body)
}

func (c *Client) Dashboard(ctx context.Context) (Stats, error) {
	var out Stats
	err := c.do(ctx, http.MethodGet, "/dashboard", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return decodeAPIError(res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	e := &APIError{Status: res.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if json.Unmarshal(b, e) != nil || e.Kind == "" {
		e.Kind = strings.TrimSpace(string(b))
		if e.Kind == "" {
			e.Kind = http.StatusText(res.StatusCode)
		}
	}
	return e
}
