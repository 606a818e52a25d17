package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/panecraft/pkg/cache"
	"github.com/matzehuels/panecraft/pkg/design"
	perrors "github.com/matzehuels/panecraft/pkg/errors"
	"github.com/matzehuels/panecraft/pkg/observability"
	"github.com/matzehuels/panecraft/pkg/project"
)

type testServer struct {
	*Server
	ts *httptest.Server
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	if opts.Projects == nil {
		opts.Projects = project.NewMemoryStore()
	}
	s, err := New(opts)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return &testServer{Server: s, ts: ts}
}

// call sends a JSON request and returns the status and body.
func (s *testServer) call(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			buf, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(buf)
		}
	}
	req, err := http.NewRequest(method, s.ts.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func errCode(t *testing.T, body []byte) perrors.Code {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e.Error.Code
}

func decodeInto[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	status, body := s.call(t, http.MethodPost, "/api/sessions", "", loginRequest{Email: email})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decodeInto[sessionResponse](t, body).Token
}

func (s *testServer) createProject(t *testing.T, token, title string) *project.Project {
	t.Helper()
	status, body := s.call(t, http.MethodPost, "/api/projects", token, createProjectRequest{Title: title})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decodeInto[*project.Project](t, body)
}

func paragraph(title string) map[string]any {
	return map[string]any{"node": map[string]any{
		"type":       "Widget",
		"widgetType": "Paragraph",
		"data":       map[string]any{"title": title},
	}}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})
	status, body := s.call(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"status":"ok","version":"dev (none, unknown)"}`, string(body))
}

func TestOptionsRequireProjects(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, Options{})

	status, body := s.call(t, http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, perrors.ErrCodeUnauthorized, errCode(t, body))

	status, body = s.call(t, http.MethodGet, "/api/projects", "not-a-session", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, perrors.ErrCodeSessionExpired, errCode(t, body))

	status, _ = s.call(t, http.MethodGet, "/api/projects", "../../etc/passwd", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t, Options{})

	token := s.login(t, "Ada@Example.com")
	require.NotEmpty(t, token)

	status, body := s.call(t, http.MethodGet, "/api/session", token, nil)
	require.Equal(t, http.StatusOK, status)
	who := decodeInto[sessionResponse](t, body)
	require.Equal(t, "ada@example.com", who.User.Email)
	require.Equal(t, "ada", who.User.Name)
	require.Empty(t, who.Token)

	status, _ = s.call(t, http.MethodDelete, "/api/session", token, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = s.call(t, http.MethodGet, "/api/session", token, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = s.call(t, http.MethodPost, "/api/sessions", "", loginRequest{Email: "nope"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, perrors.ErrCodeInvalidCredential, errCode(t, body))

	status, body = s.call(t, http.MethodPost, "/api/sessions", "", `{"email":"a@b.co","password":"x"}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, perrors.ErrCodeInvalidInput, errCode(t, body))
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestServer(t, Options{NoAuth: true})

	p := s.createProject(t, "", "  Dashboard ")
	require.Equal(t, "Dashboard", p.Title)
	require.Equal(t, "local", p.UserID)
	require.NoError(t, p.Design.Validate())

	status, body := s.call(t, http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusOK, status)
	page := decodeInto[project.Page](t, body)
	require.Len(t, page.Projects, 1)
	require.False(t, page.HasMore)

	status, body = s.call(t, http.MethodPatch, "/api/projects/"+p.ID, "", map[string]any{"title": "Ops"})
	require.Equal(t, http.StatusOK, status, string(body))
	require.Equal(t, "Ops", decodeInto[*project.Project](t, body).Title)

	status, body = s.call(t, http.MethodPatch, "/api/projects/"+p.ID, "", map[string]any{"title": "  "})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, perrors.ErrCodeInvalidInput, errCode(t, body))

	status, _ = s.call(t, http.MethodDelete, "/api/projects/"+p.ID, "", nil)
	require.Equal(t, http.StatusNoContent, status)

	status, body = s.call(t, http.MethodGet, "/api/projects/"+p.ID, "", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, perrors.ErrCodeProjectNotFound, errCode(t, body))
}

func TestListProjectsBadQuery(t *testing.T) {
	s := newTestServer(t, Options{NoAuth: true})

	status, _ := s.call(t, http.MethodGet, "/api/projects?limit=abc", "", nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, body := s.call(t, http.MethodGet, "/api/projects?after=!!", "", nil)
	require.Equal(t, http.StatusBadRequest, status, string(body))
}

func TestTreeMutations(t *testing.T) {
	s := newTestServer(t, Options{NoAuth: true})
	p := s.createProject(t, "", "Tree")
	base := "/api/projects/" + p.ID
	root := p.Design.RootID

	status, body := s.call(t, http.MethodPost, base+"/nodes", "", paragraph("One"))
	require.Equal(t, http.StatusOK, status, string(body))
	first := decodeInto[treeResponse](t, body)
	require.NotEmpty(t, first.ID)
	require.Equal(t, []design.Constraint{design.Percentage(100)}, first.Design.Nodes[root].Constraints)

	status, body = s.call(t, http.MethodPost, base+"/nodes", "", paragraph("Two"))
	require.Equal(t, http.StatusOK, status, string(body))
	second := decodeInto[treeResponse](t, body)
	require.Equal(t, []design.Constraint{design.Percentage(80), design.Percentage(20)}, second.Design.Nodes[root].Constraints)

	// Every mutation is persisted.
	stored, err := s.opts.Projects.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Design.Nodes, 3)

	status, body = s.call(t, http.MethodPost, base+"/nodes/"+root+"/constraints/0/resize", "", resizeRequest{Delta: 10})
	require.Equal(t, http.StatusOK, status, string(body))
	resized := decodeInto[treeResponse](t, body)
	require.Equal(t, []design.Constraint{design.Percentage(90), design.Percentage(10)}, resized.Design.Nodes[root].Constraints)

	status, body = s.call(t, http.MethodPut, base+"/nodes/"+root+"/constraints/1", "", map[string]any{"type": "Length", "value": 3})
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decodeInto[treeResponse](t, body)
	require.Equal(t, []design.Constraint{design.Percentage(90), design.Length(3)}, updated.Design.Nodes[root].Constraints)

	status, body = s.call(t, http.MethodPost, base+"/nodes/"+second.ID+"/move", "", moveNodeRequest{ParentID: root, Index: 0})
	require.Equal(t, http.StatusOK, status, string(body))
	moved := decodeInto[treeResponse](t, body)
	require.Equal(t, []string{second.ID, first.ID}, moved.Design.Nodes[root].Children)

	status, body = s.call(t, http.MethodPatch, base+"/nodes/"+first.ID, "", map[string]any{"title": "Renamed", "borderStyle": "Rounded"})
	require.Equal(t, http.StatusOK, status, string(body))
	props := decodeInto[treeResponse](t, body)
	require.Equal(t, "Renamed", props.Design.Nodes[first.ID].Data.Heading())

	status, body = s.call(t, http.MethodDelete, base+"/nodes/"+second.ID, "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	deleted := decodeInto[treeResponse](t, body)
	require.Len(t, deleted.Design.Nodes, 2)

	status, body = s.call(t, http.MethodGet, base+"/tree", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, deleted.Design, decodeInto[treeResponse](t, body).Design)
}

func TestTreeErrors(t *testing.T) {
	s := newTestServer(t, Options{NoAuth: true})
	p := s.createProject(t, "", "Errors")
	base := "/api/projects/" + p.ID
	root := p.Design.RootID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   perrors.Code
	}{
		{"missing parent", http.MethodPost, "/nodes", map[string]any{"parentId": "ghost", "node": paragraph("x")["node"]}, 404, perrors.ErrCodeNodeNotFound},
		{"bad color", http.MethodPost, "/nodes", map[string]any{"node": map[string]any{
			"type": "Widget", "widgetType": "Block", "data": map[string]any{"textColor": "red"},
		}}, 400, perrors.ErrCodeInvalidColor},
		{"unknown node type", http.MethodPost, "/nodes", map[string]any{"node": map[string]any{"type": "Sprite"}}, 400, perrors.ErrCodeInvalidInput},
		{"delete root", http.MethodDelete, "/nodes/" + root, nil, 400, perrors.ErrCodeInvalidInput},
		{"move root", http.MethodPost, "/nodes/" + root + "/move", moveNodeRequest{ParentID: root}, 400, perrors.ErrCodeInvalidInput},
		{"bad border", http.MethodPatch, "/nodes/" + root, map[string]any{"borderStyle": "Wavy"}, 400, perrors.ErrCodeInvalidInput},
		{"bad index", http.MethodPut, "/nodes/" + root + "/constraints/x", map[string]any{"type": "Length", "value": 1}, 400, perrors.ErrCodeInvalidInput},
		{"index out of range", http.MethodPut, "/nodes/" + root + "/constraints/3", map[string]any{"type": "Length", "value": 1}, 400, perrors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, "/nodes/" + root + "/move", map[string]any{"parent": root}, 400, perrors.ErrCodeInvalidInput},
		{"bad project id", http.MethodGet, "/tree", nil, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.status == 0 {
				status, body := s.call(t, http.MethodGet, "/api/projects/..bad../tree", "", nil)
				require.Equal(t, http.StatusBadRequest, status, string(body))
				require.Equal(t, perrors.ErrCodeInvalidID, errCode(t, body))
				return
			}
			status, body := s.call(t, tt.method, base+tt.path, "", tt.body)
			require.Equal(t, tt.status, status, string(body))
			require.Equal(t, tt.code, errCode(t, body))
		})
	}

	// None of the rejected requests changed the design.
	stored, err := s.opts.Projects.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Design.Nodes, 1)
	require.Empty(t, stored.Design.Nodes[root].Children)
}

func TestPermissions(t *testing.T) {
	s := newTestServer(t, Options{})
	alice := s.login(t, "alice@example.com")
	bob := s.login(t, "bob@example.com")

	p := s.createProject(t, alice, "Private")
	path := "/api/projects/" + p.ID

	status, body := s.call(t, http.MethodGet, path, bob, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, perrors.ErrCodeProjectNotFound, errCode(t, body))

	status, _ = s.call(t, http.MethodPatch, path, alice, map[string]any{"isPublic": true})
	require.Equal(t, http.StatusOK, status)

	status, _ = s.call(t, http.MethodGet, path, bob, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.call(t, http.MethodGet, path+"/code", bob, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = s.call(t, http.MethodPatch, path, bob, map[string]any{"title": "Mine now"})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, perrors.ErrCodeForbidden, errCode(t, body))

	status, _ = s.call(t, http.MethodPost, path+"/nodes", bob, paragraph("x"))
	require.Equal(t, http.StatusForbidden, status)

	status, _ = s.call(t, http.MethodDelete, path, bob, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body = s.call(t, http.MethodGet, "/api/projects", bob, nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, decodeInto[project.Page](t, body).Projects)
}

func TestReplacingDesignReloadsEditor(t *testing.T) {
	s := newTestServer(t, Options{NoAuth: true})
	p := s.createProject(t, "", "Reload")
	base := "/api/projects/" + p.ID

	status, _ := s.call(t, http.MethodPost, base+"/nodes", "", paragraph("Old"))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, s.editors.len())

	fresh := design.New().Snapshot()
	status, body := s.call(t, http.MethodPatch, base, "", project.Update{Design: &fresh})
	require.Equal(t, http.StatusOK, status, string(body))
	require.Equal(t, 0, s.editors.len())

	status, body = s.call(t, http.MethodGet, base+"/tree", "", nil)
	require.Equal(t, http.StatusOK, status)
	got := decodeInto[treeResponse](t, body).Design
	require.Equal(t, fresh.RootID, got.RootID)
	require.Len(t, got.Nodes, 1)
}

// failingStore rejects every update.
type failingStore struct {
	*project.MemoryStore
}

func (failingStore) Update(context.Context, string, project.Update) (*project.Project, error) {
	return nil, perrors.New(perrors.ErrCodeStorage, "disk full")
}

func TestPersistFailureDropsEditor(t *testing.T) {
	store := failingStore{project.NewMemoryStore()}
	s := newTestServer(t, Options{NoAuth: true, Projects: store})
	p := s.createProject(t, "", "Flaky")

	status, body := s.call(t, http.MethodPost, "/api/projects/"+p.ID+"/nodes", "", paragraph("x"))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, perrors.ErrCodeStorage, errCode(t, body))
	require.Equal(t, 0, s.editors.len())

	status, body = s.call(t, http.MethodGet, "/api/projects/"+p.ID+"/tree", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, decodeInto[treeResponse](t, body).Design.Nodes, 1)
}

func TestArtifacts(t *testing.T) {
	t.Cleanup(observability.Reset)
	m := NewMetrics()
	m.Install()

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	s := newTestServer(t, Options{NoAuth: true, Cache: fc, Metrics: m})
	p := s.createProject(t, "", "My Dash")
	base := "/api/projects/" + p.ID

	status, _ := s.call(t, http.MethodPost, base+"/nodes", "", paragraph("Hello"))
	require.Equal(t, http.StatusOK, status)

	status, first := s.call(t, http.MethodGet, base+"/code", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(first), "use ratatui::")
	require.Contains(t, string(first), `.title("Hello")`)

	status, second := s.call(t, http.MethodGet, base+"/code", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, first, second)
	require.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(cache.KindSource, "hit")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(cache.KindSource, "miss")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.generations))

	status, manifest := s.call(t, http.MethodGet, base+"/cargo.toml", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(manifest), `name = "my_dash"`)

	status, dot := s.call(t, http.MethodGet, base+"/graph?format=dot", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(dot), "digraph G")
	require.Contains(t, string(dot), `Paragraph \"Hello\"`)

	status, body := s.call(t, http.MethodGet, base+"/graph?format=png", "", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, perrors.ErrCodeInvalidInput, errCode(t, body))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Cleanup(observability.Reset)
	m := NewMetrics()
	m.Install()
	s := newTestServer(t, Options{NoAuth: true, Metrics: m})

	status, _ := s.call(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)
	p := s.createProject(t, "", "Counted")
	status, _ = s.call(t, http.MethodPost, "/api/projects/"+p.ID+"/nodes", "", paragraph("x"))
	require.Equal(t, http.StatusOK, status)

	status, body := s.call(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	out := string(body)
	require.Contains(t, out, `panecraft_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	require.Contains(t, out, `panecraft_design_mutations_total{op="add",result="ok"} 1`)
	require.Contains(t, out, "go_goroutines")
}

func TestServeShutdown(t *testing.T) {
	s, err := New(Options{Projects: project.NewMemoryStore(), NoAuth: true})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln, time.Second) }()

	url := fmt.Sprintf("http://%s/healthz", ln.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		err  error
		code perrors.Code
	}{
		{fmt.Errorf("%w: x", design.ErrNodeNotFound), perrors.ErrCodeNodeNotFound},
		{fmt.Errorf("%w: p", design.ErrNoRoom), perrors.ErrCodeConflict},
		{design.ErrRootImmutable, perrors.ErrCodeInvalidInput},
		{design.ErrNotPercentage, perrors.ErrCodeInvalidConstraint},
		{design.ErrInvalidSnapshot, perrors.ErrCodeInvalidDesign},
		{project.ErrBadCursor, perrors.ErrCodeInvalidInput},
		{context.DeadlineExceeded, perrors.ErrCodeTimeout},
		{perrors.New(perrors.ErrCodeForbidden, "no"), perrors.ErrCodeForbidden},
		{errors.New("boom"), perrors.ErrCodeInternal},
	}
	for _, tt := range tests {
		if got := apiError(tt.err).Code; got != tt.code {
			t.Errorf("apiError(%v) = %v, want %v", tt.err, got, tt.code)
		}
	}
	if msg := apiError(errors.New("secret dsn")).Message; msg != "internal error" {
		t.Errorf("apiError() leaked %q", msg)
	}
}

func TestBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", tt.header)
		if got := bearer(r); got != tt.want {
			t.Errorf("bearer(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
