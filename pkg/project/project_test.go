package project

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/panecraft/pkg/design"
	perrors "github.com/matzehuels/panecraft/pkg/errors"
)

// fakeClock makes every clock() call one second later than the last.
func fakeClock(t *testing.T) {
	t.Helper()
	prev := clock
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	t.Cleanup(func() { clock = prev })
}

func sampleDesign(t *testing.T) design.Snapshot {
	t.Helper()
	tr := design.New()
	_, err := tr.Add(tr.RootID(), design.NewWidget(design.ParagraphData{Title: "Hello", Content: "world"}))
	require.NoError(t, err)
	return tr.Snapshot()
}

func TestProjectValidate(t *testing.T) {
	good := New("u1", "  Dashboard ", sampleDesign(t))
	require.Equal(t, "Dashboard", good.Title)
	require.NoError(t, good.Validate())

	tests := []struct {
		name   string
		mutate func(p *Project)
		code   perrors.Code
	}{
		{"no title", func(p *Project) { p.Title = "" }, perrors.ErrCodeInvalidInput},
		{"long title", func(p *Project) { p.Title = strings.Repeat("x", 101) }, perrors.ErrCodeInvalidInput},
		{"no owner", func(p *Project) { p.UserID = "" }, perrors.ErrCodeInvalidInput},
		{"bad id", func(p *Project) { p.ID = "../x" }, perrors.ErrCodeInvalidID},
		{"bad design", func(p *Project) { p.Design.RootID = "missing" }, perrors.ErrCodeInvalidDesign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New("u1", "Dashboard", sampleDesign(t))
			tt.mutate(p)
			err := p.Validate()
			require.Error(t, err)
			require.Equal(t, tt.code, perrors.GetCode(err))
		})
	}
}

func TestValidateDesignWidgetLimits(t *testing.T) {
	tests := []struct {
		name string
		data design.WidgetData
		code perrors.Code
	}{
		{"ok", design.TableData{Title: "t", Headers: []string{"a"}}, ""},
		{"long title", design.BlockData{Title: strings.Repeat("t", 201)}, perrors.ErrCodeInvalidInput},
		{"long content", design.ParagraphData{Content: strings.Repeat("c", 10001)}, perrors.ErrCodeInvalidInput},
		{"long placeholder", design.InputData{Placeholder: strings.Repeat("p", 201)}, perrors.ErrCodeInvalidInput},
		{"bad color", design.ListData{Style: design.Style{TextColor: "blue"}}, perrors.ErrCodeInvalidColor},
		{"short color", design.ListData{Style: design.Style{BorderColor: "#0f0"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := design.New()
			_, err := tr.Add(tr.RootID(), design.NewWidget(tt.data))
			require.NoError(t, err)
			err = ValidateDesign(tr.Snapshot())
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, tt.code, perrors.GetCode(err))
		})
	}
}

func TestValidateProps(t *testing.T) {
	str := func(s string) *string { return &s }
	dir := design.Direction("diagonal")

	require.NoError(t, ValidateProps(design.Props{Title: str("ok"), TextColor: str("#abc")}))
	require.NoError(t, ValidateProps(design.Props{BorderColor: str("")}))
	require.Error(t, ValidateProps(design.Props{Direction: &dir}))
	require.Error(t, ValidateProps(design.Props{Label: str(strings.Repeat("l", 201))}))
	require.Error(t, ValidateProps(design.Props{Content: str(strings.Repeat("c", 10001))}))
	require.Error(t, ValidateProps(design.Props{BackgroundColor: str("#12")}))
}

func TestValidateNode(t *testing.T) {
	require.NoError(t, ValidateNode(design.NewLayout(design.Horizontal)))
	require.NoError(t, ValidateNode(design.NewWidget(design.InputData{Label: "Name"})))

	err := ValidateNode(design.NewWidget(design.BlockData{Style: design.Style{TextColor: "blue"}}))
	require.Error(t, err)
	require.Equal(t, perrors.ErrCodeInvalidColor, perrors.GetCode(err))
}

func TestCursorRoundTrip(t *testing.T) {
	c := cursor{UpdatedAt: time.Date(2026, 3, 4, 5, 6, 7, 8000000, time.UTC), ID: "a:b"}
	got, err := parseCursor(c.String())
	require.NoError(t, err)
	require.True(t, got.UpdatedAt.Equal(c.UpdatedAt))
	require.Equal(t, c.ID, got.ID)

	for _, bad := range []string{"!!!", "bm9jb2xvbg", "eDph"} {
		_, err := parseCursor(bad)
		require.ErrorIs(t, err, ErrBadCursor, bad)
	}
}

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, store Store) {
	fakeClock(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, perrors.ErrCodeProjectNotFound, perrors.GetCode(err))

	// Create five projects for u1 and one for u2.
	var ids []string
	for i := range 5 {
		p := New("u1", "Project "+string(rune('A'+i)), sampleDesign(t))
		require.NoError(t, store.Create(ctx, p))
		require.False(t, p.CreatedAt.IsZero())
		require.Equal(t, p.CreatedAt, p.UpdatedAt)
		ids = append(ids, p.ID)
	}
	other := New("u2", "Theirs", sampleDesign(t))
	require.NoError(t, store.Create(ctx, other))

	dup := New("u1", "Dup", sampleDesign(t))
	dup.ID = ids[0]
	require.Equal(t, perrors.ErrCodeConflict, perrors.GetCode(store.Create(ctx, dup)))
	require.Error(t, store.Create(ctx, New("u1", "", sampleDesign(t))))

	got, err := store.Get(ctx, ids[2])
	require.NoError(t, err)
	require.Equal(t, "Project C", got.Title)
	require.NoError(t, got.Design.Validate())
	require.Len(t, got.Design.Nodes, 2)

	// Touch the oldest project so it moves to the front.
	title := "Renamed"
	public := true
	updated, err := store.Update(ctx, ids[0], Update{Title: &title, IsPublic: &public})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.True(t, updated.IsPublic)
	require.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	bad := ""
	_, err = store.Update(ctx, ids[1], Update{Title: &bad})
	require.Error(t, err)
	_, err = store.Update(ctx, "nope", Update{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)

	// Page through u1's projects two at a time.
	want := []string{ids[0], ids[4], ids[3], ids[2], ids[1]}
	var seen []string
	opts := ListOptions{Limit: 2}
	for {
		page, err := store.ListByUser(ctx, "u1", opts)
		require.NoError(t, err)
		for _, p := range page.Projects {
			require.Equal(t, "u1", p.UserID)
			seen = append(seen, p.ID)
		}
		if !page.HasMore {
			require.Empty(t, page.Next)
			break
		}
		opts.After = page.Next
	}
	require.Equal(t, want, seen)

	all, err := store.ListByUser(ctx, "u1", ListOptions{})
	require.NoError(t, err)
	require.Len(t, all.Projects, 5)
	require.False(t, all.HasMore)

	none, err := store.ListByUser(ctx, "nobody", ListOptions{})
	require.NoError(t, err)
	require.NotNil(t, none.Projects)
	require.Empty(t, none.Projects)

	_, err = store.ListByUser(ctx, "u1", ListOptions{After: "garbage!"})
	require.ErrorIs(t, err, ErrBadCursor)

	require.NoError(t, store.Delete(ctx, ids[3]))
	require.ErrorIs(t, store.Delete(ctx, ids[3]), ErrNotFound)
	_, err = store.Get(ctx, ids[3])
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := New("u1", "Mine", sampleDesign(t))
	require.NoError(t, store.Create(ctx, p))

	p.Title = "changed outside"
	for _, n := range p.Design.Nodes {
		n.Children = append(n.Children, "bogus")
	}
	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Mine", got.Title)
	require.NoError(t, got.Design.Validate())
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	storeContract(t, store)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.Get(context.Background(), "../../etc/passwd")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPermissions(t *testing.T) {
	p := New("owner", "P", sampleDesign(t))
	require.True(t, p.CanRead("owner"))
	require.True(t, p.CanWrite("owner"))
	require.False(t, p.CanRead("guest"))
	p.IsPublic = true
	require.True(t, p.CanRead("guest"))
	require.False(t, p.CanWrite("guest"))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("PANECRAFT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PANECRAFT_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	db := "panecraft_test_" + strings.ReplaceAll(time.Now().Format("150405.000"), ".", "")
	store, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: db})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	t.Cleanup(func() { _ = store.coll.Database().Drop(context.Background()) })
	storeContract(t, store)
}
