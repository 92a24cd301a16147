package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webtor-io/ophim-bot/models"
	"github.com/webtor-io/ophim-bot/services/ophim"
	"github.com/webtor-io/ophim-bot/services/view"
)

type mockCatalog struct {
	mu       sync.Mutex
	search   ophim.Result[models.MovieSummary]
	list     ophim.Result[models.MovieSummary]
	details  map[string]ophim.Result[models.MovieDetail]
	keywords []string
	listed   []string
	fetched  []string
}

func (m *mockCatalog) Search(_ context.Context, keyword string) ophim.Result[models.MovieSummary] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keywords = append(m.keywords, keyword)
	return m.search
}

func (m *mockCatalog) ListByCategory(_ context.Context, slug string, page int) ophim.Result[models.MovieSummary] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listed = append(m.listed, fmt.Sprintf("%s:%d", slug, page))
	return m.list
}

func (m *mockCatalog) GetDetail(_ context.Context, slug string) ophim.Result[models.MovieDetail] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, slug)
	if r, ok := m.details[slug]; ok {
		return r
	}
	return ophim.Result[models.MovieDetail]{Outcome: ophim.OutcomeNotFound}
}

type sent struct {
	chatID    int64
	messageID int
	edit      bool
	view      *view.View
}

type mockSender struct {
	mu       sync.Mutex
	messages []sent
	answered []string
	sendErr  error
	nextID   int
}

func (m *mockSender) Send(_ context.Context, chatID int64, v *view.View) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.nextID++
	m.messages = append(m.messages, sent{chatID: chatID, messageID: m.nextID, view: v})
	return m.nextID, nil
}

func (m *mockSender) Edit(_ context.Context, chatID int64, messageID int, v *view.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, sent{chatID: chatID, messageID: messageID, edit: true, view: v})
	return nil
}

func (m *mockSender) Answer(_ context.Context, callbackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answered = append(m.answered, callbackID)
	return nil
}

func (m *mockSender) last(t *testing.T) sent {
	t.Helper()
	require.NotEmpty(t, m.messages)
	return m.messages[len(m.messages)-1]
}

func okDetail(d models.MovieDetail) ophim.Result[models.MovieDetail] {
	return ophim.Result[models.MovieDetail]{Items: []models.MovieDetail{d}, Outcome: ophim.OutcomeOK}
}

func newTestBot(c *mockCatalog) (*Bot, *mockSender, *view.Builder) {
	s := &mockSender{}
	views := view.New(models.DefaultCategories())
	return New(c, s, views, "https://ophim1.com"), s, views
}

func testMovie() models.MovieDetail {
	return models.MovieDetail{
		MovieSummary: models.MovieSummary{Slug: "some_movie", Name: "Some Movie"},
		Servers: []models.EpisodeServer{
			{Name: "A", Items: []models.EpisodeItem{{Name: "1", StreamURL: "https://a/1.m3u8"}}},
			{Name: "B", Items: []models.EpisodeItem{{Name: "1", EmbedURL: "https://b/1"}}},
		},
	}
}

func TestHandleCommand(t *testing.T) {
	b, s, views := newTestBot(&mockCatalog{})
	ctx := context.Background()

	require.NoError(t, b.HandleCommand(ctx, 1, "start"))
	assert.Equal(t, views.Welcome(), s.last(t).view)
	require.NoError(t, b.HandleCommand(ctx, 1, "help"))
	assert.Equal(t, views.Help(), s.last(t).view)
	require.NoError(t, b.HandleCommand(ctx, 1, "danhmuc"))
	assert.Equal(t, views.CategoryMenu(), s.last(t).view)

	require.NoError(t, b.HandleCommand(ctx, 1, "unknown"))
	assert.Len(t, s.messages, 3)
}

func TestHandleText_EditsProgressMessage(t *testing.T) {
	c := &mockCatalog{search: ophim.Result[models.MovieSummary]{
		Items:   []models.MovieSummary{{Slug: "mai", Name: "Mai"}},
		Outcome: ophim.OutcomeOK,
	}}
	b, s, views := newTestBot(c)

	require.NoError(t, b.HandleText(context.Background(), 7, "  mai  "))
	assert.Equal(t, []string{"mai"}, c.keywords)
	require.Len(t, s.messages, 2)
	assert.Equal(t, views.Searching("mai"), s.messages[0].view)
	assert.False(t, s.messages[0].edit)
	assert.True(t, s.messages[1].edit)
	assert.Equal(t, s.messages[0].messageID, s.messages[1].messageID)
	assert.Equal(t, "detail_mai", s.messages[1].view.Keyboard[0][0].Token)
}

func TestHandleText_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		outcome ophim.Outcome
		want    func(v *view.Builder) *view.View
	}{
		{"empty", ophim.OutcomeEmpty, func(v *view.Builder) *view.View { return v.NoResults("x") }},
		{"failed", ophim.OutcomeFailed, func(v *view.Builder) *view.View { return v.TryAgain() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &mockCatalog{search: ophim.Result[models.MovieSummary]{Outcome: tt.outcome}}
			b, s, views := newTestBot(c)
			require.NoError(t, b.HandleText(context.Background(), 1, "x"))
			assert.Equal(t, tt.want(views), s.last(t).view)
		})
	}
}

func TestHandleText_Blank(t *testing.T) {
	c := &mockCatalog{}
	b, s, views := newTestBot(c)
	require.NoError(t, b.HandleText(context.Background(), 1, "   "))
	assert.Empty(t, c.keywords)
	assert.Equal(t, views.EmptyQuery(), s.last(t).view)
}

func TestHandleText_SendFailure(t *testing.T) {
	c := &mockCatalog{}
	b, s, _ := newTestBot(c)
	s.sendErr = errors.New("boom")
	assert.Error(t, b.HandleText(context.Background(), 1, "mai"))
	assert.Empty(t, c.keywords)
}

func TestHandlePress_Routes(t *testing.T) {
	m := testMovie()
	c := &mockCatalog{details: map[string]ophim.Result[models.MovieDetail]{"some_movie": okDetail(m)}}
	b, s, views := newTestBot(c)
	ctx := context.Background()

	tests := []struct {
		token string
		want  *view.View
	}{
		{"detail_some_movie", views.Detail(&m)},
		{"links_some_movie", views.LinksMenu(&m, ophim.BasicLinks(&m, "https://ophim1.com"))},
		{"videos_some_movie_1", views.Episodes(&m, 1)},
		{"videos_some_movie_9", views.Episodes(&m, 0)},
		{"basic_some_movie", views.BasicLinks(&m, ophim.BasicLinks(&m, "https://ophim1.com"))},
		{"back", views.Continue()},
		{"back_to_cat", views.CategoryMenu()},
		{"videos_some_movie_x", views.Continue()},
		{"garbage", views.Continue()},
	}
	for i, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			require.NoError(t, b.HandlePress(ctx, 42, fmt.Sprintf("cb%d", i), tt.token))
			got := s.last(t)
			assert.Equal(t, int64(42), got.chatID)
			assert.Equal(t, tt.want, got.view)
			assert.Equal(t, fmt.Sprintf("cb%d", i), s.answered[len(s.answered)-1])
		})
	}
	assert.Len(t, s.answered, len(tests))
	assert.Equal(t, []string{"some_movie", "some_movie", "some_movie", "some_movie", "some_movie"}, c.fetched)
}

func TestHandlePress_DetailUnavailable(t *testing.T) {
	c := &mockCatalog{details: map[string]ophim.Result[models.MovieDetail]{
		"down": {Outcome: ophim.OutcomeFailed, Err: errors.New("timeout")},
	}}
	b, s, views := newTestBot(c)
	ctx := context.Background()

	require.NoError(t, b.HandlePress(ctx, 1, "a", "detail_gone"))
	assert.Equal(t, views.DetailUnavailable(), s.last(t).view)

	require.NoError(t, b.HandlePress(ctx, 1, "b", "links_gone"))
	assert.Equal(t, views.MovieUnavailable(), s.last(t).view)

	require.NoError(t, b.HandlePress(ctx, 1, "c", "videos_down_0"))
	assert.Equal(t, views.TryAgain(), s.last(t).view)
}

func TestHandlePress_Category(t *testing.T) {
	c := &mockCatalog{list: ophim.Result[models.MovieSummary]{
		Items:   []models.MovieSummary{{Slug: "a", Name: "A"}, {Slug: "b", Name: "B"}},
		Outcome: ophim.OutcomeOK,
	}}
	b, s, views := newTestBot(c)

	require.NoError(t, b.HandlePress(context.Background(), 1, "cb", "cat_phim-bo"))
	assert.Equal(t, []string{"phim-bo:1"}, c.listed)
	require.Len(t, s.messages, 2)
	assert.Equal(t, views.LoadingCategory("phim-bo"), s.messages[0].view)
	last := s.messages[1].view
	assert.True(t, strings.Contains(last.Text, "Hiển thị 2 phim"))
	assert.Equal(t, "back_to_cat", last.Keyboard[len(last.Keyboard)-1][0].Token)
}

func TestHandlePress_Concurrent(t *testing.T) {
	m := testMovie()
	c := &mockCatalog{details: map[string]ophim.Result[models.MovieDetail]{"some_movie": okDetail(m)}}
	b, s, _ := newTestBot(c)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = b.HandlePress(context.Background(), int64(i), fmt.Sprint(i), "detail_some_movie")
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.messages, 20)
	assert.Len(t, c.fetched, 20)
}

func TestHandlePress_UsesPressedSlug(t *testing.T) {
	m := testMovie()
	m.Slug = ""
	c := &mockCatalog{details: map[string]ophim.Result[models.MovieDetail]{"some_movie": okDetail(m)}}
	b, s, _ := newTestBot(c)
	ctx := context.Background()

	require.NoError(t, b.HandlePress(ctx, 1, "a", "detail_some_movie"))
	assert.Equal(t, "links_some_movie", s.last(t).view.Keyboard[0][0].Token)

	require.NoError(t, b.HandlePress(ctx, 1, "b", "links_some_movie"))
	kb := s.last(t).view.Keyboard
	assert.Equal(t, "videos_some_movie_0", kb[0][0].Token)
	assert.Equal(t, "basic_some_movie", kb[1][0].Token)

	require.NoError(t, b.HandlePress(ctx, 1, "c", "basic_some_movie"))
	assert.Contains(t, s.last(t).view.Text, "(https://ophim1.com/phim/some_movie)")
}
