package ophim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T, h http.HandlerFunc) *Api {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Api{
		url:      srv.URL,
		siteURL:  "https://ophim1.com",
		imageURL: "https://img.ophim.live/uploads/movies",
		timeout:  2 * time.Second,
		cl:       srv.Client(),
	}
}

func TestApi_Search(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tim-kiem", r.URL.Path)
		assert.Equal(t, "ma trận", r.URL.Query().Get("keyword"))
		_, _ = w.Write([]byte(`{"status":"success","data":{"items":[
			{"slug":"ma-tran","name":"Ma Trận"},
			{"slug":"ma-tran-2","name":"Ma Trận 2"}
		]}}`))
	})

	r := api.Search(context.Background(), "ma trận")
	require.Equal(t, OutcomeOK, r.Outcome)
	require.Len(t, r.Items, 2)
	assert.Equal(t, "ma-tran-2", r.Items[1].Slug)
}

func TestApi_Search_FallsBackToSlug(t *testing.T) {
	var paths []string
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/tim-kiem":
			_, _ = w.Write([]byte(`{"status":"success","data":{"items":[]}}`))
		case "/phim/bo-gia":
			_, _ = w.Write([]byte(`{"status":"success","data":{"item":{"slug":"bo-gia","name":"Bố Già"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	r := api.Search(context.Background(), "Bo Gia")
	require.Equal(t, OutcomeOK, r.Outcome)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "Bố Già", r.Items[0].Name)
	assert.Equal(t, []string{"/tim-kiem", "/phim/bo-gia"}, paths)
}

func TestApi_Search_NoFallbackOnFailure(t *testing.T) {
	calls := 0
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"status":"error","msg":"boom"}`))
	})

	r := api.Search(context.Background(), "x")
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.Empty(t, r.Items)
	assert.ErrorIs(t, r.Err, ErrUpstream)
	assert.Equal(t, 1, calls)
}

func TestApi_FailuresNeverPanic(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		outcome Outcome
	}{
		{"server error", http.StatusInternalServerError, `{"status":"success","data":{"items":[{"slug":"a"}]}}`, OutcomeFailed},
		{"bad request", http.StatusBadRequest, ``, OutcomeFailed},
		{"not success", http.StatusOK, `{"status":false,"data":{"items":[{"slug":"a"}]}}`, OutcomeFailed},
		{"missing data", http.StatusOK, `{"status":"success"}`, OutcomeFailed},
		{"malformed body", http.StatusOK, `{"status":`, OutcomeFailed},
		{"data not object", http.StatusOK, `{"status":"success","data":[1,2]}`, OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			ctx := context.Background()

			lr := api.ListByCategory(ctx, "phim-le", 1)
			assert.Equal(t, tt.outcome, lr.Outcome)
			assert.Empty(t, lr.Items)

			dr := api.GetDetail(ctx, "a")
			assert.Equal(t, tt.outcome, dr.Outcome)
			_, ok := dr.First()
			assert.False(t, ok)
		})
	}
}

func TestApi_ListByCategory(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/danh-sach/phim-bo", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"status":"success","data":{"items":[{"slug":"a"},{"slug":"b"},"junk"]}}`))
	})

	r := api.ListByCategory(context.Background(), "phim-bo", 0)
	require.Equal(t, OutcomeOK, r.Outcome)
	assert.Len(t, r.Items, 2)
}

func TestApi_GetDetail(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/phim/mai":
			_, _ = w.Write([]byte(`{"status":"success","data":{"item":{
				"slug":"mai","name":"Mai","poster_url":"mai-poster.jpg","thumb_url":"https://cdn/mai.jpg"
			}}}`))
		case "/phim/empty":
			_, _ = w.Write([]byte(`{"status":"success","data":{"item":null}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	d, ok := api.GetDetail(ctx, "mai").First()
	require.True(t, ok)
	assert.Equal(t, "https://img.ophim.live/uploads/movies/mai-poster.jpg", d.PosterURL)
	assert.Equal(t, "https://cdn/mai.jpg", d.ThumbURL)

	assert.Equal(t, OutcomeNotFound, api.GetDetail(ctx, "missing").Outcome)
	assert.Equal(t, OutcomeNotFound, api.GetDetail(ctx, "empty").Outcome)
}

func TestApi_Timeout(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	api.timeout = 50 * time.Millisecond

	r := api.Search(context.Background(), "slow")
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.Error(t, r.Err)
}

func TestApi_TransportFailure(t *testing.T) {
	api := &Api{url: "http://127.0.0.1:1", timeout: time.Second, cl: http.DefaultClient}

	r := api.ListByCategory(context.Background(), "phim-le", 1)
	assert.Equal(t, OutcomeFailed, r.Outcome)
}
