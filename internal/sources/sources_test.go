package sources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pageza/ideaforge/backend/internal/completion"
	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/retry"
	"github.com/pageza/ideaforge/backend/internal/testhelpers/mocks"
	"github.com/pageza/ideaforge/backend/internal/topics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestResearch_Gather(t *testing.T) {
	client := &mocks.StubCompletionClient{Respond: func(msgs []completion.Message) (*completion.Result, error) {
		return &completion.Result{
			Text: strings.Repeat("r", MaxResearchChars+100),
			SearchResults: []completion.SearchResult{
				{Title: "Report", URL: "https://example.com/report", Snippet: "market size"},
				{Title: "No link"},
			},
		}, nil
	}}
	r := NewResearch(client, "", retry.Policy{MaxAttempts: 1}, nil)

	block, err := r.Gather(context.Background(), ideas.Query{Prompt: "clinic scheduling", Keywords: []string{"clinics"}})
	require.NoError(t, err)
	assert.Equal(t, "Market research", block.Label)
	assert.Len(t, []rune(block.Text), MaxResearchChars)
	assert.Equal(t, []ideas.Source{{Title: "Report", URL: "https://example.com/report", Snippet: "market size"}}, block.Sources)

	msgs := client.LastMessages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "market research expert")
	assert.Contains(t, msgs[1].Content, `"clinic scheduling"`)
	assert.Contains(t, msgs[1].Content, "clinics")
}

func TestResearch_Errors(t *testing.T) {
	client := mocks.NewFailingCompletionClient(completion.ErrRateLimited)
	r := NewResearch(client, "", retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}, nil)

	_, err := r.Gather(context.Background(), ideas.Query{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, completion.ErrRateLimited))
	assert.Equal(t, 2, client.Calls())

	_, err = NewResearch(nil, "", retry.Policy{}, nil).Gather(context.Background(), ideas.Query{Prompt: "x"})
	assert.Error(t, err)
}

type listingChild struct {
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	Subreddit   string  `json:"subreddit"`
	CreatedUTC  float64 `json:"created_utc"`
	NumComments int     `json:"num_comments"`
}

func writeListing(w http.ResponseWriter, children ...listingChild) {
	type wrapped struct {
		Data listingChild `json:"data"`
	}
	out := struct {
		Data struct {
			Children []wrapped `json:"children"`
		} `json:"data"`
	}{}
	for _, c := range children {
		out.Data.Children = append(out.Data.Children, wrapped{Data: c})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func TestReddit_Search(t *testing.T) {
	var mu sync.Mutex
	requests := map[string][]string{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if !assert.Len(t, parts, 3) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "search.json", parts[2])
		sub := parts[1]

		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("restrict_sr"))
		assert.Equal(t, "relevance", q.Get("sort"))
		assert.Equal(t, "8", q.Get("limit"))
		assert.Equal(t, "month", q.Get("t"))
		assert.Equal(t, "1", q.Get("raw_json"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		mu.Lock()
		requests[sub] = append(requests[sub], q.Get("q"))
		attempt := len(requests[sub])
		mu.Unlock()

		switch sub {
		case "MachineLearning":
			writeListing(w,
				listingChild{Title: "Best AI tools for small accounting firms", Permalink: "/r/MachineLearning/comments/1", Score: 100, NumComments: 10, Subreddit: "MachineLearning", CreatedUTC: float64(fixedNow.Unix())},
				listingChild{Title: "short", Permalink: "/r/MachineLearning/comments/2"},
			)
		case "startups":
			if attempt == 1 {
				writeListing(w)
				return
			}
			writeListing(w, listingChild{Title: "Looking for feedback on my accounting side project", Permalink: "/r/startups/comments/3", Score: 5, NumComments: 2, Subreddit: "startups", CreatedUTC: float64(fixedNow.Add(-30 * 24 * time.Hour).Unix())})
		case "entrepreneur":
			writeListing(w, listingChild{Title: "Best AI tools for small accounting firms", Permalink: "/r/MachineLearning/comments/1", Subreddit: "entrepreneur"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	r := NewReddit(RedditConfig{BaseURL: srv.URL, UserAgent: "test-agent"}, nil, nil)
	r.now = func() time.Time { return fixedNow }

	posts, err := r.Search(context.Background(), ideas.Query{Keywords: []string{"ai tools", "accounting"}, Topics: []topics.Topic{topics.AI}})
	require.NoError(t, err)

	assert.Equal(t, []string{"ai tools"}, requests["MachineLearning"])
	assert.Equal(t, []string{"ai tools", "ai tools accounting"}, requests["startups"])
	assert.Len(t, requests["entrepreneur"], 1)
	assert.Len(t, requests["SaaS"], 2)

	require.Len(t, posts, 5)
	urls := make([]string, len(posts))
	for i, p := range posts {
		urls[i] = p.URL
	}
	assert.Equal(t, []string{
		"https://reddit.com/r/SaaS/post_ai_tools_3",
		"https://reddit.com/r/MachineLearning/comments/1",
		"https://reddit.com/r/SaaS/post_ai_tools_2",
		"https://reddit.com/r/SaaS/post_ai_tools_1",
		"https://reddit.com/r/startups/comments/3",
	}, urls)
	assert.Equal(t, "SaaS", posts[0].Subreddit)
	assert.Equal(t, "ai tools automation using AI - market opportunities", posts[0].Title)
}

func TestReddit_Gather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeListing(w, listingChild{Title: "Invoicing is still painful for freelancers", Selftext: "I spend hours every month", Permalink: "/r/x/comments/9", Score: 12, NumComments: 4, Subreddit: "startups"})
	}))
	defer srv.Close()

	r := NewReddit(RedditConfig{BaseURL: srv.URL, MaxSubreddits: 1, MaxPosts: 1}, nil, nil)
	block, err := r.Gather(context.Background(), ideas.Query{Keywords: []string{"invoicing"}})
	require.NoError(t, err)
	assert.Equal(t, "- r/startups: Invoicing is still painful for freelancers (12 upvotes, 4 comments)\n  I spend hours every month\n", block.Text)
	assert.Empty(t, block.Sources)
}

func TestReddit_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeListing(w)
	}))
	defer srv.Close()

	r := NewReddit(RedditConfig{BaseURL: srv.URL, RequestDelay: time.Hour}, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Search(ctx, ideas.Query{Keywords: []string{"x"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestReddit_UnreachableFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewReddit(RedditConfig{BaseURL: srv.URL, MaxSubreddits: 3}, nil, nil)
	posts, err := r.Search(context.Background(), ideas.Query{Keywords: []string{"successful startup"}, Topics: []topics.Topic{topics.Startup}})
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	for _, p := range posts {
		assert.Contains(t, p.Title, "successful startup")
	}
}

func TestRelevance(t *testing.T) {
	p := Post{
		Title:     "AI tools for accountants",
		Content:   "looking at ai tools",
		Subreddit: "startups",
		Score:     10,
		Comments:  5,
		CreatedAt: fixedNow.Add(-24 * time.Hour),
	}
	assert.Equal(t, 145, Relevance(p, []string{"AI Tools"}, fixedNow))

	p.CreatedAt = fixedNow.Add(-30 * 24 * time.Hour)
	p.Subreddit = "webdev"
	assert.Equal(t, 95, Relevance(p, []string{"ai tools"}, fixedNow))
}

func TestContentMultiplier(t *testing.T) {
	tests := map[string]float64{
		"plain statement":                        1.0,
		"who is building this?":                  1.3,
		"Hot take: nobody needs this":            1.5,
		"Thread on pricing":                      1.4,
		"Just shipped":                           1.2,
		"Spent $50K on ads":                      1.3,
		"Just found 80% churn. Why?":             1.8,
		"Unpopular opinion: 10x engineers exist": 1.8,
	}
	for content, want := range tests {
		assert.InDelta(t, want, ContentMultiplier(content), 1e-9, content)
	}
}

func TestX_Mock(t *testing.T) {
	q := ideas.Query{Prompt: "ai tools for accountants", Keywords: []string{"ai tools"}, Topics: []topics.Topic{topics.AI}}

	x := NewX(XConfig{}, nil, nil)
	x.now = func() time.Time { return fixedNow }
	first, err := x.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, first, 4)

	again := NewX(XConfig{}, nil, nil)
	again.now = func() time.Time { return fixedNow }
	assert.Equal(t, first, again.Mock(q))

	for i, p := range first {
		assert.Contains(t, p.Content, "ai tools")
		assert.True(t, strings.HasPrefix(p.URL, "https://x.com/"+strings.TrimPrefix(p.Author, "@")+"/status/"))
		assert.Equal(t, []string{"#AI", "#MachineLearning", "#LLM"}, p.Hashtags)
		assert.False(t, p.CreatedAt.After(fixedNow))
		if i > 0 {
			assert.GreaterOrEqual(t, engagementScore(first[i-1]), engagementScore(p))
		}
		if strings.HasPrefix(p.Content, "Just discovered") {
			assert.Equal(t, "@AndrewYNg", p.Author)
			assert.True(t, p.Verified)
			assert.GreaterOrEqual(t, p.Likes, 720)
			assert.LessOrEqual(t, p.Likes, 1080)
		}
	}

	capped := NewX(XConfig{MaxPosts: 2}, nil, nil).Mock(ideas.Query{Keywords: []string{"x"}})
	assert.Len(t, capped, 2)
}

func TestX_API(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets/search/recent", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "ai tools -is:retweet lang:en", q.Get("query"))
		assert.Equal(t, "10", q.Get("max_results"))
		assert.Equal(t, "author_id", q.Get("expansions"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "1", "text": "small #AI win", "created_at": "2025-03-09T10:00:00Z", "author_id": "u1",
				 "public_metrics": {"like_count": 3, "retweet_count": 1, "reply_count": 0}},
				{"id": "2", "text": "big #AI #SaaS thread", "created_at": "2025-03-08T10:00:00Z", "author_id": "u9",
				 "public_metrics": {"like_count": 40, "retweet_count": 9, "reply_count": 2}}
			],
			"includes": {"users": [{"id": "u1", "username": "alice", "verified": true}]}
		}`))
	}))
	defer srv.Close()

	x := NewX(XConfig{BearerToken: "tok", BaseURL: srv.URL}, nil, nil)
	posts, err := x.Search(context.Background(), ideas.Query{Keywords: []string{"ai tools"}})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "https://x.com/unknown/status/2", posts[0].URL)
	assert.Equal(t, []string{"#AI", "#SaaS"}, posts[0].Hashtags)
	assert.Equal(t, "@alice", posts[1].Author)
	assert.True(t, posts[1].Verified)
	assert.Equal(t, 3, posts[1].Likes)
}

func TestX_APIFailureFallsBackToMock(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	x := NewX(XConfig{BearerToken: "bad", BaseURL: srv.URL}, nil, nil)
	posts, err := x.Search(context.Background(), ideas.Query{Keywords: []string{"a", "b", "c", "d"}, Topics: []topics.Topic{topics.SaaS}})
	require.NoError(t, err)
	assert.NotEmpty(t, posts)
	assert.Equal(t, maxSearchKeywords, calls)

	block, err := x.Gather(context.Background(), ideas.Query{Keywords: []string{"a"}, Topics: []topics.Topic{topics.SaaS}})
	require.NoError(t, err)
	assert.Equal(t, "Recent posts on X", block.Label)
	assert.Contains(t, block.Text, "likes")
}
