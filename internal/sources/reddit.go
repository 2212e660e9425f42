package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/topics"
	"go.uber.org/zap"
)

const (
	DefaultRedditURL       = "https://www.reddit.com"
	DefaultRedditUserAgent = "linux:ideaforge-research-bot:v1.0.0"
	DefaultRedditMaxPosts  = 20
	DefaultMaxSubreddits   = 4
	DefaultRequestDelay    = time.Second

	redditSearchLimit = 8
	minTitleLen       = 10
	snippetLen        = 200
)

// RedditConfig configures the Reddit source
type RedditConfig struct {
	BaseURL       string
	UserAgent     string
	RequestDelay  time.Duration
	MaxPosts      int
	MaxSubreddits int
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// Post is a Reddit discussion
type Post struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	Subreddit string    `json:"subreddit"`
	Score     int       `json:"score"`
	Comments  int       `json:"num_comments"`
	CreatedAt time.Time `json:"created_at"`
}

// Reddit searches public subreddit listings
type Reddit struct {
	cfg    RedditConfig
	http   *http.Client
	dict   *topics.Dictionary
	logger *zap.Logger
	now    func() time.Time
}

// NewReddit creates a Reddit source. A nil dictionary uses the builtin topics.
func NewReddit(cfg RedditConfig, dict *topics.Dictionary, logger *zap.Logger) *Reddit {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dict == nil {
		dict = topics.Builtin()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultRedditURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultRedditUserAgent
	}
	if cfg.RequestDelay < 0 {
		cfg.RequestDelay = 0
	}
	if cfg.MaxPosts <= 0 {
		cfg.MaxPosts = DefaultRedditMaxPosts
	}
	if cfg.MaxSubreddits <= 0 {
		cfg.MaxSubreddits = DefaultMaxSubreddits
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Reddit{cfg: cfg, http: httpClient, dict: dict, logger: logger, now: time.Now}
}

func (r *Reddit) Name() string { return "reddit" }

// Gather formats the most relevant discussions as a context block
func (r *Reddit) Gather(ctx context.Context, q ideas.Query) (*ideas.ContextBlock, error) {
	posts, err := r.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&b, "- r/%s: %s (%d upvotes, %d comments)\n", p.Subreddit, p.Title, p.Score, p.Comments)
		if content := strings.Join(strings.Fields(p.Content), " "); content != "" {
			fmt.Fprintf(&b, "  %s\n", clip(content, snippetLen))
		}
	}
	return &ideas.ContextBlock{Label: "Recent Reddit discussions", Text: b.String()}, nil
}

// Search queries the subreddits matching q's topics and returns the top posts
// by relevance. Subreddits that cannot be reached contribute fallback posts.
func (r *Reddit) Search(ctx context.Context, q ideas.Query) ([]Post, error) {
	subs := r.dict.Subreddits(q.Topics, r.cfg.MaxSubreddits)
	terms := searchTerms(q.Keywords)
	primary := "business"
	if len(q.Keywords) > 0 {
		primary = q.Keywords[0]
	}

	var all []Post
	for i, sub := range subs {
		if i > 0 {
			if err := sleep(ctx, r.cfg.RequestDelay); err != nil {
				return nil, err
			}
		}

		reached := false
		for _, term := range terms {
			posts, err := r.searchSubreddit(ctx, sub, term)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				r.logger.Warn("reddit search failed", zap.String("subreddit", sub), zap.String("term", term), zap.Error(err))
				continue
			}
			reached = true
			if len(posts) > 0 {
				r.logger.Debug("reddit posts found", zap.String("subreddit", sub), zap.String("term", term), zap.Int("count", len(posts)))
				all = append(all, posts...)
				break
			}
		}
		if !reached {
			all = append(all, r.fallbackPosts(primary, sub, q.Topics)...)
		}
	}
	if len(all) == 0 {
		all = r.fallbackPosts(primary, topics.CoreSubreddits[0], q.Topics)
	}

	return r.rank(dedupePosts(all), q.Keywords), nil
}

func searchTerms(keywords []string) []string {
	first := "ideas"
	if len(keywords) > 0 {
		first = keywords[0]
	}
	terms := []string{first}
	if len(keywords) > 1 {
		terms = append(terms, keywords[0]+" "+keywords[1])
	}
	return terms
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Permalink   string  `json:"permalink"`
				Score       int     `json:"score"`
				Subreddit   string  `json:"subreddit"`
				CreatedUTC  float64 `json:"created_utc"`
				NumComments int     `json:"num_comments"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Reddit) searchSubreddit(ctx context.Context, subreddit, term string) ([]Post, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("restrict_sr", "1")
	params.Set("sort", "relevance")
	params.Set("limit", fmt.Sprint(redditSearchLimit))
	params.Set("t", "month")
	params.Set("raw_json", "1")
	endpoint := fmt.Sprintf("%s/r/%s/search.json?%s", r.cfg.BaseURL, url.PathEscape(subreddit), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("reddit error %d: %s", resp.StatusCode, body)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	var posts []Post
	for _, c := range listing.Data.Children {
		d := c.Data
		if utf8.RuneCountInString(strings.TrimSpace(d.Title)) <= minTitleLen {
			continue
		}
		sub := d.Subreddit
		if sub == "" {
			sub = subreddit
		}
		posts = append(posts, Post{
			Title:     d.Title,
			Content:   d.Selftext,
			URL:       "https://reddit.com" + d.Permalink,
			Subreddit: sub,
			Score:     d.Score,
			Comments:  d.NumComments,
			CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return posts, nil
}

// fallbackPosts renders discussion templates of the first topic that has any
func (r *Reddit) fallbackPosts(keyword, subreddit string, ts []topics.Topic) []Post {
	var templates []string
	for _, t := range append(append([]topics.Topic(nil), ts...), topics.Startup) {
		if p, ok := r.dict.Profile(t); ok && len(p.Discussions) > 0 {
			templates = p.Discussions
			break
		}
	}

	now := r.now()
	slug := strings.Join(strings.Fields(keyword), "_")
	posts := make([]Post, 0, len(templates))
	for i, tpl := range templates {
		posts = append(posts, Post{
			Title:     strings.ReplaceAll(tpl, "{primary}", keyword),
			Content:   fmt.Sprintf("Looking for insights on %s solutions. What are the current market gaps and user needs in this space?", keyword),
			URL:       fmt.Sprintf("https://reddit.com/r/%s/post_%s_%d", subreddit, slug, i+1),
			Subreddit: subreddit,
			Score:     45 + i*10,
			Comments:  20 + i*5,
			CreatedAt: now.Add(-time.Duration(i+1) * 24 * time.Hour),
		})
	}
	return posts
}

func dedupePosts(posts []Post) []Post {
	seenURL := map[string]bool{}
	seenTitle := map[string]bool{}
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		title := strings.ToLower(strings.TrimSpace(p.Title))
		if seenURL[p.URL] || seenTitle[title] {
			continue
		}
		seenURL[p.URL] = true
		seenTitle[title] = true
		out = append(out, p)
	}
	return out
}

// Relevance scores a post by engagement, keyword hits, recency and subreddit
func Relevance(p Post, keywords []string, now time.Time) int {
	score := p.Score
	title := strings.ToLower(p.Title)
	content := strings.ToLower(p.Content)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(title, k) {
			score += 50
		}
		if strings.Contains(content, k) {
			score += 25
		}
	}
	score += 2 * p.Comments
	if p.CreatedAt.After(now.Add(-7 * 24 * time.Hour)) {
		score += 20
	}
	for _, core := range topics.CoreSubreddits {
		if strings.EqualFold(core, p.Subreddit) {
			score += 30
			break
		}
	}
	return score
}

func (r *Reddit) rank(posts []Post, keywords []string) []Post {
	now := r.now()
	scores := make(map[string]int, len(posts))
	for _, p := range posts {
		scores[p.URL] = Relevance(p, keywords, now)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return scores[posts[i].URL] > scores[posts[j].URL]
	})
	if len(posts) > r.cfg.MaxPosts {
		posts = posts[:r.cfg.MaxPosts]
	}
	return posts
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n])) + "..."
}
