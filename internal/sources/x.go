package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/topics"
	"go.uber.org/zap"
)

const (
	DefaultTwitterURL = "https://api.twitter.com"
	DefaultXMaxPosts  = 15
	maxSearchKeywords = 3
	mockPostsPerTopic = 8
	twitterMaxResults = 10
)

// XConfig configures the X source. Without a bearer token posts are
// generated locally from the topic dictionary.
type XConfig struct {
	BearerToken  string
	BaseURL      string
	MaxPosts     int
	RequestDelay time.Duration // between keyword searches against the API
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// XPost is a post on X
type XPost struct {
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	Author    string    `json:"author"`
	Verified  bool      `json:"verified"`
	Likes     int       `json:"likes"`
	Retweets  int       `json:"retweets"`
	Replies   int       `json:"replies"`
	CreatedAt time.Time `json:"created_at"`
	Hashtags  []string  `json:"hashtags"`
}

// X gathers social posts about the query
type X struct {
	cfg    XConfig
	http   *http.Client
	dict   *topics.Dictionary
	logger *zap.Logger
	now    func() time.Time
}

// NewX creates an X source. A nil dictionary uses the builtin topics.
func NewX(cfg XConfig, dict *topics.Dictionary, logger *zap.Logger) *X {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dict == nil {
		dict = topics.Builtin()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTwitterURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxPosts <= 0 {
		cfg.MaxPosts = DefaultXMaxPosts
	}
	if cfg.RequestDelay < 0 {
		cfg.RequestDelay = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &X{cfg: cfg, http: httpClient, dict: dict, logger: logger, now: time.Now}
}

func (x *X) Name() string { return "x" }

// Gather formats the top posts as a context block
func (x *X) Gather(ctx context.Context, q ideas.Query) (*ideas.ContextBlock, error) {
	posts, err := x.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&b, "- %s: %s (%d likes, %d reposts, %d replies)\n", p.Author, clip(strings.Join(strings.Fields(p.Content), " "), 280), p.Likes, p.Retweets, p.Replies)
	}
	return &ideas.ContextBlock{Label: "Recent posts on X", Text: b.String()}, nil
}

// Search returns posts from the API when a bearer token is configured and the
// API answers, otherwise deterministic generated posts.
func (x *X) Search(ctx context.Context, q ideas.Query) ([]XPost, error) {
	if x.cfg.BearerToken != "" {
		posts, err := x.searchAPI(ctx, q.Keywords)
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			x.logger.Warn("x api search failed, generating posts", zap.Error(err))
		case len(posts) == 0:
			x.logger.Info("x api returned no posts, generating posts")
		default:
			return posts, nil
		}
	}
	return x.Mock(q), nil
}

type twitterSearchResponse struct {
	Data []struct {
		ID            string    `json:"id"`
		Text          string    `json:"text"`
		CreatedAt     time.Time `json:"created_at"`
		AuthorID      string    `json:"author_id"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Verified bool   `json:"verified"`
		} `json:"users"`
	} `json:"includes"`
}

func (x *X) searchAPI(ctx context.Context, keywords []string) ([]XPost, error) {
	if len(keywords) > maxSearchKeywords {
		keywords = keywords[:maxSearchKeywords]
	}

	var all []XPost
	var lastErr error
	for i, kw := range keywords {
		if i > 0 {
			if err := sleep(ctx, x.cfg.RequestDelay); err != nil {
				return nil, err
			}
		}
		posts, err := x.searchKeyword(ctx, kw)
		if err != nil {
			lastErr = err
			x.logger.Warn("x keyword search failed", zap.String("keyword", kw), zap.Error(err))
			continue
		}
		all = append(all, posts...)
	}
	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}

	seen := map[string]bool{}
	out := all[:0]
	for _, p := range all {
		if !seen[p.URL] {
			seen[p.URL] = true
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Likes+out[i].Retweets > out[j].Likes+out[j].Retweets
	})
	if len(out) > x.cfg.MaxPosts {
		out = out[:x.cfg.MaxPosts]
	}
	return out, nil
}

func (x *X) searchKeyword(ctx context.Context, keyword string) ([]XPost, error) {
	params := url.Values{}
	params.Set("query", keyword+" -is:retweet lang:en")
	params.Set("max_results", fmt.Sprint(twitterMaxResults))
	params.Set("tweet.fields", "created_at,public_metrics,author_id")
	params.Set("expansions", "author_id")
	params.Set("user.fields", "username,verified")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.cfg.BaseURL+"/2/tweets/search/recent?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+x.cfg.BearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := x.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("twitter api error %d: %s", resp.StatusCode, body)
	}

	var data twitterSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	type author struct {
		username string
		verified bool
	}
	users := make(map[string]author, len(data.Includes.Users))
	for _, u := range data.Includes.Users {
		users[u.ID] = author{username: u.Username, verified: u.Verified}
	}

	posts := make([]XPost, 0, len(data.Data))
	for _, t := range data.Data {
		a, ok := users[t.AuthorID]
		if !ok {
			a = author{username: "unknown"}
		}
		posts = append(posts, XPost{
			Content:   t.Text,
			URL:       fmt.Sprintf("https://x.com/%s/status/%s", a.username, t.ID),
			Author:    "@" + a.username,
			Verified:  a.verified,
			Likes:     t.PublicMetrics.LikeCount,
			Retweets:  t.PublicMetrics.RetweetCount,
			Replies:   t.PublicMetrics.ReplyCount,
			CreatedAt: t.CreatedAt,
			Hashtags:  hashtagRe.FindAllString(t.Text, -1),
		})
	}
	return posts, nil
}

var (
	hashtagRe = regexp.MustCompile(`#[A-Za-z0-9_]+`)
	figureRe  = regexp.MustCompile(`\$[\d,]+|\d+%|\d+x`)
)

type engagement struct{ likes, retweets, replies float64 }

var tierEngagement = map[string]engagement{
	"high":   {500, 120, 80},
	"medium": {150, 35, 25},
	"low":    {45, 10, 8},
}

// ContentMultiplier scales engagement by content cues such as questions and hard numbers
func ContentMultiplier(content string) float64 {
	m := 1.0
	if strings.Contains(content, "?") {
		m += 0.3
	}
	if strings.Contains(content, "🧵") || strings.Contains(content, "Thread") {
		m += 0.4
	}
	if strings.Contains(content, "Hot take") || strings.Contains(content, "Unpopular opinion") {
		m += 0.5
	}
	if strings.Contains(content, "Just") || strings.Contains(content, "My experience") {
		m += 0.2
	}
	if figureRe.MatchString(content) {
		m += 0.3
	}
	return m
}

// Mock generates topic-flavoured posts. The same query always yields the
// same posts and engagement; only timestamps follow the clock.
func (x *X) Mock(q ideas.Query) []XPost {
	ts := q.Topics
	if len(ts) == 0 {
		ts = []topics.Topic{topics.Startup, topics.Default}
	}

	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(q.Prompt)))
	for _, k := range q.Keywords {
		h.Write([]byte{0})
		h.Write([]byte(strings.ToLower(k)))
	}
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	now := x.now()

	var posts []XPost
	seen := map[string]bool{}
	for _, t := range ts {
		p, ok := x.dict.Profile(t)
		if !ok || len(p.Posts) == 0 || len(p.Accounts) == 0 {
			continue
		}
		primary := string(t)
		if len(q.Keywords) > 0 {
			primary = q.Keywords[0]
		}
		hashtags := p.Hashtags
		if len(hashtags) > 3 {
			hashtags = hashtags[:3]
		}

		for i, tpl := range p.Posts {
			if i == mockPostsPerTopic {
				break
			}
			content := strings.ReplaceAll(tpl, "{primary}", primary)
			if seen[content] {
				continue
			}
			seen[content] = true

			account := p.Accounts[i%len(p.Accounts)]
			base, ok := tierEngagement[account.Tier]
			if !ok {
				base = tierEngagement["low"]
			}
			mult := ContentMultiplier(content)
			vary := func(v float64) int { return int(v * mult * (0.8 + rng.Float64()*0.4)) }

			posts = append(posts, XPost{
				Content:   content,
				URL:       fmt.Sprintf("https://x.com/%s/status/%d", account.Username, 1_700_000_000_000_000_000+rng.Int64N(1_000_000_000_000_000)),
				Author:    "@" + account.Username,
				Verified:  account.Verified,
				Likes:     vary(base.likes),
				Retweets:  vary(base.retweets),
				Replies:   vary(base.replies),
				CreatedAt: now.Add(-time.Duration(rng.Int64N(int64(7 * 24 * time.Hour)))),
				Hashtags:  append([]string(nil), hashtags...),
			})
		}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return engagementScore(posts[i]) > engagementScore(posts[j])
	})
	if len(posts) > x.cfg.MaxPosts {
		posts = posts[:x.cfg.MaxPosts]
	}
	return posts
}

func engagementScore(p XPost) int {
	return p.Likes + 3*p.Retweets + 2*p.Replies
}
