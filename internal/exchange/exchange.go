// Package exchange turns an Instagram login code into the account's recent
// captions through three Graph API calls: token, pages, media.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// Stage names the Graph call that failed.
type Stage string

const (
	StageToken Stage = "token"
	StagePages Stage = "pages"
	StageMedia Stage = "media"
)

// ErrNoBusinessAccount is returned when none of the user's pages has an
// Instagram business account attached.
var ErrNoBusinessAccount = errors.New("no Instagram business account found")

// UpstreamError is a non-2xx answer from the Graph API. Details holds the
// upstream body, as JSON when it parses.
type UpstreamError struct {
	Stage   Stage
	Status  int
	Details json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("graph %s call returned status %d: %s", e.Stage, e.Status, e.Details)
}

// Message is the client-facing summary of the failed stage.
func (e *UpstreamError) Message() string {
	switch e.Stage {
	case StageToken:
		return "Token exchange failed"
	case StagePages:
		return "Page lookup failed"
	default:
		return "Media fetch failed"
	}
}

// Config holds the Facebook app settings.
type Config struct {
	AppID       string
	AppSecret   string
	RedirectURI string
	// GraphURL is the versioned Graph API root, without a trailing slash.
	GraphURL string
	// HTTPClient is used for every Graph call. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Media is one Instagram post.
type Media struct {
	ID        string `json:"id"`
	Caption   string `json:"caption,omitempty"`
	Permalink string `json:"permalink,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Result is the outcome of a successful exchange.
type Result struct {
	IGUserID string   `json:"ig_user_id"`
	PageID   string   `json:"page_id"`
	Media    []Media  `json:"media"`
	Captions []string `json:"captions"`
}

// Client performs code exchanges. It holds no per-request state.
type Client struct {
	oauth      *oauth2.Config
	graphURL   string
	httpClient *http.Client
}

// New creates a Client for cfg.
func New(cfg Config) *Client {
	graph := strings.TrimSuffix(cfg.GraphURL, "/")
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.AppID,
			ClientSecret: cfg.AppSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				TokenURL:  graph + "/oauth/access_token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		graphURL:   graph,
		httpClient: cfg.HTTPClient,
	}
}

type page struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	AccessToken              string `json:"access_token"`
	InstagramBusinessAccount *struct {
		ID string `json:"id"`
	} `json:"instagram_business_account"`
}

// Exchange trades code for a user token, finds the first page with an
// Instagram business account and fetches its 25 most recent posts.
func (c *Client) Exchange(ctx context.Context, code string) (*Result, error) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	userToken, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, &UpstreamError{Stage: StageToken, Status: re.Response.StatusCode, Details: details(re.Body)}
		}
		return nil, fmt.Errorf("exchanging code: %w", err)
	}

	var pages struct {
		Data []page `json:"data"`
	}
	q := url.Values{"fields": {"id,name,access_token,instagram_business_account"}}
	if err := c.get(ctx, userToken.AccessToken, "me/accounts", q, StagePages, &pages); err != nil {
		return nil, err
	}

	var found *page
	for i := range pages.Data {
		if ig := pages.Data[i].InstagramBusinessAccount; ig != nil && ig.ID != "" {
			found = &pages.Data[i]
			break
		}
	}
	if found == nil {
		return nil, ErrNoBusinessAccount
	}
	igUserID := found.InstagramBusinessAccount.ID

	var media struct {
		Data []Media `json:"data"`
	}
	q = url.Values{"fields": {"id,caption,permalink,timestamp"}, "limit": {"25"}}
	if err := c.get(ctx, found.AccessToken, igUserID+"/media", q, StageMedia, &media); err != nil {
		return nil, err
	}

	res := &Result{
		IGUserID: igUserID,
		PageID:   found.ID,
		Media:    media.Data,
		Captions: []string{},
	}
	if res.Media == nil {
		res.Media = []Media{}
	}
	for _, m := range res.Media {
		if m.Caption != "" {
			res.Captions = append(res.Captions, m.Caption)
		}
	}
	return res, nil
}

// get calls a Graph edge with token as the bearer credential and decodes
// the JSON answer into out.
func (c *Client) get(ctx context.Context, token, path string, q url.Values, stage Stage, out any) error {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	endpoint := c.graphURL + "/" + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building %s request: %w", stage, err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph %s request failed: %w", stage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading graph %s response: %w", stage, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Stage: stage, Status: resp.StatusCode, Details: details(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding graph %s response: %w", stage, err)
	}
	return nil
}

// details keeps a JSON body as-is and quotes anything else.
func details(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
