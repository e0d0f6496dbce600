// Package bili is a thin client for the Bilibili Manga content API. It
// performs single HTTP exchanges only; retry policies live with the callers.
package bili

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://manga.bilibili.com"

	detailPath     = "/twirp/comic.v1.Comic/ComicDetail?device=pc&platform=web"
	imageIndexPath = "/twirp/comic.v1.Comic/GetImageIndex?device=pc&platform=web"
	imageTokenPath = "/twirp/comic.v1.Comic/ImageToken?device=pc&platform=web"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/103.0.0.0 Safari/537.36"
)

// ChecksumError reports a page body whose MD5 did not match the
// server-declared ETag. It marks a corrupted transfer, not an adversary.
type ChecksumError struct {
	Declared string
	Computed string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("content checksum mismatch: etag %s != md5 %s", e.Declared, e.Computed)
}

// Client talks to the Bilibili Manga API for one comic. A client is safe for
// concurrent use; it never mutates shared state after construction.
type Client struct {
	httpClient *http.Client
	baseURL    string
	comicID    int
	sessData   string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternate API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient returns a client for the given comic. sessData may be empty, in
// which case only free content is reachable.
func NewClient(comicID int, sessData string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		comicID:    comicID,
		sessData:   sessData,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Detail fetches series-level metadata including the ordered episode list.
func (c *Client) Detail(ctx context.Context) (*ComicDetail, error) {
	form := url.Values{"comic_id": {strconv.Itoa(c.comicID)}}
	var detail ComicDetail
	if err := c.post(ctx, detailPath, form, &detail); err != nil {
		return nil, fmt.Errorf("comic detail: %w", err)
	}
	return &detail, nil
}

// ImageIndex fetches the ordered list of page path fragments for an episode.
func (c *Client) ImageIndex(ctx context.Context, episodeID int) ([]string, error) {
	form := url.Values{"ep_id": {strconv.Itoa(episodeID)}}
	var idx imageIndex
	if err := c.post(ctx, imageIndexPath, form, &idx); err != nil {
		return nil, fmt.Errorf("image index: %w", err)
	}
	paths := make([]string, len(idx.Images))
	for i, img := range idx.Images {
		paths[i] = img.Path
	}
	return paths, nil
}

// ImageTokens exchanges page path fragments for access tokens in a single
// batch call. The result is aligned by position with paths.
func (c *Client) ImageTokens(ctx context.Context, paths []string) ([]PageToken, error) {
	raw, err := json.Marshal(paths)
	if err != nil {
		return nil, fmt.Errorf("image token: encoding paths: %w", err)
	}
	form := url.Values{"urls": {string(raw)}}
	var tokens []PageToken
	if err := c.post(ctx, imageTokenPath, form, &tokens); err != nil {
		return nil, fmt.Errorf("image token: %w", err)
	}
	return tokens, nil
}

// Image fetches one page's bytes and verifies them against the
// server-declared checksum. The body is returned only when the MD5 matches.
func (c *Client) Image(ctx context.Context, pageURL, token string) ([]byte, error) {
	u := fmt.Sprintf("%s?token=%s", pageURL, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("image request: %w", err)
	}
	req.Header.Set("user-agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image fetch: reading body: %w", err)
	}

	sum := md5.Sum(body)
	computed := hex.EncodeToString(sum[:])
	declared := strings.Trim(resp.Header.Get("Etag"), `"`)
	if !strings.EqualFold(declared, computed) {
		return nil, &ChecksumError{Declared: declared, Computed: computed}
	}
	return body, nil
}

// post issues a form-encoded POST, unwraps the API envelope, and decodes the
// payload into out.
func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return err
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("user-agent", userAgent)
	req.Header.Set("origin", defaultBaseURL)
	req.Header.Set("referer", fmt.Sprintf("%s/detail/mc%d?from=manga_homepage", defaultBaseURL, c.comicID))
	if c.sessData != "" {
		req.Header.Set("cookie", "SESSDATA="+c.sessData)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if env.Code != 0 {
		return fmt.Errorf("api error %d: %s", env.Code, env.Msg)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}
