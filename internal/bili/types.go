package bili

import "encoding/json"

// apiResponse is the envelope every twirp endpoint wraps its payload in.
type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// ComicDetail is the series-level metadata returned by the ComicDetail
// endpoint.
type ComicDetail struct {
	ID         int           `json:"id"`
	Title      string        `json:"title"`
	AuthorName []string      `json:"author_name"`
	Styles     []string      `json:"styles"`
	Evaluate   string        `json:"evaluate"`
	Total      int           `json:"total"`
	EpList     []EpisodeInfo `json:"ep_list"`
}

// EpisodeInfo is one entry of a comic's episode list. The list arrives
// newest-first; callers reverse it to get ordinal order.
type EpisodeInfo struct {
	ID         int    `json:"id"`
	Ord        int    `json:"ord"`
	IsLocked   bool   `json:"is_locked"`
	ShortTitle string `json:"short_title"`
	Title      string `json:"title"`
	Size       int64  `json:"size"`
}

// imageIndex is the GetImageIndex payload.
type imageIndex struct {
	Images []struct {
		Path string `json:"path"`
	} `json:"images"`
}

// PageToken is one page's short-lived access credential, aligned by
// position with the path list submitted to ImageToken.
type PageToken struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}
