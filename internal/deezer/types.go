package deezer

// searchResponse is the JSON response of the track search endpoint.
type searchResponse struct {
	Data  []trackResult `json:"data"`
	Total int           `json:"total"`
	Next  string        `json:"next,omitempty"`
	Error *apiError     `json:"error,omitempty"`
}

type trackResult struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Link     string    `json:"link"`
	Duration int       `json:"duration"`
	Preview  string    `json:"preview"`
	Artist   artistRef `json:"artist"`
	Album    albumRef  `json:"album"`
}

type artistRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type albumRef struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	CoverMedium string `json:"cover_medium"`
	CoverBig    string `json:"cover_big"`
}

// apiError is returned with a 200 status when Deezer rejects a query.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
