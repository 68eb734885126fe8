package models

// Movie is the normalized shape served to clients and used for enrichment.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Year        string  `json:"year"`
	Overview    string  `json:"overview"`
	PosterURL   *string `json:"posterUrl"`
	ReleaseDate *string `json:"release_date"`
}

type MovieSearchResult struct {
	Query        string  `json:"query"`
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Items        []Movie `json:"items"`
}

type TMDBSearchResponse struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []TMDBMovie `json:"results"`
}

type TMDBMovie struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	Overview      string `json:"overview"`
	ReleaseDate   string `json:"release_date"`
	PosterPath    string `json:"poster_path"`
}
