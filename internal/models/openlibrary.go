package models

// Book is the normalized shape produced by the OpenLibrary client. Authors is
// already resolved to display names regardless of which payload shape the
// catalog returned.
type Book struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	CoverURL *string  `json:"coverUrl"`
	Year     *int     `json:"year,omitempty"`
}

type BookSearchResult struct {
	Query string `json:"query"`
	Count int    `json:"count"`
	Items []Book `json:"items"`
}

type OLSearchResponse struct {
	Docs []OLSearchDoc `json:"docs"`
}

// OLSearchDoc is the search.json document shape: author names inline, cover
// id under cover_i.
type OLSearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	CoverID          int      `json:"cover_i"`
	FirstPublishYear int      `json:"first_publish_year"`
}

// OLWork is the works/{id}.json shape: covers as an id list and authors as
// references that need a second lookup for names.
type OLWork struct {
	Key              string         `json:"key"`
	Title            string         `json:"title"`
	Covers           []int          `json:"covers"`
	Authors          []OLWorkAuthor `json:"authors"`
	AuthorName       []string       `json:"author_name"`
	FirstPublishYear int            `json:"first_publish_year"`
}

type OLWorkAuthor struct {
	Author OLAuthorRef `json:"author"`
}

type OLAuthorRef struct {
	Key string `json:"key"`
}

type OLAuthor struct {
	Name string `json:"name"`
}
