package models

// ContentSource indicates how page content was obtained
const (
	ContentSourceSelection = "selection"
	ContentSourcePage      = "page"
)

// ExtractRequest describes a page capture request. When Selection is
// non-empty it is used verbatim and the page is never fetched.
type ExtractRequest struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Selection string `json:"selection"`
}

// PageContent is the result of a content extraction
type PageContent struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
	Source   string `json:"source"` // "selection" or "page"
}
