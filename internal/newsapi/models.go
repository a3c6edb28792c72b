package newsapi

// StatusOK is the status value of a successful response.
const StatusOK = "ok"

// Source identifies the publisher of an article.
type Source struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Article is a single entry of the /everything response.
// Every field except Source may be null upstream.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// EverythingResponse is the body of /v2/everything.
type EverythingResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`

	// Populated when Status is "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResponse is the body returned with non-2xx status codes.
type errorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
