package traffic

// Shape tells the dispatcher how to read the response body when pulling
// out a short confirmation detail.
type Shape string

const (
	ShapeChat       Shape = "chat"
	ShapeCompletion Shape = "completion"
	ShapeEmbedding  Shape = "embedding"
	ShapeRerank     Shape = "rerank"
)

// Request is a sample request ready to send to one endpoint. It lives
// only for the dispatch call that built it.
type Request struct {
	// Path is joined to the endpoint's base URL. Empty means the
	// endpoint URL is used as-is (embedding and rerank endpoints
	// already carry their full path).
	Path   string
	Method string
	Body   interface{}

	// AltBody, when set, is an alternate payload shape to try if the
	// first attempt is rejected with an HTTP error.
	AltBody interface{}

	Shape Shape
}

// Message is a single chat message. Content is either a plain string or
// a slice of ContentPart for multimodal messages.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// ContentPart is one part of a multimodal message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image as a data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// NewTextMessage creates a plain text message.
func NewTextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// NewMultiContentMessage creates a message with multiple content parts.
func NewMultiContentMessage(role string, parts ...ContentPart) Message {
	return Message{Role: role, Content: parts}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature,omitempty"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`

	// Asymmetric embedding models require an input type; "query" is
	// accepted as a default by symmetric ones too.
	InputType string `json:"input_type"`
}

type rerankText struct {
	Text string `json:"text"`
}

type rerankRequest struct {
	Model    string       `json:"model"`
	Query    rerankText   `json:"query"`
	Passages []rerankText `json:"passages"`
}

type rerankAltRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

// ChatResponse covers both chat and plain completion responses; only the
// fields needed for a confirmation summary are decoded.
type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
}

// ChatChoice is one generated alternative in a chat or completion
// response.
type ChatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Text string `json:"text"`
}

// EmbeddingResponse is the OpenAI-style embeddings payload.
type EmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// RerankResponse covers both the NIM shape (rankings) and the flat shape
// (results).
type RerankResponse struct {
	Rankings []RerankScore `json:"rankings"`
	Results  []RerankScore `json:"results"`
}

// RerankScore is one scored passage.
type RerankScore struct {
	Index int     `json:"index"`
	Logit float64 `json:"logit"`
	Score float64 `json:"score"`
}
