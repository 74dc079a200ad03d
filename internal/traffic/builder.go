package traffic

import (
	"net/http"
	"strings"

	"keepwarm/internal/discovery"
)

// Builders synthesizes one minimal, valid sample request per traffic
// family. Each family rotates independently through its content pool, so
// repeated calls walk the pool in order and wrap around.
type Builders struct {
	maxTokens int
	seq       map[Family]int
}

// NewBuilders creates a builder set. maxTokens caps generation length for
// chat, completion and vision requests.
func NewBuilders(maxTokens int) *Builders {
	return &Builders{
		maxTokens: maxTokens,
		seq:       make(map[Family]int),
	}
}

// next returns the current rotation index for family over a pool of n
// entries and advances the counter. Dispatch within a cycle is
// sequential, so plain map state is fine; parallel dispatch would need
// per-family atomic counters.
func (b *Builders) next(family Family, n int) int {
	i := b.seq[family] % n
	b.seq[family]++
	return i
}

// Build produces the sample request for an endpoint of the given family.
// ok is false for FamilyUnsupported, which has no builder.
func (b *Builders) Build(ep discovery.Endpoint, family Family) (req Request, ok bool) {
	switch family {
	case FamilyChat:
		return b.buildChat(ep), true
	case FamilyCompletion:
		return b.buildCompletion(ep), true
	case FamilyEmbedding:
		return b.buildEmbedding(ep), true
	case FamilyRerank:
		return b.buildRerank(ep), true
	case FamilyVisionLanguage:
		return b.buildVision(ep), true
	}
	return Request{}, false
}

func (b *Builders) buildChat(ep discovery.Endpoint) Request {
	prompt := chatPrompts[b.next(FamilyChat, len(chatPrompts))]

	return Request{
		Path:   "/v1/chat/completions",
		Method: http.MethodPost,
		Shape:  ShapeChat,
		Body: chatRequest{
			Model:       ep.ModelName,
			Messages:    []Message{NewTextMessage("user", prompt)},
			MaxTokens:   b.maxTokens,
			Temperature: 0.7,
		},
	}
}

func (b *Builders) buildCompletion(ep discovery.Endpoint) Request {
	prompt := completionPrompts[b.next(FamilyCompletion, len(completionPrompts))]

	return Request{
		Path:   "/v1/completions",
		Method: http.MethodPost,
		Shape:  ShapeCompletion,
		Body: completionRequest{
			Model:       ep.ModelName,
			Prompt:      prompt,
			MaxTokens:   b.maxTokens,
			Temperature: 0.7,
		},
	}
}

func (b *Builders) buildEmbedding(ep discovery.Endpoint) Request {
	text := embeddingTexts[b.next(FamilyEmbedding, len(embeddingTexts))]

	return Request{
		Method: http.MethodPost,
		Shape:  ShapeEmbedding,
		Body: embeddingRequest{
			Model:     ep.ModelName,
			Input:     text,
			InputType: "query",
		},
	}
}

func (b *Builders) buildRerank(ep discovery.Endpoint) Request {
	sample := rerankSamples[b.next(FamilyRerank, len(rerankSamples))]

	passages := make([]rerankText, 0, len(sample.Documents))
	for _, doc := range sample.Documents {
		passages = append(passages, rerankText{Text: doc})
	}

	return Request{
		Method: http.MethodPost,
		Shape:  ShapeRerank,
		Body: rerankRequest{
			Model:    ep.ModelName,
			Query:    rerankText{Text: sample.Query},
			Passages: passages,
		},
		// Some rerankers reject the NIM shape; the flat shape is the
		// second attempt.
		AltBody: rerankAltRequest{
			Model:     ep.ModelName,
			Query:     sample.Query,
			Documents: sample.Documents,
		},
	}
}

func (b *Builders) buildVision(ep discovery.Endpoint) Request {
	image := ContentPart{
		Type:     "image_url",
		ImageURL: &ImageURL{URL: "data:image/png;base64," + placeholderImage},
	}

	var msg Message
	if strings.Contains(strings.ToLower(ep.ModelName), "parse") {
		// Document-parsing models take image-only input; a text part
		// confuses them.
		msg = NewMultiContentMessage("user", image)
	} else {
		prompt := visionPrompts[b.next(FamilyVisionLanguage, len(visionPrompts))]
		msg = NewMultiContentMessage("user", image, ContentPart{Type: "text", Text: prompt})
	}

	return Request{
		Path:   "/v1/chat/completions",
		Method: http.MethodPost,
		Shape:  ShapeChat,
		Body: chatRequest{
			Model:     ep.ModelName,
			Messages:  []Message{msg},
			MaxTokens: b.maxTokens,
		},
	}
}
