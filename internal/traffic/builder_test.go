package traffic

import (
	"strings"
	"testing"

	"keepwarm/internal/discovery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEndpoint(task, model string) discovery.Endpoint {
	return discovery.Endpoint{
		Name:      "ep",
		Task:      task,
		ModelName: model,
		URL:       "https://ep.example.com/v1/chat/completions",
	}
}

func TestPoolsHaveEnoughEntries(t *testing.T) {
	assert.GreaterOrEqual(t, len(chatPrompts), 3)
	assert.GreaterOrEqual(t, len(completionPrompts), 3)
	assert.GreaterOrEqual(t, len(embeddingTexts), 3)
	assert.GreaterOrEqual(t, len(rerankSamples), 3)
	assert.GreaterOrEqual(t, len(visionPrompts), 3)
}

func TestBuildChat(t *testing.T) {
	b := NewBuilders(50)
	req, ok := b.Build(testEndpoint("TEXT_GENERATION", "llama"), FamilyChat)
	require.True(t, ok)

	assert.Equal(t, "/v1/chat/completions", req.Path)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, ShapeChat, req.Shape)

	body, isChat := req.Body.(chatRequest)
	require.True(t, isChat)
	assert.Equal(t, "llama", body.Model)
	assert.Equal(t, 50, body.MaxTokens)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "user", body.Messages[0].Role)
	assert.Equal(t, chatPrompts[0], body.Messages[0].Content)
}

func TestBuildRotationIsDeterministic(t *testing.T) {
	ep := testEndpoint("TEXT_GENERATION", "llama")

	// Two fresh builder sets walk the pool identically.
	a, b := NewBuilders(50), NewBuilders(50)
	for i := 0; i < len(chatPrompts); i++ {
		ra, _ := a.Build(ep, FamilyChat)
		rb, _ := b.Build(ep, FamilyChat)
		assert.Equal(t, ra.Body, rb.Body, "call %d", i)
	}
}

func TestBuildRotationWrapsAround(t *testing.T) {
	ep := testEndpoint("TEXT_GENERATION", "llama")
	b := NewBuilders(50)

	var seen []string
	for i := 0; i < len(chatPrompts)+1; i++ {
		req, _ := b.Build(ep, FamilyChat)
		body := req.Body.(chatRequest)
		seen = append(seen, body.Messages[0].Content.(string))
	}

	// Each entry came from the pool, in order, wrapping to the first.
	for i, prompt := range seen[:len(chatPrompts)] {
		assert.Equal(t, chatPrompts[i], prompt)
	}
	assert.Equal(t, chatPrompts[0], seen[len(chatPrompts)])
}

func TestFamiliesRotateIndependently(t *testing.T) {
	b := NewBuilders(50)

	// Advancing chat must not advance the embedding pool.
	for i := 0; i < 3; i++ {
		b.Build(testEndpoint("TEXT_GENERATION", "llama"), FamilyChat)
	}
	req, _ := b.Build(testEndpoint("EMBED", "embedder"), FamilyEmbedding)
	body := req.Body.(embeddingRequest)
	assert.Equal(t, embeddingTexts[0], body.Input)
}

func TestBuildCompletion(t *testing.T) {
	b := NewBuilders(25)
	req, ok := b.Build(testEndpoint("TEXT_GENERATION", "llama"), FamilyCompletion)
	require.True(t, ok)

	assert.Equal(t, "/v1/completions", req.Path)
	assert.Equal(t, ShapeCompletion, req.Shape)

	body := req.Body.(completionRequest)
	assert.Equal(t, "llama", body.Model)
	assert.Equal(t, 25, body.MaxTokens)
	assert.Equal(t, completionPrompts[0], body.Prompt)
}

func TestBuildEmbedding(t *testing.T) {
	b := NewBuilders(50)
	req, ok := b.Build(testEndpoint("EMBED", "embedder"), FamilyEmbedding)
	require.True(t, ok)

	// Embedding endpoints already publish their full path.
	assert.Empty(t, req.Path)
	assert.Equal(t, ShapeEmbedding, req.Shape)

	body := req.Body.(embeddingRequest)
	assert.Equal(t, "embedder", body.Model)
	assert.Equal(t, "query", body.InputType)
	assert.NotEmpty(t, body.Input)
}

func TestBuildRerank(t *testing.T) {
	b := NewBuilders(50)
	req, ok := b.Build(testEndpoint("RANK", "ranker"), FamilyRerank)
	require.True(t, ok)

	assert.Empty(t, req.Path)
	assert.Equal(t, ShapeRerank, req.Shape)

	body := req.Body.(rerankRequest)
	assert.Equal(t, "ranker", body.Model)
	assert.Equal(t, rerankSamples[0].Query, body.Query.Text)
	assert.Len(t, body.Passages, len(rerankSamples[0].Documents))

	require.NotNil(t, req.AltBody)
	alt := req.AltBody.(rerankAltRequest)
	assert.Equal(t, rerankSamples[0].Query, alt.Query)
	assert.Equal(t, rerankSamples[0].Documents, alt.Documents)
}

func TestBuildVision(t *testing.T) {
	b := NewBuilders(50)
	req, ok := b.Build(testEndpoint("IMAGE_TEXT_TO_TEXT", "pali"), FamilyVisionLanguage)
	require.True(t, ok)

	assert.Equal(t, "/v1/chat/completions", req.Path)
	body := req.Body.(chatRequest)
	require.Len(t, body.Messages, 1)

	parts := body.Messages[0].Content.([]ContentPart)
	require.Len(t, parts, 2)
	assert.Equal(t, "image_url", parts[0].Type)
	assert.True(t, strings.HasPrefix(parts[0].ImageURL.URL, "data:image/png;base64,"))
	assert.Equal(t, "text", parts[1].Type)
	assert.NotEmpty(t, parts[1].Text)
}

func TestBuildVisionParseModelIsImageOnly(t *testing.T) {
	b := NewBuilders(50)
	req, ok := b.Build(testEndpoint("IMAGE_TEXT_TO_TEXT", "nemoretriever-parse-v1"), FamilyVisionLanguage)
	require.True(t, ok)

	body := req.Body.(chatRequest)
	parts := body.Messages[0].Content.([]ContentPart)
	require.Len(t, parts, 1)
	assert.Equal(t, "image_url", parts[0].Type)
}

func TestBuildUnsupported(t *testing.T) {
	b := NewBuilders(50)
	_, ok := b.Build(testEndpoint("SPEECH_TO_TEXT", "whisper"), FamilyUnsupported)
	assert.False(t, ok)
}
