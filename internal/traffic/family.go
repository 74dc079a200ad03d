package traffic

import (
	"strings"

	"keepwarm/internal/discovery"
)

// Family is the traffic class an endpoint is served with. It decides
// which sample request builder runs against the endpoint.
type Family string

const (
	FamilyChat           Family = "chat"
	FamilyCompletion     Family = "completion"
	FamilyEmbedding      Family = "embedding"
	FamilyRerank         Family = "rerank"
	FamilyVisionLanguage Family = "vision-language"
	FamilyUnsupported    Family = "unsupported"
)

// classifyRule maps an endpoint predicate to a family. Rules are
// evaluated top-down, first match wins.
type classifyRule struct {
	match  func(task, apiStandard string, hasChatTemplate bool) bool
	family Family
}

var classifyRules = []classifyRule{
	{
		match: func(task, api string, chat bool) bool {
			return isTextGeneration(task) && (chat || strings.Contains(api, "chat"))
		},
		family: FamilyChat,
	},
	{
		// Text generation without a chat surface falls back to the
		// plain completions API.
		match: func(task, api string, chat bool) bool {
			return isTextGeneration(task)
		},
		family: FamilyCompletion,
	},
	{
		match:  func(task, api string, chat bool) bool { return task == "EMBED" },
		family: FamilyEmbedding,
	},
	{
		match:  func(task, api string, chat bool) bool { return task == "RANK" },
		family: FamilyRerank,
	},
	{
		// OBJECT_DETECTION endpoints accept chat-completions payloads
		// with image content, same as vision-language models.
		match: func(task, api string, chat bool) bool {
			return task == "IMAGE_TEXT_TO_TEXT" || task == "OBJECT_DETECTION"
		},
		family: FamilyVisionLanguage,
	},
}

func isTextGeneration(task string) bool {
	return task == "TEXT_GENERATION" || task == "TEXT_TO_TEXT_GENERATION"
}

// Classify maps an endpoint to its traffic family. It is total: any
// unrecognized task degrades to FamilyUnsupported, never an error.
func Classify(ep discovery.Endpoint) Family {
	task := strings.ToUpper(strings.TrimSpace(ep.Task))
	api := strings.ToLower(strings.TrimSpace(ep.APIStandard))

	for _, rule := range classifyRules {
		if rule.match(task, api, ep.HasChatTemplate) {
			return rule.family
		}
	}
	return FamilyUnsupported
}
