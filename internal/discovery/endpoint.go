package discovery

import "strings"

// Endpoint is a snapshot of a deployed model endpoint as reported by the
// serving control plane. It is rebuilt on every discovery call and never
// cached across cycles.
type Endpoint struct {
	Name            string `json:"name"`
	Namespace       string `json:"namespace"`
	URL             string `json:"url"`
	State           string `json:"state"`
	APIStandard     string `json:"api_standard"`
	Task            string `json:"task"`
	ModelName       string `json:"model_name"`
	HasChatTemplate bool   `json:"has_chat_template"`
}

// Eligible reports whether the endpoint should receive traffic. Only
// endpoints that are actually serving can be kept warm.
func (e Endpoint) Eligible() bool {
	switch strings.ToLower(e.State) {
	case "running", "loaded":
		return true
	}
	return false
}

// BaseURL strips the API-standard suffix (e.g. /v1/chat/completions) from
// the endpoint URL, leaving the root the per-family paths attach to.
func (e Endpoint) BaseURL() string {
	url := strings.TrimRight(e.URL, "/")
	if i := strings.Index(url, "/v1/"); i >= 0 {
		return url[:i]
	}
	return url
}
