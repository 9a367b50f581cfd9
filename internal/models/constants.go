// Package models contains data types and constants shared by the chat client.
package models

// Endpoint defaults for OpenAI-compatible chat completion APIs
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	PathChatCompletion = "/chat/completions"
)

// DefaultModel is the model used when neither flags, environment nor config name one
const DefaultModel = "gpt-4-0314"

// Providers select the completion backend
const (
	ProviderHTTP      = "http"
	ProviderLangChain = "langchain"
)

// AllProviders returns the supported provider names
func AllProviders() []string {
	return []string{ProviderHTTP, ProviderLangChain}
}

// DefaultHeaders returns the default headers for chat completion requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "helper/" + ClientVersion,
	}
}

// ClientVersion is reported in the User-Agent header
var ClientVersion = "0.1.0"
