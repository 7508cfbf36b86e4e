package backend

import "contextllm-be/pkg/routing"

// Default system prompt for general use
const systemPrompt = `You are a helpful AI assistant. You provide accurate, helpful, and concise responses to user questions.
You are knowledgeable about a wide range of topics and can help with various tasks including:
- Answering questions
- Explaining concepts
- Providing recommendations
- Helping with analysis
- Creative writing

Please be helpful, accurate, and concise in your responses.`

// Model-specific prompts
const (
	gptPrompt    = `You are GPT-4, a large language model trained by OpenAI. You are helpful, accurate, and follow instructions carefully.`
	claudePrompt = `You are Claude, an AI assistant created by Anthropic. You are helpful, harmless, and honest in your responses.`
	geminiPrompt = `You are Gemini, Google's AI assistant. You provide helpful, accurate, and informative responses across a wide range of topics.`
	groqPrompt   = `You are a fast, efficient AI assistant running on Groq hardware. You provide quick, accurate, and concise responses.`
)

// PromptForFamily returns the system prompt bound to a backend family.
func PromptForFamily(family routing.Family) string {
	switch family {
	case routing.FamilyGPT:
		return gptPrompt
	case routing.FamilyClaude:
		return claudePrompt
	case routing.FamilyGemini:
		return geminiPrompt
	case routing.FamilyGroq:
		return groqPrompt
	default:
		return systemPrompt
	}
}
