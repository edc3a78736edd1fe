package advisor

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Gemini answers prompts through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string, search bool) (Answer, error) {
	var cfg *genai.GenerateContentConfig
	if search {
		cfg = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return Answer{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	return Answer{Text: resp.Text(), Sources: groundingSources(resp)}, nil
}

func groundingSources(resp *genai.GenerateContentResponse) []Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		out = append(out, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}
