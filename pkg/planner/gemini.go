package planner

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for itineraries.
var DefaultModel = "gemini-2.5-flash"

// SystemInstruction sets the voice of the guide.
var SystemInstruction = "You are a local mountain guide in Gatlinburg, TN. " +
	"You suggest cozy, nature-filled, and relaxing itineraries."

// Prompt returns the request text for an interest.
func Prompt(interest string) string {
	return fmt.Sprintf("I am staying at a SmokyPeaks cabin in Gatlinburg. I am interested in: %s. "+
		"Create a cozy 2-day itinerary including local spots like Anakeesta, SkyPark, or the National Park. "+
		"Keep the tone warm and rustic.", interest)
}

// Gemini generates itineraries with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini returns a Gemini generator for the given API key.
func NewGemini(ctx context.Context, apiKey string, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Itinerary asks the model for a two-day plan around interest.
func (g *Gemini) Itinerary(ctx context.Context, interest string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Prompt(interest)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return resp.Text(), nil
}
