package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/upb/agri-advisory-gateway/services/providers"
	"google.golang.org/genai"
)

// ChatTurn is one earlier message of a conversation. Role is "user" or "model".
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatOptions carries the persona and field context of a chat message
type ChatOptions struct {
	History []ChatTurn
	Persona string
	Role    string
	Weather interface{}
	Crops   interface{}
}

// SendChatMessage answers one chat message in persona, with the earlier turns
// as history and the farmer's weather and crops as context.
func (c *Client) SendChatMessage(ctx context.Context, message string, opts ChatOptions) (*SearchResult, error) {
	weather, err := json.Marshal(opts.Weather)
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), "MARSHAL_ERROR", "failed to marshal weather context", 0, false, err)
	}
	crops, err := json.Marshal(opts.Crops)
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), "MARSHAL_ERROR", "failed to marshal crop context", 0, false, err)
	}

	contents := make([]*genai.Content, 0, len(opts.History)+1)
	for _, turn := range opts.History {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, chatRole(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromText(fmt.Sprintf(
		"User Context: Location weather: %s, Crops in field: %s.\n\nUser Question: %s",
		weather, crops, message,
	), genai.RoleUser))

	instruction := fmt.Sprintf("Identity: %s. Target Audience Role: %s. Always use BARI/BRRI protocols. Language: Bangla.", opts.Persona, opts.Role)
	return c.generate(ctx, contents, groundedConfig(instruction))
}

// PesticideExpertAdvice returns official dosage and safety guidance with citations
func (c *Client) PesticideExpertAdvice(ctx context.Context, query string) (*SearchResult, error) {
	return c.generate(ctx, userText("Official dosage and safety for: "+query+". Language: Bangla."), groundedConfig(GroundingInstruction))
}

// SoilHealthAudit interprets soil inputs for an agro-ecological zone.
// It runs without search grounding, so only text comes back.
func (c *Client) SoilHealthAudit(ctx context.Context, inputs map[string]interface{}, aez string) (string, error) {
	payload, err := json.Marshal(inputs)
	if err != nil {
		return "", providers.NewProviderError(c.Name(), "MARSHAL_ERROR", "failed to marshal soil inputs", 0, false, err)
	}

	res, err := c.generate(ctx,
		userText(fmt.Sprintf("Detailed Soil Audit for AEZ: %s. Inputs: %s. Language: Bangla.", aez, payload)),
		&genai.GenerateContentConfig{SystemInstruction: genai.NewContentFromText(GroundingInstruction, genai.RoleUser)},
	)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// SearchEncyclopedia defines an agricultural term. Citations are not returned.
func (c *Client) SearchEncyclopedia(ctx context.Context, query string) (*SearchResult, error) {
	res, err := c.generate(ctx, userText("Define agricultural term: "+query+". Language: Bangla."), groundedConfig(GroundingInstruction))
	if err != nil {
		return nil, err
	}
	res.GroundingChunks = []GroundingChunk{}
	return res, nil
}

func chatRole(role string) genai.Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "model", "assistant", "ai":
		return genai.RoleModel
	}
	return genai.RoleUser
}
