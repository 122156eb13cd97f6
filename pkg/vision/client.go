// Package vision provides the visual analysis client: photos in,
// estimated area and a detected material list out.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// Client defines the visual analysis operations.
type Client interface {
	// AnalyzeImages estimates project facts from site photos.
	AnalyzeImages(ctx context.Context, images []Image) (*Analysis, error)
}

// Image is one photo to analyze.
type Image struct {
	MediaType string // e.g. "image/jpeg"
	Data      []byte
}

// DetectedMaterial is one material the analysis identified.
type DetectedMaterial struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Analysis is the structured result of a visual estimation pass.
type Analysis struct {
	Area       float64            `json:"area"`
	AreaUnit   string             `json:"area_unit"`
	Materials  []DetectedMaterial `json:"materials"`
	Confidence float64            `json:"confidence"`
}

const systemPrompt = `You are a construction estimator. Given site photos,
estimate the work area and list the visible materials. Respond with a single
JSON object: {"area": number, "area_unit": string, "materials":
[{"name": string, "quantity": number, "unit": string}], "confidence": number
between 0 and 1}. No prose.`

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
	model  string
}

// NewClient creates a vision client backed by the SDK.
func NewClient(apiKey, model string) Client {
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
		model: model,
	}
}

func (c *sdkClient) AnalyzeImages(ctx context.Context, images []Image) (*Analysis, error) {
	if len(images) == 0 {
		return nil, eris.New("vision: no images provided")
	}

	blocks := make([]sdk.ContentBlockParamUnion, 0, len(images)+1)
	for _, img := range images {
		blocks = append(blocks, sdk.NewImageBlockBase64(img.MediaType, base64.StdEncoding.EncodeToString(img.Data)))
	}
	blocks = append(blocks, sdk.NewTextBlock("Analyze these site photos."))

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: 1024,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(blocks...)},
	})
	if err != nil {
		return nil, eris.Wrap(err, "vision: create message")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return ParseAnalysis(text.String())
}

// ParseAnalysis decodes the model's JSON reply, tolerating surrounding
// prose and markdown fences.
func ParseAnalysis(text string) (*Analysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.Errorf("vision: no JSON object in response: %.80s", text)
	}

	var a Analysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &a); err != nil {
		return nil, eris.Wrap(err, "vision: parse analysis")
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return nil, eris.Errorf("vision: confidence %v out of range", a.Confidence)
	}
	return &a, nil
}
