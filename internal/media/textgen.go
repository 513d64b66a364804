package media

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// TextGenerator turns a prompt into generated copy.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// VertexGenerator calls a Gemini model on Vertex AI.
type VertexGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// OpenVertex connects to Vertex AI and checks the model answers a token count.
func OpenVertex(ctx context.Context, project, location, model, credentialsFile string) (*VertexGenerator, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := genai.NewClient(ctx, project, location, opts...)
	if err != nil {
		return nil, backendErr("vertexai", "connect", err)
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(0.7)
	m.SetTopP(0.8)
	m.SetMaxOutputTokens(150)

	if _, err := m.CountTokens(ctx, genai.Text("ping")); err != nil {
		client.Close()
		return nil, backendErr("vertexai", "check model", err)
	}
	return &VertexGenerator{client: client, model: m, name: model}, nil
}

func (v *VertexGenerator) Name() string { return "vertexai/" + v.name }

func (v *VertexGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", backendErr("vertexai", "generate", err)
	}

	out := firstCandidateText(resp)
	if out == "" {
		return "", backendErr("vertexai", "generate", errors.New("empty response"))
	}
	return out, nil
}

func (v *VertexGenerator) Close() error {
	return v.client.Close()
}

// firstCandidateText joins the text parts of the first candidate that has content.
func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	return strings.TrimSpace(sb.String())
}
