package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// fakeModel is an llms.Model that answers every prompt with a canned reply.
type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, tc.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare json",
			input: `{"companyName":"Acme","jobTitle":"SWE","location":"Remote"}`,
			want:  "Acme",
		},
		{
			name:  "json fence",
			input: "```json\n{\"companyName\":\"Acme\",\"jobTitle\":\"SWE\",\"location\":\"Berlin\"}\n```",
			want:  "Acme",
		},
		{
			name:  "plain fence with padding",
			input: "  ```\n{\"companyName\":\"Globex\"}\n```  \n",
			want:  "Globex",
		},
		{
			name:  "null fields",
			input: `{"companyName":null,"jobTitle":"SWE","location":null}`,
			want:  "",
		},
		{name: "surrounding prose", input: "Sure! Here it is: {\"companyName\":\"Acme\"}", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "only fences", input: "```json\n```", wantErr: true},
		{name: "truncated", input: `{"companyName":"Acme","jobTi`, wantErr: true},
		{name: "array", input: `[{"companyName":"Acme"}]`, wantErr: true},
		{name: "null literal", input: "null", wantErr: true},
		{name: "wrong type", input: `{"companyName":42}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := ParseExtraction(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, ext)
				assert.True(t, errors.Is(err, ErrMalformedExtraction))

				var malformed *MalformedExtractionError
				require.True(t, errors.As(err, &malformed))
				assert.Equal(t, tt.input, malformed.Raw)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ext.CompanyName)
		})
	}
}

func TestBuildExtractionPrompt_Truncates(t *testing.T) {
	text := strings.Repeat("é", 50) + strings.Repeat("x", 50)
	prompt := BuildExtractionPrompt(text, 60)

	assert.Contains(t, prompt, strings.Repeat("é", 50)+strings.Repeat("x", 10)+`"`)
	assert.NotContains(t, prompt, strings.Repeat("x", 11))
	assert.Contains(t, prompt, "companyName, jobTitle, location")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", truncate("abc", 0))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "日本", truncate("日本語", 2))
}

func TestLLMService_ExtractJobDetails(t *testing.T) {
	model := &fakeModel{reply: "```json\n{\"companyName\":\"Acme\",\"jobTitle\":\"Backend Engineer\",\"location\":\"Remote\"}\n```"}
	svc := &LLMService{Client: model, MaxPromptChars: 8000, Logger: zap.NewNop()}

	ext, err := svc.ExtractJobDetails(context.Background(), "Acme is hiring a Backend Engineer")
	require.NoError(t, err)
	assert.Equal(t, "Acme", ext.CompanyName)
	assert.Equal(t, "Backend Engineer", ext.JobTitle)
	assert.Equal(t, "Remote", ext.Location)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Acme is hiring a Backend Engineer")
}

func TestLLMService_ExtractJobDetails_Errors(t *testing.T) {
	t.Run("no client", func(t *testing.T) {
		svc := &LLMService{Logger: zap.NewNop()}
		_, err := svc.ExtractJobDetails(context.Background(), "text")
		assert.True(t, errors.Is(err, ErrConfigMissing))
	})

	t.Run("service error", func(t *testing.T) {
		svc := &LLMService{Client: &fakeModel{err: errors.New("quota exceeded")}, Logger: zap.NewNop()}
		_, err := svc.ExtractJobDetails(context.Background(), "text")
		assert.True(t, errors.Is(err, ErrExtractionFailed))
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("malformed", func(t *testing.T) {
		svc := &LLMService{Client: &fakeModel{reply: "I could not find a job here."}, Logger: zap.NewNop()}
		_, err := svc.ExtractJobDetails(context.Background(), "text")
		assert.True(t, errors.Is(err, ErrMalformedExtraction))
	})
}

func TestNewLLMService_NoKey(t *testing.T) {
	svc, err := NewLLMService(context.Background(), "", "gemini-2.5-flash", 8000, 0, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, svc.Client)
}
