package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/model"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func claudeServer(t *testing.T, status int, reply string, seen *apiRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func textReply(text string) string {
	b, _ := json.Marshal(apiResponse{
		Type:    "message",
		Role:    "assistant",
		Content: []apiContentBlock{{Type: "text", Text: text}},
	})
	return string(b)
}

func TestAnalyzeSendsImageAndParsesReply(t *testing.T) {
	var req apiRequest
	srv := claudeServer(t, http.StatusOK,
		textReply("Here you go:\n```json\n{\"name\":\"Paracetamol\",\"dosage\":\"2 tablets\",\"periods\":[\"evening\",\"Morning\",\"noon\"]}\n```"),
		&req)

	a := NewClaudeAnalyzer("test-key", "", 0, WithBaseURL(srv.URL))
	s, err := a.Analyze(context.Background(), pngHeader)
	require.NoError(t, err)

	assert.Equal(t, "Paracetamol", s.Name)
	assert.Equal(t, "2 tablets", s.Dosage)
	assert.Equal(t, []model.Period{model.PeriodEvening, model.PeriodMorning}, s.Periods)

	assert.Equal(t, defaultModel, req.Model)
	assert.Equal(t, defaultMaxTokens, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	require.Len(t, req.Messages[0].Content, 2)
	img := req.Messages[0].Content[0]
	assert.Equal(t, "image", img.Type)
	require.NotNil(t, img.Source)
	assert.Equal(t, "base64", img.Source.Type)
	assert.Equal(t, "image/png", img.Source.MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pngHeader), img.Source.Data)
}

func TestAnalyzeReportsAPIError(t *testing.T) {
	srv := claudeServer(t, http.StatusUnauthorized,
		`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, nil)

	a := NewClaudeAnalyzer("test-key", "", 0, WithBaseURL(srv.URL))
	_, err := a.Analyze(context.Background(), pngHeader)
	assert.ErrorContains(t, err, "invalid x-api-key")
}

func TestAnalyzeRejectsNonImage(t *testing.T) {
	a := NewClaudeAnalyzer("test-key", "", 0, WithBaseURL("http://127.0.0.1:0"))
	_, err := a.Analyze(context.Background(), []byte("just some text"))
	assert.ErrorContains(t, err, "unsupported image type")
}

func TestParseSuggestionWithoutJSON(t *testing.T) {
	_, err := parseSuggestion("I cannot read this label.")
	assert.ErrorIs(t, err, ErrNoSuggestion)

	_, err = parseSuggestion("{name: broken}")
	assert.ErrorIs(t, err, ErrNoSuggestion)
}

type stubAnalyzer struct {
	s   *Suggestion
	err error
}

func (f stubAnalyzer) Analyze(context.Context, []byte) (*Suggestion, error) { return f.s, f.err }

func TestSuggestSwallowsFailures(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, Suggest(ctx, nil, pngHeader, nil))
	assert.Nil(t, Suggest(ctx, stubAnalyzer{}, nil, nil))
	assert.Nil(t, Suggest(ctx, stubAnalyzer{err: errors.New("timeout")}, pngHeader, nil))
	assert.Nil(t, Suggest(ctx, stubAnalyzer{s: &Suggestion{}}, pngHeader, nil))

	want := &Suggestion{Name: "Aspirin"}
	assert.Equal(t, want, Suggest(ctx, stubAnalyzer{s: want}, pngHeader, nil))
}

func TestSuggestionApply(t *testing.T) {
	draft := model.NewDraft()
	draft.Name = "typed"

	got := Suggestion{
		Name:    "Amoxicillin",
		Dosage:  "1.5 tablets",
		Periods: []model.Period{model.PeriodBedtime, model.PeriodMorning},
	}.Apply(draft)

	assert.Equal(t, "Amoxicillin", got.Name)
	assert.Equal(t, "1.5 tablets", got.Dosage)
	assert.Equal(t, 1.5, got.PillsPerTime)
	assert.Equal(t, []model.Period{model.PeriodMorning, model.PeriodBedtime}, got.Periods)

	kept := Suggestion{Dosage: "500 mg"}.Apply(draft)
	assert.Equal(t, "typed", kept.Name)
	assert.Equal(t, 500.0, kept.PillsPerTime)

	odd := Suggestion{Dosage: "0.3 ml"}.Apply(draft)
	assert.Equal(t, model.DefaultPill, odd.PillsPerTime)
}
