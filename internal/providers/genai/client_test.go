package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, fn roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "test-key",
		BaseURL:    "https://gemini.test/v1beta",
		HTTPClient: &http.Client{Transport: fn},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGenerateImagePayloadAndReassembly(t *testing.T) {
	var captured geminiGenerateContentRequest
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/v1beta/models/"+DefaultImageModel+":generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Fatalf("api key header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[
			{"text":"here you go"},
			{"inlineData":{"data":"QUJD"}}
		]}}]}`), nil
	})

	result, err := client.GenerateImage(context.Background(), ImageRequest{
		Images: []InlineImage{
			{MimeType: "image/jpeg", Data: "Zmlyc3Q="},
			{MimeType: "image/png", Data: "c2Vjb25k"},
		},
		Text:        "make it shine",
		AspectRatio: "3:4",
		ImageSize:   "2K",
	})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}

	parts := captured.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.Data != "Zmlyc3Q=" || parts[1].InlineData.Data != "c2Vjb25k" {
		t.Fatalf("inline parts out of order: %+v", parts)
	}
	if parts[2].Text != "make it shine" || parts[2].InlineData != nil {
		t.Fatalf("last part must be the text: %+v", parts[2])
	}
	cfg := captured.GenerationConfig.ImageConfig
	if cfg.AspectRatio != "3:4" || cfg.ImageSize != "2K" {
		t.Fatalf("image config = %+v", cfg)
	}

	if result.Image == nil {
		t.Fatal("expected image")
	}
	if got := result.Image.DataURI(); got != "data:image/png;base64,QUJD" {
		t.Fatalf("data uri = %q", got)
	}
	if result.Text != "here you go" {
		t.Fatalf("text = %q", result.Text)
	}
}

func TestGenerateImageTextOnly(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"I can't draw that."}]}}]}`), nil
	})
	result, err := client.GenerateImage(context.Background(), ImageRequest{Text: "x"})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if result.Image != nil {
		t.Fatalf("unexpected image: %+v", result.Image)
	}
	if result.Text != "I can't draw that." {
		t.Fatalf("text = %q", result.Text)
	}
}

func TestGenerateImageTypedError(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, `{"error":{"code":503,"message":"The model is overloaded.","status":"UNAVAILABLE"}}`), nil
	})
	_, err := client.GenerateImage(context.Background(), ImageRequest{Text: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode() != http.StatusServiceUnavailable || apiErr.Status != "UNAVAILABLE" {
		t.Fatalf("api error = %+v", apiErr)
	}
	if !strings.Contains(apiErr.Error(), "overloaded") {
		t.Fatalf("message lost: %s", apiErr.Error())
	}
}

func TestChatSendsSystemInstruction(t *testing.T) {
	var captured geminiGenerateContentRequest
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.Path, DefaultChatModel) {
			t.Fatalf("chat should use the chat model, got %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"Describe what you want 5 of."}]}}]}`), nil
	})
	got, err := client.Chat(context.Background(), ChatRequest{System: "be terse", Text: "Five"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "Describe what you want 5 of." {
		t.Fatalf("reply = %q", got)
	}
	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "be terse" {
		t.Fatalf("system instruction = %+v", captured.SystemInstruction)
	}
	if captured.GenerationConfig != nil {
		t.Fatalf("chat must not request images: %+v", captured.GenerationConfig)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
