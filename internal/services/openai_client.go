package services

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "net/http"
  "time"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/pkg/httpx"
  "github.com/talentgrid/competency-backend/internal/utils"
)

type OpenAIClient interface {
  Embed(ctx context.Context, inputs []string) ([][]float32, error)
  GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

type openAIClient struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  model      string
  embedModel string
  httpClient *http.Client

  maxRetries int
}

func NewOpenAIClient(log *logger.Logger) (OpenAIClient, error) {
  apiKey := utils.GetEnv("OPENAI_API_KEY", "", nil)
  if apiKey == "" {
    return nil, fmt.Errorf("missing OPENAI_API_KEY")
  }

  baseURL := utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", log)
  model := utils.GetEnv("OPENAI_MODEL", "gpt-4o-mini", log)
  embedModel := utils.GetEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small", log)
  timeoutSec := utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 120, log)
  maxRetries := utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 4, log)

  return &openAIClient{
    log:        log.With("service", "OpenAIClient"),
    baseURL:    baseURL,
    apiKey:     apiKey,
    model:      model,
    embedModel: embedModel,
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
    maxRetries: maxRetries,
  }, nil
}

type openAIHTTPError struct {
  StatusCode int
  Body       string
}

func (e *openAIHTTPError) Error() string {
  return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
  return e.StatusCode
}

func (c *openAIClient) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
  var buf bytes.Buffer
  if body != nil {
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
      return nil, nil, err
    }
  }

  req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
  if err != nil {
    return nil, nil, err
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return resp, nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  return resp, raw, nil
}

func (c *openAIClient) do(ctx context.Context, method, path string, body any, out any) error {
  backoff := 1 * time.Second

  for attempt := 0; attempt <= c.maxRetries; attempt++ {
    if ctx.Err() != nil {
      return ctx.Err()
    }

    resp, raw, err := c.doOnce(ctx, method, path, body)
    if err == nil {
      if out == nil {
        return nil
      }
      if uErr := json.Unmarshal(raw, out); uErr != nil {
        return fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw))
      }
      return nil
    }

    if !httpx.IsRetryableError(err) {
      return err
    }
    if attempt == c.maxRetries {
      return err
    }

    sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
    sleepFor = httpx.JitterSleep(sleepFor)

    c.log.Warn("OpenAI request retrying",
      "path", path,
      "attempt", attempt+1,
      "max_retries", c.maxRetries,
      "sleep", sleepFor.String(),
      "error", err.Error(),
    )

    select {
    case <-ctx.Done():
      return ctx.Err()
    case <-time.After(sleepFor):
    }
    backoff *= 2
  }

  return fmt.Errorf("unreachable retry loop")
}

// ---- Embeddings ----

type embeddingsRequest struct {
  Model string   `json:"model"`
  Input []string `json:"input"`
}

type embeddingsResponse struct {
  Data []struct {
    Embedding []float64 `json:"embedding"`
    Index     int       `json:"index"`
  } `json:"data"`
}

func (c *openAIClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
  if len(inputs) == 0 {
    return [][]float32{}, nil
  }
  req := embeddingsRequest{
    Model: c.embedModel,
    Input: inputs,
  }
  var resp embeddingsResponse
  if err := c.do(ctx, "POST", "/v1/embeddings", req, &resp); err != nil {
    return nil, err
  }
  out := make([][]float32, len(inputs))
  for _, d := range resp.Data {
    vec := make([]float32, len(d.Embedding))
    for i, f := range d.Embedding {
      vec[i] = float32(f)
    }
    if d.Index >= 0 && d.Index < len(out) {
      out[d.Index] = vec
    }
  }
  for i := range out {
    if out[i] == nil {
      return nil, fmt.Errorf("missing embedding for index %d", i)
    }
  }
  return out, nil
}

// ---- Responses JSON (Structured Outputs via text.format json_schema) ----

type responsesRequest struct {
  Model string `json:"model"`
  Input []struct {
    Role    string `json:"role"`
    Content string `json:"content"`
  } `json:"input"`
  Text struct {
    Format map[string]any `json:"format"`
  } `json:"text"`
  Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
  Output []struct {
    Type    string `json:"type"`
    Role    string `json:"role,omitempty"`
    Content []struct {
      Type string `json:"type"`
      Text string `json:"text,omitempty"`
    } `json:"content,omitempty"`
  } `json:"output"`
  Refusal string `json:"refusal,omitempty"`
}

func (c *openAIClient) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
  if schemaName == "" {
    return nil, errors.New("schemaName required")
  }
  if schema == nil {
    return nil, errors.New("schema required")
  }

  req := responsesRequest{
    Model: c.model,
    Input: []struct {
      Role    string `json:"role"`
      Content string `json:"content"`
    }{
      {Role: "system", Content: system},
      {Role: "user", Content: user},
    },
    Temperature: 0.2,
  }
  req.Text.Format = map[string]any{
    "type":   "json_schema",
    "name":   schemaName,
    "schema": schema,
    "strict": true,
  }

  var resp responsesResponse
  if err := c.do(ctx, "POST", "/v1/responses", req, &resp); err != nil {
    return nil, err
  }
  if resp.Refusal != "" {
    return nil, fmt.Errorf("model refused: %s", resp.Refusal)
  }

  var jsonText string
  for _, item := range resp.Output {
    if item.Type == "message" && item.Role == "assistant" {
      for _, part := range item.Content {
        if part.Type == "output_text" && part.Text != "" {
          jsonText += part.Text
        }
      }
    }
  }
  if jsonText == "" {
    return nil, fmt.Errorf("no output_text found in response")
  }

  var obj map[string]any
  if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
    return nil, fmt.Errorf("failed to parse model JSON: %w; text=%s", err, jsonText)
  }
  return obj, nil
}
