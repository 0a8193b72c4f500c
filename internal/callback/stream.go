package callback

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jorge-barreto/skillctl/internal/ux"
)

// streamResult holds the parsed output from a stream-json claude invocation.
type streamResult struct {
	Text      string
	CostUSD   float64
	SessionID string
}

// processStream reads stream-json lines from stdout, routing incremental
// text to display and tracking tool use for inline progress, and extracts
// the final result payload.
func processStream(ctx context.Context, stdout io.Reader, display io.Writer) (*streamResult, error) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)

	var result streamResult
	var textBuf strings.Builder

	for scanner.Scan() {
		if ctx.Err() != nil {
			return &result, ctx.Err()
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue // skip malformed lines
		}

		switch event.Type {
		case "stream_event":
			handleStreamEvent(&event, &textBuf, display)
		case "result":
			handleResultEvent(&event, &result)
		}
	}

	if err := scanner.Err(); err != nil {
		return &result, fmt.Errorf("reading stream: %w", err)
	}

	result.Text = textBuf.String()
	return &result, nil
}

type streamEvent struct {
	Type      string          `json:"type"`
	Event     json.RawMessage `json:"event"`
	SessionID string          `json:"session_id"`
	Result    json.RawMessage `json:"result"`
	CostUSD   float64         `json:"cost_usd"`
}

type nestedEvent struct {
	Type         string        `json:"type"`
	ContentBlock *contentBlock `json:"content_block"`
	Delta        *deltaBlock   `json:"delta"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

type deltaBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type resultPayload struct {
	CostUSD   float64 `json:"cost_usd"`
	SessionID string  `json:"session_id"`
}

func handleStreamEvent(event *streamEvent, textBuf *strings.Builder, display io.Writer) {
	if event.Event == nil {
		return
	}
	var nested nestedEvent
	if err := json.Unmarshal(event.Event, &nested); err != nil {
		return
	}
	switch nested.Type {
	case "content_block_delta":
		if nested.Delta != nil && nested.Delta.Type == "text_delta" {
			textBuf.WriteString(nested.Delta.Text)
			if display != nil {
				fmt.Fprint(display, nested.Delta.Text)
			}
		}
	case "content_block_start":
		if nested.ContentBlock != nil && nested.ContentBlock.Type == "tool_use" {
			input := ""
			if nested.ContentBlock.Input != nil {
				input = string(nested.ContentBlock.Input)
			}
			ux.ToolUse(nested.ContentBlock.Name, input)
		}
	}
}

func handleResultEvent(event *streamEvent, result *streamResult) {
	if event.Result != nil {
		var payload resultPayload
		if err := json.Unmarshal(event.Result, &payload); err == nil {
			result.CostUSD = payload.CostUSD
			result.SessionID = payload.SessionID
			return
		}
	}
	if event.CostUSD > 0 {
		result.CostUSD = event.CostUSD
	}
	if event.SessionID != "" {
		result.SessionID = event.SessionID
	}
}
