package brain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"aarogya/app/config"
	"aarogya/app/service/tools"
	"aarogya/app/service/triage"

	_ "embed"

	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
)

//go:embed triage_prompt.txt
var systemPromptTemplate string

const (
	maxReasonDuration = 60 * time.Second
	maxToolRounds     = 5
	maxOutputTokens   = 2000
)

// Client drives the tool-augmented reasoning stream against an
// OpenAI-compatible API and translates it into triage stream events.
type Client struct {
	cfg      *config.Config
	registry *tools.Registry
	api      *openai.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	clientConfig := openai.DefaultConfig(cfg.Brain.Token)
	clientConfig.BaseURL = cfg.Brain.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: maxReasonDuration,
	}

	return &Client{
		cfg:      cfg,
		registry: do.MustInvoke[*tools.Registry](di),
		api:      openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Stream runs the reasoning loop, emitting thinking deltas and tool
// steps as they happen and exactly one terminal result or follow_up.
// Any failure is returned to the caller, which owns converting it into
// a terminal error event.
func (c *Client) Stream(ctx context.Context, req triage.Request, emit func(triage.StreamEvent)) error {
	ctx, cancel := context.WithTimeout(ctx, maxReasonDuration)
	defer cancel()

	messages := c.buildMessages(req)
	toolDefs := c.toolDefinitions()

	for round := 0; round < maxToolRounds; round++ {
		content, toolCalls, err := c.streamCompletion(ctx, messages, toolDefs, emit)
		if err != nil {
			return err
		}

		if len(toolCalls) == 0 {
			emit(triage.StreamEvent{Type: triage.EventThinkingDone})
			return c.emitTerminal(content, emit)
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:      openai.ChatMessageRoleAssistant,
			Content:   content,
			ToolCalls: toolCalls,
		})

		for _, call := range toolCalls {
			emit(triage.StreamEvent{
				Type:  triage.EventToolCall,
				Name:  call.Function.Name,
				Input: json.RawMessage(call.Function.Arguments),
			})

			output := c.registry.Execute(ctx, call.Function.Name, call.Function.Arguments)

			emit(triage.StreamEvent{
				Type:   triage.EventToolResult,
				Name:   call.Function.Name,
				Output: output,
			})

			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    string(output),
				ToolCallID: call.ID,
			})
		}
	}

	return fmt.Errorf("reasoning did not terminate after %d tool rounds", maxToolRounds)
}

func (c *Client) buildMessages(req triage.Request) []openai.ChatCompletionMessage {
	profile := "not provided"
	if req.Profile != nil {
		data, _ := json.Marshal(req.Profile)
		profile = string(data)
	}

	location := "not provided"
	if req.Location != nil {
		data, _ := json.Marshal(req.Location)
		location = string(data)
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	templateValues := map[string]string{
		"language": language,
		"profile":  profile,
		"location": location,
		"today":    time.Now().Format("2006-01-02"),
	}

	prompt := systemPromptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", value)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt,
	})

	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})
}

func (c *Client) toolDefinitions() []openai.Tool {
	defs := c.registry.Definitions()

	result := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		result = append(result, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Schema,
			},
		})
	}

	return result
}

// streamCompletion reads one model turn, relaying content deltas as
// thinking events and accumulating tool call fragments by index.
func (c *Client) streamCompletion(
	ctx context.Context,
	messages []openai.ChatCompletionMessage,
	toolDefs []openai.Tool,
	emit func(triage.StreamEvent),
) (string, []openai.ToolCall, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:               c.cfg.Brain.Model,
		Messages:            messages,
		Tools:               toolDefs,
		Temperature:         0.2,
		MaxCompletionTokens: maxOutputTokens,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to open completion stream: %w", err)
	}
	defer stream.Close()

	var content strings.Builder
	calls := map[int]*openai.ToolCall{}

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("completion stream receive failed: %w", err)
		}

		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta

		if delta.Content != "" {
			content.WriteString(delta.Content)
			emit(triage.StreamEvent{
				Type:    triage.EventThinking,
				Content: delta.Content,
			})
		}

		for _, fragment := range delta.ToolCalls {
			index := 0
			if fragment.Index != nil {
				index = *fragment.Index
			}

			call, ok := calls[index]
			if !ok {
				call = &openai.ToolCall{Type: openai.ToolTypeFunction}
				calls[index] = call
			}

			if fragment.ID != "" {
				call.ID = fragment.ID
			}
			if fragment.Function.Name != "" {
				call.Function.Name = fragment.Function.Name
			}
			call.Function.Arguments += fragment.Function.Arguments
		}
	}

	indexes := make([]int, 0, len(calls))
	for index := range calls {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	ordered := make([]openai.ToolCall, 0, len(calls))
	for _, index := range indexes {
		ordered = append(ordered, *calls[index])
	}

	return content.String(), ordered, nil
}

type terminalPayload struct {
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options"`

	triage.TriageResult
}

func (c *Client) emitTerminal(content string, emit func(triage.StreamEvent)) error {
	cleaned := strings.Trim(content, "`")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "json")
	cleaned = strings.TrimSpace(cleaned)

	var payload terminalPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal model response: %w", err)
	}

	switch payload.Type {
	case "follow_up":
		emit(triage.StreamEvent{
			Type:     triage.EventFollowUp,
			Question: payload.Question,
			Options:  payload.Options,
		})
	case "result":
		result := payload.TriageResult
		emit(triage.StreamEvent{
			Type:   triage.EventResult,
			Result: &result,
		})
	default:
		return fmt.Errorf("model response has unknown type %q", payload.Type)
	}

	return nil
}
