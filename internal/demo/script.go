// Package demo replays a scripted agent run without a gateway.
package demo

import (
	"fmt"

	"github.com/fastreact/console/internal/event"
	"github.com/fastreact/console/internal/protocol"
)

// Script is an ordered list of event templates. IDs and timestamps are
// assigned when a template is played.
type Script []event.AgentEvent

// AnswerIteration and AnswerDuration describe the synthesized answer event.
const (
	AnswerIteration = 3
	AnswerDuration  = 0.3
)

// DefaultScript returns the built-in reasoning trace: two tool calls
// bracketed by thoughts.
func DefaultScript() Script {
	return Script{
		{
			Type:    protocol.EventThought,
			Content: "The user is asking a question. Let me analyze what information I need to gather to provide a comprehensive answer.",
			Metadata: event.Metadata{
				Iteration: event.Int(1),
				Duration:  event.Seconds(0.3),
			},
		},
		{
			Type:    protocol.EventAction,
			Content: "Searching for relevant information using the web search tool.",
			Metadata: event.Metadata{
				Iteration: event.Int(1),
				ToolName:  "WebSearch",
				Parameters: map[string]any{
					"query":       "relevant search query",
					"max_results": 5,
				},
				Duration: event.Seconds(1.2),
			},
		},
		{
			Type: protocol.EventObservation,
			Content: "Found 5 relevant results:\n" +
				"1. Result about topic A with key insights...\n" +
				"2. Result about topic B with additional context...\n" +
				"3. Result about topic C with supporting data...\n" +
				"4. Result about topic D with expert opinions...\n" +
				"5. Result about topic E with practical examples...",
			Metadata: event.Metadata{
				Iteration: event.Int(1),
				Duration:  event.Seconds(0.1),
			},
		},
		{
			Type:    protocol.EventThought,
			Content: "I have gathered relevant information. Now I need to process and synthesize this data to form a coherent response.",
			Metadata: event.Metadata{
				Iteration: event.Int(2),
				Duration:  event.Seconds(0.4),
			},
		},
		{
			Type:    protocol.EventAction,
			Content: "Using the calculator to perform some calculations.",
			Metadata: event.Metadata{
				Iteration: event.Int(2),
				ToolName:  "Calculator",
				Parameters: map[string]any{
					"expression": "42 * 2 + 16",
				},
				Duration: event.Seconds(0.05),
			},
		},
		{
			Type:    protocol.EventObservation,
			Content: "Result: 100",
			Metadata: event.Metadata{
				Iteration: event.Int(2),
				Duration:  event.Seconds(0.01),
			},
		},
		{
			Type:    protocol.EventThought,
			Content: "I now have all the information needed to provide a comprehensive answer to the user.",
			Metadata: event.Metadata{
				Iteration: event.Int(3),
				Duration:  event.Seconds(0.2),
			},
		},
	}
}

// AnswerFor builds the canned final answer for a user message.
func AnswerFor(text string) string {
	return fmt.Sprintf("Based on my research and analysis of %q, here are my findings:\n\n"+
		"1. **Key Insight**: The data suggests important patterns related to your query.\n"+
		"2. **Analysis**: After examining multiple sources, I found relevant information.\n"+
		"3. **Recommendation**: Consider these factors when making your decision.\n\n"+
		"Let me know if you need any clarification!", text)
}

// AnswerTemplate returns the answer event template for a user message.
func AnswerTemplate(text string) event.AgentEvent {
	return event.AgentEvent{
		Type:    protocol.EventAnswer,
		Content: AnswerFor(text),
		Metadata: event.Metadata{
			Iteration: event.Int(AnswerIteration),
			Duration:  event.Seconds(AnswerDuration),
		},
	}
}
