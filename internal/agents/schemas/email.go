package schemas

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// EmailContext is the JSON payload the email service accepts. Plain-text
// requests that are not valid JSON are treated as a bare body.
type EmailContext struct {
	FromEmailAddress string `json:"fromEmailAddress"`
	Subject          string `json:"subject"`
	Body             string `json:"body"`
}

// ParseEmailContext decodes an incoming request into an EmailContext.
// Returns an error when the text is not a JSON object or the body is empty.
func ParseEmailContext(text string) (EmailContext, error) {
	var ec EmailContext
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return ec, fmt.Errorf("not a JSON email payload")
	}
	if err := json.Unmarshal([]byte(trimmed), &ec); err != nil {
		return ec, fmt.Errorf("decode email payload: %w", err)
	}
	if strings.TrimSpace(ec.Body) == "" {
		return ec, fmt.Errorf("email payload has no body")
	}
	return ec, nil
}

// EmailSentiment mirrors the sentiment reviewer's output object.
type EmailSentiment struct {
	Sentiment    string `json:"sentiment"`
	Intention    string `json:"intention"`
	Urgency      string `json:"urgency"`
	KeyStatement string `json:"keystatement"`
}

// EmailParserFields mirrors the parser agent's output object. Fields the
// parser could not find carry the literal value "unknown".
type EmailParserFields struct {
	CustomerName string `json:"customer_name"`
	CustomerID   string `json:"customer_id"`
	DateRange    string `json:"date_range"`
	MeterReading string `json:"meter_reading"`
}

// EmailSentimentSchema is the ADK response schema for the sentiment reviewer.
var EmailSentimentSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"sentiment": {
			Type:        "STRING",
			Description: "Overall sentiment: positive, neutral or negative",
		},
		"intention": {
			Type:        "STRING",
			Description: "Single action statement category for the email",
		},
		"urgency": {
			Type:        "STRING",
			Description: "Urgency level: low, medium or high",
		},
		"keystatement": {
			Type:        "STRING",
			Description: "One sentence stating what the email asks for",
		},
	},
	Required: []string{"sentiment", "intention", "urgency"},
}

// EmailParserSchema is the ADK response schema for the parser agent.
var EmailParserSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"customer_name": {
			Type:        "STRING",
			Description: "Customer name, or 'unknown' when absent",
		},
		"customer_id": {
			Type:        "STRING",
			Description: "Customer identifier, or 'unknown' when absent",
		},
		"date_range": {
			Type:        "STRING",
			Description: "Date range the request refers to, or 'unknown'",
		},
		"meter_reading": {
			Type:        "STRING",
			Description: "Reported meter reading, or 'unknown'",
		},
	},
	Required: []string{"customer_name", "customer_id", "date_range", "meter_reading"},
}
