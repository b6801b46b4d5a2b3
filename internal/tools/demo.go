package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/glasshouse/diffagent/internal/core/agent"
	"github.com/glasshouse/diffagent/internal/core/schema"
)

func calculatorTool() agent.Tool {
	return agent.Tool{
		Name:        "calculator",
		Description: "Perform basic arithmetic on two numbers.",
		Parameters: schema.Object(map[string]any{
			"operation": schema.Enum("Operation to perform.", "add", "subtract", "multiply", "divide"),
			"a":         schema.Number("First operand."),
			"b":         schema.Number("Second operand."),
		}, "operation", "a", "b"),
		Handler: func(_ context.Context, args map[string]any) string {
			a := numberArg(args, "a")
			b := numberArg(args, "b")

			var result float64
			switch stringArg(args, "operation") {
			case "add":
				result = a + b
			case "subtract":
				result = a - b
			case "multiply":
				result = a * b
			case "divide":
				if b == 0 {
					result = math.Inf(1)
				} else {
					result = a / b
				}
			default:
				return fmt.Sprintf("error: unsupported operation: %s", stringArg(args, "operation"))
			}
			return strconv.FormatFloat(result, 'g', -1, 64)
		},
	}
}

type weatherReport struct {
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
	Humidity    int    `json:"humidity"`
	Note        string `json:"note,omitempty"`
}

func weatherTool() agent.Tool {
	// Canned data; there is no weather backend to talk to.
	known := map[string]weatherReport{
		"london": {Temperature: 14, Condition: "overcast", Humidity: 80},
		"oslo":   {Temperature: 8, Condition: "clear", Humidity: 55},
		"tokyo":  {Temperature: 22, Condition: "light rain", Humidity: 75},
	}

	return agent.Tool{
		Name:        "get_weather",
		Description: "Get the current weather for a city.",
		Parameters: schema.Object(map[string]any{
			"city": schema.String("City name."),
		}, "city"),
		Handler: func(_ context.Context, args map[string]any) string {
			city := stringArg(args, "city")
			report, ok := known[strings.ToLower(strings.TrimSpace(city))]
			if !ok {
				report = weatherReport{
					Temperature: 20,
					Condition:   "unknown",
					Humidity:    50,
					Note:        fmt.Sprintf("no weather data for %s, returning defaults", city),
				}
			}
			encoded, err := json.Marshal(report)
			if err != nil {
				return fmt.Sprintf("error: encode weather report: %v", err)
			}
			return string(encoded)
		},
	}
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

func searchTool() agent.Tool {
	return agent.Tool{
		Name:        "search_web",
		Description: "Search the web for information.",
		Parameters: schema.Object(map[string]any{
			"query":       schema.String("Search query."),
			"max_results": schema.Integer("Maximum number of results to return."),
		}, "query"),
		Handler: func(_ context.Context, args map[string]any) string {
			query := stringArg(args, "query")
			limit := int(numberArg(args, "max_results"))
			if limit <= 0 || limit > 3 {
				limit = 3
			}

			results := make([]searchResult, 0, limit)
			for i := 1; i <= limit; i++ {
				results = append(results, searchResult{
					Title:   fmt.Sprintf("Result %d for %s", i, query),
					URL:     fmt.Sprintf("https://example.com/result%d", i),
					Snippet: fmt.Sprintf("Summary %d for the query %q.", i, query),
				})
			}
			encoded, err := json.Marshal(map[string]any{"query": query, "results": results})
			if err != nil {
				return fmt.Sprintf("error: encode search results: %v", err)
			}
			return string(encoded)
		},
	}
}
