package research

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/adk/tool"

	"atlas/internal/adapters/wikipedia"
	"atlas/internal/tools/shared"
)

// NewIndexSymbolsTool resolves a major index name to its constituent
// ticker symbols.
func NewIndexSymbolsTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasIndexes() {
			return map[string]interface{}{
				"error": "get_major_index_symbols: index source not configured",
			}, nil
		}
		indexName, _ := args["index_name"].(string)
		if indexName == "" {
			return map[string]interface{}{
				"error": "get_major_index_symbols: index_name is required",
			}, nil
		}

		key := wikipedia.NormalizeIndex(indexName)
		deps.Log.Debug("Tool: get_major_index_symbols called", "index", key)

		symbols, err := deps.Indexes.Constituents(ctx, indexName)
		if err != nil {
			return map[string]interface{}{
				"index_name": key,
				"symbols":    []string{},
				"error": fmt.Sprintf("Failed to scrape symbols for %s: %v. Supported: %s",
					key, err, strings.Join(wikipedia.SupportedIndexes(), ", ")),
			}, nil
		}

		return map[string]interface{}{
			"index_name": key,
			"symbols":    symbols,
			"count":      len(symbols),
			"source":     "Wikipedia constituents table",
		}, nil
	}

	return shared.NewToolBuilder(
		"get_major_index_symbols",
		"List the constituent symbols of a major stock index",
		fn, deps,
	).WithTimeout(20 * time.Second).WithRetry(2, time.Second).WithStats().Build()
}
