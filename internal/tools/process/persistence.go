package process

import (
	"os"
	"time"

	"google.golang.org/adk/tool"

	procmodel "atlas/internal/process"
	"atlas/internal/tools/shared"
)

// NewPersistProcessTool validates and writes the final process JSON. The
// raw model output may carry prose or code fences around the object.
func NewPersistProcessTool(deps shared.Deps, store *procmodel.Store) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		raw := argString(args, "process_json")
		if raw == "" {
			return errResult("persist_final_json: process_json is required"), nil
		}

		extracted, ok := procmodel.ExtractJSON(raw)
		if !ok {
			return errResult("persist_final_json: no JSON object found in input"), nil
		}
		if err := store.SaveProcessJSON(extracted); err != nil {
			return errResult("persist_final_json: %v", err), nil
		}

		deps.Log.Info("Process JSON persisted", "path", store.ProcessPath())
		return map[string]interface{}{
			"status": "written",
			"path":   store.ProcessPath(),
		}, nil
	}

	return shared.NewToolBuilder(
		"persist_final_json",
		"Validate the approved process JSON against the schema and write it to the output directory",
		fn, deps,
	).WithTimeout(10 * time.Second).WithStats().Build()
}

// NewLoadProcessTool returns the persisted master process JSON.
func NewLoadProcessTool(deps shared.Deps, store *procmodel.Store) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		data, err := os.ReadFile(store.ProcessPath())
		if err != nil {
			if os.IsNotExist(err) {
				return errResult("load_master_process_json: no process file has been written yet"), nil
			}
			return errResult("load_master_process_json: %v", err), nil
		}
		return map[string]interface{}{"process_json": string(data)}, nil
	}

	return shared.NewToolBuilder(
		"load_master_process_json",
		"Read the current master process JSON from the output directory",
		fn, deps,
	).WithTimeout(5 * time.Second).WithStats().Build()
}

// NewSaveFeedbackTool appends one reviewer's comments to the iteration log
// consumed by the design agent on its next pass.
func NewSaveFeedbackTool(deps shared.Deps, store *procmodel.Store) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		comment := argString(args, "feedback")
		if comment == "" {
			return errResult("save_iteration_feedback: feedback is required"), nil
		}
		source := argString(args, "source")
		if source == "" {
			source = "reviewer"
		}

		if err := store.AppendFeedback(procmodel.Feedback{Source: source, Comment: comment}); err != nil {
			return errResult("save_iteration_feedback: %v", err), nil
		}
		return map[string]interface{}{"status": "saved", "source": source}, nil
	}

	return shared.NewToolBuilder(
		"save_iteration_feedback",
		"Record reviewer feedback for the next design iteration",
		fn, deps,
	).WithTimeout(5 * time.Second).WithStats().Build()
}

// NewLoadFeedbackTool returns all accumulated reviewer feedback.
func NewLoadFeedbackTool(deps shared.Deps, store *procmodel.Store) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		entries, err := store.LoadFeedback()
		if err != nil {
			return errResult("load_iteration_feedback: %v", err), nil
		}

		out := make([]map[string]interface{}, 0, len(entries))
		for _, fb := range entries {
			out = append(out, map[string]interface{}{
				"source":  fb.Source,
				"comment": fb.Comment,
			})
		}
		return map[string]interface{}{"feedback": out, "count": len(out)}, nil
	}

	return shared.NewToolBuilder(
		"load_iteration_feedback",
		"Read reviewer feedback accumulated across refinement iterations",
		fn, deps,
	).WithTimeout(5 * time.Second).WithStats().Build()
}
