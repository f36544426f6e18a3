package process

import (
	"time"

	"google.golang.org/adk/tool"

	procmodel "atlas/internal/process"
	"atlas/internal/tools/shared"
)

// NewPersistSubprocessTool writes the drill-down flow for one step and
// renders its swimlane diagram alongside.
func NewPersistSubprocessTool(deps shared.Deps, store *procmodel.Store) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		raw := argString(args, "subprocess_json")
		if raw == "" {
			return errResult("persist_subprocess_json: subprocess_json is required"), nil
		}

		sub, ok := procmodel.ExtractSubprocess(raw)
		if !ok {
			return errResult("persist_subprocess_json: no subprocess JSON found in input"), nil
		}
		if sub.StepName == "" {
			sub.StepName = argString(args, "step_name")
		}
		if sub.StepName == "" {
			return errResult("persist_subprocess_json: step_name is required"), nil
		}

		if err := store.SaveSubprocess(sub); err != nil {
			return errResult("persist_subprocess_json: %v", err), nil
		}

		diagramPath, err := store.WriteSwimlaneDiagram(sub)
		if err != nil {
			return errResult("persist_subprocess_json: diagram: %v", err), nil
		}

		deps.Log.Info("Subprocess persisted",
			"step", sub.StepName,
			"substeps", len(sub.SubprocessSteps))
		return map[string]interface{}{
			"status":       "written",
			"step_name":    sub.StepName,
			"path":         store.SubprocessPath(sub.StepName),
			"diagram_path": diagramPath,
		}, nil
	}

	return shared.NewToolBuilder(
		"persist_subprocess_json",
		"Write a step's subprocess flow and render its swimlane diagram",
		fn, deps,
	).WithTimeout(15 * time.Second).WithStats().Build()
}

// NewCreateDocumentTool assembles the Word specification from the
// persisted process and subprocess artifacts.
func NewCreateDocumentTool(deps shared.Deps, store *procmodel.Store) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		proc, err := store.LoadProcess()
		if err != nil {
			return errResult("create_process_document: %v", err), nil
		}
		subs, err := store.LoadSubprocesses()
		if err != nil {
			return errResult("create_process_document: %v", err), nil
		}

		path, err := store.WriteDocument(proc, subs)
		if err != nil {
			return errResult("create_process_document: %v", err), nil
		}

		deps.Log.Info("Process document created", "path", path, "subprocesses", len(subs))
		return map[string]interface{}{
			"status": "written",
			"path":   path,
		}, nil
	}

	return shared.NewToolBuilder(
		"create_process_document",
		"Render the process specification document from the persisted artifacts",
		fn, deps,
	).WithTimeout(30 * time.Second).WithStats().Build()
}

// NewExtractDocumentTextTool pulls plain text from an existing process
// specification so the update pipeline can re-analyze it.
func NewExtractDocumentTextTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		path := argString(args, "path")
		if path == "" {
			return errResult("extract_document_text: path is required"), nil
		}

		text, err := procmodel.ExtractDocumentText(path)
		if err != nil {
			return errResult("extract_document_text: %v", err), nil
		}
		return map[string]interface{}{"text": text, "chars": len(text)}, nil
	}

	return shared.NewToolBuilder(
		"extract_document_text",
		"Extract the plain text of an existing process specification document",
		fn, deps,
	).WithTimeout(15 * time.Second).WithStats().Build()
}
