package workflows

import (
	"fmt"
	"iter"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/session"

	"atlas/internal/agents"
	"atlas/internal/agents/state"
	"atlas/internal/process"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

// CreateProcessPipeline builds the CREATE workflow: requirements analysis,
// the design/compliance refinement loop, JSON normalization, subprocess
// expansion and document generation.
func (f *Factory) CreateProcessPipeline() (agent.Agent, error) {
	analysis, err := f.createAgent(agents.AgentProcessAnalysis)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create analysis agent")
	}
	return f.assembleProcessPipeline("ProcessCreatePipeline", analysis)
}

// CreateProcessUpdatePipeline builds the UPDATE workflow. It front-loads a
// document text extraction stage and an update analyst, then reuses the
// same refinement loops as the CREATE pipeline.
func (f *Factory) CreateProcessUpdatePipeline(documentPath string) (agent.Agent, error) {
	extract, err := f.newDocumentTextStage(documentPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create document text stage")
	}

	updateAnalyst, err := f.createAgent(agents.AgentProcessUpdateAnalyst)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create update analyst")
	}

	analysisStage, err := f.agents.CreateSequential(
		"UpdateAnalysis",
		"Extracts the existing document and derives change requirements",
		extract, updateAnalyst,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create update analysis stage")
	}

	return f.assembleProcessPipeline("ProcessUpdatePipeline", analysisStage)
}

// assembleProcessPipeline chains the shared downstream stages behind the
// given analysis stage.
func (f *Factory) assembleProcessPipeline(name string, analysisStage agent.Agent) (agent.Agent, error) {
	designLoop, err := f.newDesignLoop()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create design loop")
	}

	normalizationLoop, err := f.newNormalizationLoop()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create normalization loop")
	}

	jsonWriter, err := f.newJSONWriterStage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create JSON writer stage")
	}

	subprocessDriver, err := f.newSubprocessDriver()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create subprocess driver")
	}

	docStage, err := f.newDocumentStage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create document stage")
	}

	return f.agents.CreateSequential(
		name,
		"Designs, refines, persists and documents a business process",
		analysisStage, designLoop, normalizationLoop, jsonWriter, subprocessDriver, docStage,
	)
}

// newDesignLoop builds the bounded refinement loop: each iteration runs
// design, compliance review, a design revision, simulation, another
// revision, the optional grounding pass, and the stop controller.
func (f *Factory) newDesignLoop() (agent.Agent, error) {
	design, err := f.createAgent(agents.AgentProcessDesign)
	if err != nil {
		return nil, err
	}
	compliance, err := f.createAgent(agents.AgentProcessCompliance)
	if err != nil {
		return nil, err
	}
	complianceRevision, err := f.createNamedAgent(agents.AgentProcessDesign, "ComplianceRevisionAgent")
	if err != nil {
		return nil, err
	}
	simulation, err := f.createAgent(agents.AgentProcessSimulation)
	if err != nil {
		return nil, err
	}
	simulationRevision, err := f.createNamedAgent(agents.AgentProcessDesign, "SimulationRevisionAgent")
	if err != nil {
		return nil, err
	}

	iteration := []agent.Agent{design, compliance, complianceRevision, simulation, simulationRevision}

	if f.groundingEnabled() {
		grounding, err := f.createAgent(agents.AgentProcessGrounding)
		if err != nil {
			return nil, err
		}
		groundingRevision, err := f.createNamedAgent(agents.AgentProcessDesign, "GroundingRevisionAgent")
		if err != nil {
			return nil, err
		}
		iteration = append(iteration, grounding, groundingRevision)
	}

	stopController, err := f.newStopController("DesignStopController")
	if err != nil {
		return nil, err
	}
	iteration = append(iteration, stopController)

	return f.agents.CreateLoop(
		"DesignRefinementLoop",
		"Iterates design and review until all approvals are present",
		f.loopIterations(),
		iteration...,
	)
}

// newNormalizationLoop builds the JSON normalization loop: normalizer,
// JSON reviewer and the stop controller.
func (f *Factory) newNormalizationLoop() (agent.Agent, error) {
	normalizer, err := f.createAgent(agents.AgentProcessNormalizer)
	if err != nil {
		return nil, err
	}
	jsonReviewer, err := f.createAgent(agents.AgentProcessJSONReviewer)
	if err != nil {
		return nil, err
	}
	stopController, err := f.newStopController("NormalizationStopController")
	if err != nil {
		return nil, err
	}

	return f.agents.CreateLoop(
		"JSONNormalizationLoop",
		"Normalizes the design into the process schema until approved",
		f.loopIterations(),
		normalizer, jsonReviewer, stopController,
	)
}

// newStopController builds the deterministic loop exit agent. It escalates
// when the loopHardStop property is set or when the recorded approvals are
// complete; otherwise it reports continuation.
func (f *Factory) newStopController(name string) (agent.Agent, error) {
	store := f.store
	props := f.props
	groundingEnabled := f.groundingEnabled()
	log := logger.Get().With("component", "stop_controller", "agent", name)

	return agent.New(agent.Config{
		Name:        name,
		Description: "Exits the refinement loop when approvals are complete",
		Run: func(ictx agent.InvocationContext) iter.Seq2[*session.Event, error] {
			return func(yield func(*session.Event, error) bool) {
				iterationCount := state.IncrementLoopIteration(ictx.Session().State())
				log.Infof("Stop check after iteration %d", iterationCount)

				if props.GetBool("loopHardStop", false) {
					log.Warn("loopHardStop property is set")
					yield(escalateEvent(name, "loopHardStop activated, exiting loop."), nil)
					return
				}

				approval, err := store.LoadApproval()
				if err != nil {
					log.Warnf("Failed to load approval state: %v", err)
					yield(textEvent(name, "Continue"), nil)
					return
				}

				if approval.Ready(groundingEnabled) {
					yield(escalateEvent(name, "All approvals present, exiting loop."), nil)
					return
				}

				yield(textEvent(name, "Continue"), nil)
			}
		},
	})
}

// newJSONWriterStage persists the normalized process JSON after schema
// validation. The reviewer usually writes through its tool already; this
// stage guarantees the artifact exists before subprocess expansion.
func (f *Factory) newJSONWriterStage() (agent.Agent, error) {
	const name = "JSONWriterAgent"
	store := f.store
	log := logger.Get().With("component", "json_writer")

	return agent.New(agent.Config{
		Name:        name,
		Description: "Validates and persists the normalized process JSON",
		Run: func(ictx agent.InvocationContext) iter.Seq2[*session.Event, error] {
			return func(yield func(*session.Event, error) bool) {
				st := ictx.Session().State()

				raw, _ := st.Get("normalized_process_json")
				text, _ := raw.(string)
				if strings.TrimSpace(text) == "" {
					if existing, err := store.LoadProcess(); err == nil && existing.ProcessName != "" {
						log.Info("Process JSON already persisted by reviewer tool")
						yield(textEvent(name, fmt.Sprintf("Process JSON present at %s", store.ProcessPath())), nil)
						return
					}
					yield(nil, errors.Wrap(errors.ErrPipelineIncomplete, "no normalized process JSON in session state"))
					return
				}

				extracted, ok := process.ExtractJSON(text)
				if !ok {
					yield(nil, errors.Wrap(errors.ErrNoStructuredOutput, "normalizer output contains no JSON object"))
					return
				}

				if err := store.SaveProcessJSON(extracted); err != nil {
					yield(nil, errors.Wrap(err, "failed to persist process JSON"))
					return
				}

				log.Infof("Process JSON written to %s", store.ProcessPath())
				yield(textEvent(name, fmt.Sprintf("Process JSON written to %s", store.ProcessPath())), nil)
			}
		},
	})
}

// newSubprocessDriver expands every top-level step into a subprocess flow.
// Each step runs a fresh generator turn with the step name in session
// state, paced by the modelSleep property.
func (f *Factory) newSubprocessDriver() (agent.Agent, error) {
	const name = "SubprocessDriver"

	generator, err := f.createAgent(agents.AgentSubprocessGenerator)
	if err != nil {
		return nil, err
	}

	store := f.store
	props := f.props
	log := logger.Get().With("component", "subprocess_driver")

	return agent.New(agent.Config{
		Name:        name,
		Description: "Runs the subprocess generator once per process step",
		SubAgents:   []agent.Agent{generator},
		Run: func(ictx agent.InvocationContext) iter.Seq2[*session.Event, error] {
			return func(yield func(*session.Event, error) bool) {
				proc, err := store.LoadProcess()
				if err != nil {
					yield(nil, errors.Wrap(err, "failed to load persisted process"))
					return
				}
				if len(proc.ProcessSteps) == 0 {
					yield(nil, errors.Wrap(errors.ErrPipelineIncomplete, "persisted process has no steps"))
					return
				}

				st := ictx.Session().State()
				for i, step := range proc.ProcessSteps {
					log.Infof("Expanding step %d/%d: %s", i+1, len(proc.ProcessSteps), step.StepName)
					state.SetCurrentProcessStep(st, step.StepName)

					if stop, _ := runSubAgent(ictx, generator, yield); stop {
						return
					}

					if sleepSeconds := props.GetFloat("modelSleep", 0); sleepSeconds > 0 && i < len(proc.ProcessSteps)-1 {
						pause := time.Duration((sleepSeconds + rand.Float64()*0.75) * float64(time.Second))
						time.Sleep(pause)
					}
				}

				yield(textEvent(name, fmt.Sprintf("Expanded %d process steps.", len(proc.ProcessSteps))), nil)
			}
		},
	})
}

// newDocumentStage renders the Word specification and reports the written
// artifacts.
func (f *Factory) newDocumentStage() (agent.Agent, error) {
	const name = "DocumentStage"
	store := f.store
	log := logger.Get().With("component", "document_stage")

	return agent.New(agent.Config{
		Name:        name,
		Description: "Renders the process specification document",
		Run: func(ictx agent.InvocationContext) iter.Seq2[*session.Event, error] {
			return func(yield func(*session.Event, error) bool) {
				proc, err := store.LoadProcess()
				if err != nil {
					yield(nil, errors.Wrap(err, "failed to load persisted process"))
					return
				}

				subprocesses, err := store.LoadSubprocesses()
				if err != nil {
					log.Warnf("Failed to load subprocesses: %v", err)
				}

				path, err := store.WriteDocument(proc, subprocesses)
				if err != nil {
					yield(nil, errors.Wrap(err, "failed to write process document"))
					return
				}

				log.Infof("Process document written to %s", path)
				yield(textEvent(name, fmt.Sprintf("Process document written to %s", path)), nil)
			}
		},
	})
}

// newDocumentTextStage loads an existing specification document and puts
// its plain text into session state for the update analyst.
func (f *Factory) newDocumentTextStage(documentPath string) (agent.Agent, error) {
	const name = "DocumentTextStage"
	log := logger.Get().With("component", "document_text_stage")

	return agent.New(agent.Config{
		Name:        name,
		Description: "Extracts the text of an existing specification document",
		Run: func(ictx agent.InvocationContext) iter.Seq2[*session.Event, error] {
			return func(yield func(*session.Event, error) bool) {
				text, err := process.ExtractDocumentText(documentPath)
				if err != nil {
					yield(nil, errors.Wrapf(err, "failed to extract text from %s", documentPath))
					return
				}

				ictx.Session().State().Set("existing_document_text", text)
				log.Infof("Extracted %d characters from %s", len(text), documentPath)
				yield(textEvent(name, fmt.Sprintf("Loaded existing document (%d characters).", len(text))), nil)
			}
		},
	})
}
