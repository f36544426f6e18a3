package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"google.golang.org/adk/agent"

	"atlas/internal/agents"
	"atlas/internal/agents/workflows"
	"atlas/internal/bootstrap"
	"atlas/internal/process"
	"atlas/pkg/logger"
)

// architect is the process-documentation CLI. Each prompt runs the full
// documentation pipeline and leaves its artifacts (process JSON, Word
// document, swimlane diagram) in the output directory.
//
// Script lines in file mode:
//
//	# text     comment, skipped
//	$cmd       run cmd through the shell
//	sleep N    pause N seconds
//	anything   pipeline prompt
type app struct {
	runner *agents.AgentRunner
	store  *process.Store
	quiet  bool
	pacing time.Duration
	log    *logger.Logger
}

func main() {
	scriptPath := flag.String("f", "", "script file to execute instead of the interactive prompt")
	docPath := flag.String("doc", "", "existing process document; switches to the update pipeline")
	quiet := flag.Bool("quiet", false, "suppress pipeline responses, print only artifacts and errors")
	flag.Parse()

	container := bootstrap.NewContainer()
	container.MustInit()
	defer logger.Sync()

	log := container.Log

	pipelineName := "process_pipeline"
	build := func(f *workflows.Factory) (agent.Agent, error) {
		return f.CreateProcessPipeline()
	}
	if *docPath != "" {
		pipelineName = "process_update_pipeline"
		build = func(f *workflows.Factory) (agent.Agent, error) {
			return f.CreateProcessUpdatePipeline(*docPath)
		}
		log.Infof("Update mode: revising against %s", *docPath)
	}

	runner, err := container.PipelineRunner(pipelineName, build)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}

	pacing := time.Duration(container.Props.GetFloat("modelSleep", 2) * float64(time.Second))

	a := &app{
		runner: runner,
		store:  container.Business.Store,
		quiet:  *quiet,
		pacing: pacing,
		log:    log,
	}

	if *scriptPath != "" {
		if err := a.runScript(container.Context, *scriptPath); err != nil {
			log.Fatalf("script failed: %v", err)
		}
	} else {
		a.runREPL(container.Context)
	}

	container.Shutdown()
}

// runScript executes each line of a script file in order.
func (a *app) runScript(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !a.executeLine(ctx, scanner.Text(), true) {
			break
		}
	}
	return scanner.Err()
}

// runREPL reads prompts from stdin until EOF or an exit command.
func (a *app) runREPL(ctx context.Context) {
	fmt.Println("Process documentation agent. Describe the process to document, or 'exit' to quit.")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				a.log.Errorf("stdin read failed: %v", err)
			}
			fmt.Println()
			return
		}
		if ctx.Err() != nil {
			return
		}
		if !a.executeLine(ctx, line, false) {
			return
		}
	}
}

// executeLine interprets one script or REPL line. Returns false when the
// session should end.
func (a *app) executeLine(ctx context.Context, raw string, scripted bool) bool {
	line := strings.TrimSpace(raw)

	switch {
	case line == "" || strings.HasPrefix(line, "#"):
		return true

	case line == "exit" || line == "quit":
		return false

	case strings.HasPrefix(line, "$"):
		a.shellOut(ctx, strings.TrimSpace(line[1:]))
		return true

	case strings.HasPrefix(line, "sleep "):
		a.sleepCommand(line)
		return true

	default:
		a.runPrompt(ctx, line)
		if scripted {
			// Pace scripted prompts so consecutive pipeline runs do not
			// hammer the model quota.
			time.Sleep(a.pacing + time.Duration(rand.Float64()*0.75*float64(time.Second)))
		}
		return true
	}
}

// shellOut runs a $-prefixed line through the shell and prints its output.
func (a *app) shellOut(ctx context.Context, command string) {
	if command == "" {
		return
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		a.log.Errorf("shell command failed: %v", err)
	}
}

func (a *app) sleepCommand(line string) {
	secs, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "sleep ")))
	if err != nil || secs < 0 {
		a.log.Warnf("ignoring malformed sleep command: %q", line)
		return
	}
	time.Sleep(time.Duration(secs) * time.Second)
}

// runPrompt executes the documentation pipeline for one prompt. Approval
// and feedback files are reset first so every run starts a fresh review
// cycle.
func (a *app) runPrompt(ctx context.Context, prompt string) {
	if err := a.store.ResetApproval(); err != nil {
		a.log.Warnf("failed to reset approvals: %v", err)
	}
	if err := a.store.ResetFeedback(); err != nil {
		a.log.Warnf("failed to reset feedback: %v", err)
	}

	output, err := a.runner.Execute(ctx, agents.ExecutionInput{
		UserID: "architect",
		Prompt: prompt,
	})
	if err != nil {
		a.log.Errorf("pipeline failed: %v", err)
		return
	}

	if !a.quiet && output.RawResponse != "" {
		fmt.Println(output.RawResponse)
	}

	if proc, err := a.store.LoadProcess(); err == nil {
		fmt.Printf("Documented process %q (%d steps)\n", proc.ProcessName, len(proc.ProcessSteps))
		fmt.Printf("Artifacts in %s\n", a.store.Dir())
	}
}
