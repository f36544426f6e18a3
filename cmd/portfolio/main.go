package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/adk/agent"

	"atlas/internal/agents"
	"atlas/internal/agents/workflows"
	"atlas/internal/bootstrap"
	"atlas/pkg/logger"
)

const defaultGoal = "Build a portfolio of 10 high beta and 10 low beta stocks " +
	"from the major US indexes, keeping average pairwise correlation low."

// portfolio runs the research → calculation → construction pipeline and
// writes the resulting workbook to the output directory.
func main() {
	goal := flag.String("goal", defaultGoal, "investment goal handed to the research agent")
	quiet := flag.Bool("quiet", false, "suppress the agent narrative, print only the artifact path")
	flag.Parse()

	container := bootstrap.NewContainer()
	container.MustInit()
	defer logger.Sync()

	log := container.Log

	runner, err := container.PipelineRunner("portfolio_pipeline", func(f *workflows.Factory) (agent.Agent, error) {
		return f.CreatePortfolioPipeline()
	})
	if err != nil {
		log.Fatalf("failed to build portfolio pipeline: %v", err)
	}

	output, err := runner.Execute(container.Context, agents.ExecutionInput{
		UserID: "portfolio",
		Prompt: *goal,
	})
	if err != nil {
		log.Fatalf("portfolio pipeline failed: %v", err)
	}

	if !*quiet && output.RawResponse != "" {
		fmt.Println(output.RawResponse)
	}

	workbook := filepath.Join(container.Config.App.OutputDir, "portfolio.xlsx")
	if _, err := os.Stat(workbook); err != nil {
		log.Warnf("pipeline finished but no workbook was written: %v", err)
	} else {
		fmt.Printf("Portfolio workbook written to %s\n", workbook)
	}

	container.Shutdown()
}
