package workflows

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/session"

	"atlas/internal/agents"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

// CreatePortfolioPipeline builds the portfolio workflow: research screens
// the candidate universe, calculation derives the metrics, the architect
// assembles the buckets and writes the workbook.
func (f *Factory) CreatePortfolioPipeline() (agent.Agent, error) {
	research, err := f.createAgent(agents.AgentPortfolioResearch)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create research agent")
	}
	calculation, err := f.createAgent(agents.AgentPortfolioCalculation)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calculation agent")
	}
	architect, err := f.createAgent(agents.AgentPortfolioArchitect)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create portfolio architect")
	}

	workbookCheck, err := f.newWorkbookCheckStage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create workbook check stage")
	}

	return f.agents.CreateSequential(
		"PortfolioPipeline",
		"Screens candidates, computes metrics and assembles the portfolio",
		research, calculation, architect, workbookCheck,
	)
}

// newWorkbookCheckStage verifies the architect produced the workbook
// artifact and reports its location.
func (f *Factory) newWorkbookCheckStage() (agent.Agent, error) {
	const name = "WorkbookStage"
	outputDir := f.deps.OutputDir
	log := logger.Get().With("component", "workbook_stage")

	return agent.New(agent.Config{
		Name:        name,
		Description: "Confirms the portfolio workbook artifact was written",
		Run: func(ictx agent.InvocationContext) iter.Seq2[*session.Event, error] {
			return func(yield func(*session.Event, error) bool) {
				path := filepath.Join(outputDir, "portfolio.xlsx")
				if _, err := os.Stat(path); err != nil {
					log.Warnf("Workbook missing at %s: %v", path, err)
					yield(textEvent(name, "Portfolio workbook was not written; check the architect output."), nil)
					return
				}

				log.Infof("Portfolio workbook available at %s", path)
				yield(textEvent(name, fmt.Sprintf("Portfolio workbook written to %s", path)), nil)
			}
		},
	})
}
