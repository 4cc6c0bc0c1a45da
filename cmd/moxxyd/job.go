package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/moxxy/internal/jobstate"
	"github.com/mattsolo1/moxxy/internal/orchestrator"
	"github.com/mattsolo1/moxxy/internal/worker"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Submit and inspect orchestrator jobs",
}

var (
	jobSubmitAgent          string
	jobSubmitPrompt         string
	jobSubmitTemplate       string
	jobSubmitMode           string
	jobSubmitMaxParallelism int
	jobSubmitProvider       string
	jobSubmitModel          string
	jobSubmitExisting       []string
	jobSubmitEphemeral      int
	jobSubmitTasksFile      string
	jobSubmitWait           bool
)

var jobSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new orchestrator job and dispatch its task graph",
	RunE:  runJobSubmit,
}

var jobStatusCmd = &cobra.Command{
	Use:   "status <agent> <job-id>",
	Short: "Show a job's status and task graph",
	Args:  cobra.ExactArgs(2),
	RunE:  runJobStatus,
}

var jobCancelCmd = &cobra.Command{
	Use:   "cancel <agent> <job-id>",
	Short: "Cancel a job",
	Args:  cobra.ExactArgs(2),
	RunE:  runJobCancel,
}

var jobApproveCmd = &cobra.Command{
	Use:   "approve <agent> <job-id>",
	Short: "Approve a job pending manual merge review",
	Args:  cobra.ExactArgs(2),
	RunE:  runJobApprove,
}

var jobEventsCmd = &cobra.Command{
	Use:   "events <agent> <job-id>",
	Short: "List a job's recorded events",
	Args:  cobra.ExactArgs(2),
	RunE:  runJobEvents,
}

func init() {
	jobSubmitCmd.Flags().StringVar(&jobSubmitAgent, "agent", "", "owning agent name (required)")
	jobSubmitCmd.Flags().StringVar(&jobSubmitPrompt, "prompt", "", "job prompt/summary")
	jobSubmitCmd.Flags().StringVar(&jobSubmitTemplate, "template", "", "template id to apply")
	jobSubmitCmd.Flags().StringVar(&jobSubmitMode, "mode", "", "worker mode override: existing, ephemeral, mixed")
	jobSubmitCmd.Flags().IntVar(&jobSubmitMaxParallelism, "max-parallelism", 0, "max parallelism override (0 = unset)")
	jobSubmitCmd.Flags().StringVar(&jobSubmitProvider, "provider", "", "default provider id for tasks without one")
	jobSubmitCmd.Flags().StringVar(&jobSubmitModel, "model", "", "default model id for tasks without one")
	jobSubmitCmd.Flags().StringSliceVar(&jobSubmitExisting, "existing-agent", nil, "existing agent name to staff (repeatable)")
	jobSubmitCmd.Flags().IntVar(&jobSubmitEphemeral, "ephemeral-count", 0, "number of ephemeral workers to spawn")
	jobSubmitCmd.Flags().StringVar(&jobSubmitTasksFile, "tasks-file", "", "path to a JSON array of task specs (required)")
	jobSubmitCmd.Flags().BoolVar(&jobSubmitWait, "wait", false, "block until the job reaches a terminal state")
	jobSubmitCmd.MarkFlagRequired("agent")
	jobSubmitCmd.MarkFlagRequired("tasks-file")

	jobCmd.AddCommand(jobSubmitCmd, jobStatusCmd, jobCancelCmd, jobApproveCmd, jobEventsCmd)
}

// taskSpecFile is the on-disk shape of --tasks-file: one entry per task,
// dependencies referenced by the sibling entries' task_id.
type taskSpecFile struct {
	TaskID      string   `json:"task_id"`
	Role        string   `json:"role"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DependsOn   []string `json:"depends_on"`
}

func runJobSubmit(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(jobSubmitTasksFile)
	if err != nil {
		return fmt.Errorf("read tasks file: %w", err)
	}
	var fileTasks []taskSpecFile
	if err := json.Unmarshal(raw, &fileTasks); err != nil {
		return fmt.Errorf("parse tasks file: %w", err)
	}
	if len(fileTasks) == 0 {
		return fmt.Errorf("tasks file has no tasks")
	}

	tasks := make([]orchestrator.TaskSpec, 0, len(fileTasks))
	for _, t := range fileTasks {
		tasks = append(tasks, orchestrator.TaskSpec{
			TaskID:      t.TaskID,
			Role:        t.Role,
			Title:       t.Title,
			Description: t.Description,
			DependsOn:   t.DependsOn,
		})
	}

	var mode *worker.Mode
	if jobSubmitMode != "" {
		m := worker.Mode(jobSubmitMode)
		mode = &m
	}
	var maxParallelism *int
	if jobSubmitMaxParallelism > 0 {
		maxParallelism = &jobSubmitMaxParallelism
	}

	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	runner := ctx.runner()
	jobID, err := runner.SubmitJob(orchestrator.JobSpec{
		AgentName:      jobSubmitAgent,
		Prompt:         jobSubmitPrompt,
		TemplateID:     jobSubmitTemplate,
		WorkerMode:     mode,
		MaxParallelism: maxParallelism,
		ExistingAgents: jobSubmitExisting,
		EphemeralCount: jobSubmitEphemeral,
		ProviderID:     jobSubmitProvider,
		ModelID:        jobSubmitModel,
		Tasks:          tasks,
	})
	if err != nil {
		return fmt.Errorf("submit job: %w", err)
	}
	color.Green("submitted job %s", jobID)

	agentCfg, err := ctx.Registry.Agent(jobSubmitAgent)
	if err != nil {
		return err
	}
	resolvedCfg, err := agentCfg.GetAgentConfig(jobSubmitAgent)
	if err != nil {
		return err
	}
	retryLimit := resolvedCfg.DefaultRetryLimit
	policy := resolvedCfg.DefaultFailurePolicy
	if policy == "" {
		policy = worker.FailurePolicyAutoReplan
	}
	parallelism := 0
	if maxParallelism != nil {
		parallelism = *maxParallelism
	} else if resolvedCfg.DefaultMaxParallelism != nil {
		parallelism = *resolvedCfg.DefaultMaxParallelism
	}

	dispatch := func() error {
		return runner.Dispatch(context.Background(), jobSubmitAgent, jobID, retryLimit, parallelism, policy)
	}

	if jobSubmitWait {
		if err := dispatch(); err != nil {
			return fmt.Errorf("dispatch job: %w", err)
		}
		color.Green("job %s finished", jobID)
		return nil
	}

	go func() {
		if err := dispatch(); err != nil {
			log.WithError(err).WithField("job", jobID).Warn("job dispatch failed")
		}
	}()
	fmt.Printf("job %s dispatching in the background; use `moxxyd job status %s %s` to follow it\n", jobID, jobSubmitAgent, jobID)
	return nil
}

func runJobStatus(cmd *cobra.Command, args []string) error {
	agentName, jobID := args[0], args[1]
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	s, err := ctx.Registry.Agent(agentName)
	if err != nil {
		return err
	}
	job, err := s.GetJob(jobID)
	if err != nil {
		return err
	}
	tasks, err := s.ListTasks(jobID)
	if err != nil {
		return err
	}

	fmt.Printf("job %s (%s) status=%s\n", job.JobID, job.AgentName, job.Status)
	if job.Summary != "" {
		fmt.Println(job.Summary)
	}
	if job.Error != "" {
		color.Red("error: %s", job.Error)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tROLE\tSTATUS\tWORKER")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.TaskID, t.Role, t.Status, t.WorkerAgent)
	}
	return w.Flush()
}

func runJobCancel(cmd *cobra.Command, args []string) error {
	agentName, jobID := args[0], args[1]
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	s, err := ctx.Registry.Agent(agentName)
	if err != nil {
		return err
	}
	if err := s.TransitionJob(jobID, jobstate.Canceled, "canceled by operator", ""); err != nil {
		return err
	}
	color.Yellow("job %s canceled", jobID)
	return nil
}

func runJobApprove(cmd *cobra.Command, args []string) error {
	agentName, jobID := args[0], args[1]
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	s, err := ctx.Registry.Agent(agentName)
	if err != nil {
		return err
	}
	if err := s.TransitionJob(jobID, jobstate.Merging, "approved by operator", ""); err != nil {
		return err
	}
	if err := s.TransitionJob(jobID, jobstate.Completed, "approved by operator", ""); err != nil {
		return err
	}
	color.Green("job %s approved and completed", jobID)
	return nil
}

func runJobEvents(cmd *cobra.Command, args []string) error {
	agentName, jobID := args[0], args[1]
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	s, err := ctx.Registry.Agent(agentName)
	if err != nil {
		return err
	}
	events, err := s.ListEvents(jobID)
	if err != nil {
		return err
	}
	for _, e := range events {
		fmt.Printf("[%s] %s\n", e.CreatedAt, e.EventType)
	}
	return nil
}
