package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/acknowledge/pkg/deps"
	"github.com/matzehuels/acknowledge/pkg/model"
	"github.com/matzehuels/acknowledge/pkg/observability"
	"github.com/matzehuels/acknowledge/pkg/pipeline"
	"github.com/matzehuels/acknowledge/pkg/render"
)

// generateCommand creates the command that writes ACKNOWLEDGEMENTS.md.
// RootCommand turns it into the root command.
func (c *CLI) generateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig(c.config.GetString("config"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return c.runGenerate(cmd, path)
		},
	}

	flags := cmd.Flags()
	flags.StringP("breadth", "b", string(deps.DefaultBreadth), "dependencies to credit: "+joinValues(deps.Breadths))
	flags.StringP("format", "f", string(model.DefaultFormat), "output layout: "+joinValues(model.Formats))
	flags.IntP("threshold", "t", model.DefaultThreshold, "minimum contributions for a person to be listed")
	flags.StringSliceP("source", "s", nil, "extra repository URL to credit (repeatable)")
	flags.Bool("mention", false, "write @login for GitHub users")
	flags.StringP("output", "o", "", "output file (default <project>/"+render.FileName+")")
	flags.String("template", "", "custom text/template file for the output")
	flags.IntP("workers", "w", 0, "concurrent repository fetches")
	flags.Bool("refresh", false, "ignore cached data (fresh results are still cached)")
	flags.Bool("stdout", false, "write to stdout instead of a file")
	c.bind(flags)

	return cmd
}

// runGenerate runs the pipeline for the manifest at path and writes the
// rendered document.
func (c *CLI) runGenerate(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	v := c.config

	renderer, err := newRenderer(logger, v.GetString("template"))
	if err != nil {
		return err
	}

	threshold := v.GetInt("threshold")
	opts := pipeline.Options{
		ManifestPath: path,
		Breadth:      deps.Breadth(v.GetString("breadth")),
		Format:       model.Format(v.GetString("format")),
		Threshold:    &threshold,
		ExtraSources: v.GetStringSlice("source"),
		Mention:      v.GetBool("mention"),
		Workers:      v.GetInt("workers"),
		Refresh:      v.GetBool("refresh"),
		Logger:       logger,
		GitHubToken:  v.GetString("github-token"),
		GitLabToken:  v.GetString("gitlab-token"),
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if opts.GitHubToken == "" {
		logger.Warn("GITHUB_TOKEN is not set; anonymous GitHub requests are limited to 60 per hour")
	}

	runner, err := c.newRunner(cmd)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	// Debug logging replaces the spinner.
	var spinner *Spinner
	if logger.GetLevel() > log.DebugLevel {
		spinner = newSpinner(ctx, os.Stderr, stageMessages[pipeline.StageResolving])
		observability.SetPipelineHooks(spinnerHooks{spinner: spinner})
		defer observability.SetPipelineHooks(observability.NoopPipelineHooks{})
		spinner.Start()
	}
	result, err := runner.Execute(ctx, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	doc, err := renderer.Bytes(result.Model)
	if err != nil {
		return err
	}

	// Keep stdout clean for the document itself.
	if v.GetBool("stdout") {
		for _, w := range result.Warnings {
			logger.Warn(w.Message, "subject", w.Subject, "code", w.Code)
		}
		_, err := cmd.OutOrStdout().Write(doc)
		return err
	}

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}

	out := outputPath(path, v.GetString("output"))
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	printSuccess("Acknowledged %d %s from %d %s",
		result.Stats.Contributors-result.Model.Others,
		render.Plural(result.Stats.Contributors-result.Model.Others, "contributor", "contributors"),
		result.Stats.Repositories,
		render.Plural(result.Stats.Repositories, "repository", "repositories"))
	printStats(result.Stats)
	printFile(out)
	return nil
}

func newRenderer(logger *log.Logger, templatePath string) (*render.Renderer, error) {
	if templatePath == "" {
		return render.New("")
	}
	r, err := render.Load(templatePath)
	if err != nil {
		return nil, err
	}
	logger.Debug("using custom template", "path", templatePath)
	return r, nil
}

// outputPath returns override, or ACKNOWLEDGEMENTS.md next to the manifest
// at manifestPath (a Cargo.toml or a directory containing one).
func outputPath(manifestPath, override string) string {
	if override != "" {
		return override
	}
	dir := manifestPath
	if info, err := os.Stat(manifestPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(manifestPath)
	} else if err != nil && strings.HasSuffix(manifestPath, ".toml") {
		dir = filepath.Dir(manifestPath)
	}
	return filepath.Join(dir, render.FileName)
}

func joinValues[T ~string](values []T) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = string(v)
	}
	return strings.Join(s, ", ")
}
