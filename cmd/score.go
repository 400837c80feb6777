package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/talentops/resume-quality/internal/evaluate"
	"github.com/talentops/resume-quality/internal/lingo/gemini"
	"github.com/talentops/resume-quality/internal/logger"
	"github.com/talentops/resume-quality/internal/quality"
	"github.com/talentops/resume-quality/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptComponentDetails = "Show component details"
	PromptReportToFile     = "Dump full report to file"
	PromptExit             = "Exit"
)

var errExit = errors.New("exit requested")

var reportPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptComponentDetails, PromptReportToFile, PromptExit},
}

var scoreCmd = &cobra.Command{
	Use:   "score <resume-file>",
	Short: "Score the writing quality of a resume text file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		score(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().BoolP("quiet", "q", false, "print the report and exit without the interactive menu")
	scoreCmd.Flags().StringP("domain", "", "", "domain-specific action verb vocabulary (overrides config)")

	viper.BindPFlag("domain", scoreCmd.Flags().Lookup("domain"))
}

// score is the main command for the cli.
func score(cmd *cobra.Command, path string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting resume-quality", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("reading resume file", zap.Error(err), zap.String("path", path))
	}
	text := string(raw)

	deps := evaluate.Deps{Logger: logger}
	if checker, err := prepareChecker(ctx, config.Grammar, logger); err != nil {
		logger.Warn("grammar checking disabled", zap.Error(err))
	} else if checker != nil {
		deps.Checker = checker
	}

	evaluators, err := prepareEvaluators(config, deps)
	if err != nil {
		logger.Fatal("building evaluators", zap.Error(err))
	}

	aggregator, err := prepareAggregator(config, evaluators, logger)
	if err != nil {
		logger.Fatal("building aggregator", zap.Error(err))
	}

	report := aggregator.Evaluate(ctx, text)

	printScores(report)

	for name, msg := range report.Errors {
		logger.Warn("component was substituted",
			zap.String("evaluator", name),
			zap.String("error", msg),
		)
	}

	if cmd.Flag("quiet").Value.String() == "true" {
		return
	}

	for {
		_, action, err := reportPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, report, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, report *quality.Report, logger *zap.Logger) error {
	switch action {
	case PromptComponentDetails:
		pretty, err := json.MarshalIndent(report.Details, "", "  ")
		if err != nil {
			return fmt.Errorf("rendering details: %w", err)
		}
		fmt.Println(string(pretty))
		return nil
	case PromptReportToFile:
		filename, err := dumpReport(report)
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printScores(report *quality.Report) {
	fmt.Printf("final score: %.1f\n", report.FinalScore)
	if report.Degraded {
		fmt.Println("warning: no component produced a usable score")
	}

	names := make([]string, 0, len(report.ComponentScores))
	for name := range report.ComponentScores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-14s %.1f\n", name, report.ComponentScores[name])
	}
}

func dumpReport(report *quality.Report) (string, error) {
	pretty, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}

	file, err := os.CreateTemp("", app+"-report-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := file.Write(pretty); err != nil {
		return "", err
	}

	return file.Name(), nil
}

// prepareChecker builds the Gemini grammar checker. A nil checker with a nil
// error means grammar checking was not requested at all.
func prepareChecker(ctx context.Context, cfg *GrammarConfig, baseLogger *zap.Logger) (*gemini.Checker, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set grammar.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.WithCheckerFields(baseLogger, "gemini", cfg.Gemini.Model).With(
		zap.Int("retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewChecker(generator, genLogger, cfg.Gemini.MaxLogLength), nil
}

func prepareEvaluators(config *Config, deps evaluate.Deps) ([]evaluate.Evaluator, error) {
	grammarCfg := evaluate.DefaultGrammarTuning()
	readabilityCfg := evaluate.DefaultReadabilityTuning()
	formattingCfg := evaluate.DefaultFormattingTuning()
	structureCfg := evaluate.DefaultStructureTuning()
	timelineCfg := evaluate.DefaultTimelineTuning()
	actionVerbCfg := evaluate.DefaultActionVerbTuning()

	overrides := map[string]any{
		"grammar":      &grammarCfg,
		"readability":  &readabilityCfg,
		"formatting":   &formattingCfg,
		"structure":    &structureCfg,
		"timeline":     &timelineCfg,
		"action_verbs": &actionVerbCfg,
	}
	for name, target := range overrides {
		if err := evaluate.ApplyOverrides(config.Tuning[name], target); err != nil {
			return nil, fmt.Errorf("applying %s tuning: %w", name, err)
		}
	}

	if domain := viper.GetString("domain"); domain != "" {
		actionVerbCfg.Domain = domain
	} else if config.Domain != "" {
		actionVerbCfg.Domain = config.Domain
	}

	actionVerbs, err := evaluate.NewActionVerb(actionVerbCfg, deps)
	if err != nil {
		return nil, err
	}
	if config.VerbsFile != "" {
		if err := actionVerbs.LoadVerbsFile(config.VerbsFile); err != nil {
			return nil, err
		}
	}

	return []evaluate.Evaluator{
		evaluate.NewGrammar(grammarCfg, deps),
		evaluate.NewReadability(readabilityCfg, deps),
		evaluate.NewFormatting(formattingCfg, deps),
		evaluate.NewStructure(structureCfg, deps),
		evaluate.NewTimeline(timelineCfg, deps),
		actionVerbs,
	}, nil
}

func prepareAggregator(config *Config, evaluators []evaluate.Evaluator, logger *zap.Logger) (*quality.Aggregator, error) {
	opts := []quality.Option{quality.WithLogger(logger)}

	if len(config.Weights) > 0 {
		opts = append(opts, quality.WithWeights(config.Weights))
	}
	if config.CacheSize > 0 {
		opts = append(opts, quality.WithCacheCapacity(config.CacheSize))
	}
	if config.TimeoutSeconds > 0 {
		opts = append(opts, quality.WithTimeout(time.Duration(config.TimeoutSeconds)*time.Second))
	}

	return quality.New(evaluators, opts...)
}
