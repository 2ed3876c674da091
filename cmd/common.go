package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"k8s.io/client-go/util/homedir"

	"github.com/helmcode/logtriage/pkg/k8s"
	"github.com/helmcode/logtriage/pkg/llm"
	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/pipeline"
)

var (
	configPath   string
	llmProvider  string
	llmModel     string
	outputFormat string
	verbose      bool
)

// pod log source flags, shared by analyze and classify
var (
	kubeconfig string
	namespace  string
	pods       []string
	selector   string
	tailLines  int64
	withEvents bool
)

// AddGlobalFlags registers the flags every subcommand understands.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $HOME/.config/logtriage/config.yml)")
	names := make([]string, 0, 4)
	for _, p := range llm.NewFactory().GetAvailableProviders() {
		names = append(names, string(p))
	}
	root.PersistentFlags().StringVar(&llmProvider, "provider", "", fmt.Sprintf("LLM provider (%s)", strings.Join(names, ", ")))
	root.PersistentFlags().StringVar(&llmModel, "model", "", "LLM model to use (overrides default)")
	root.PersistentFlags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline progress to stderr")
}

func addSourceFlags(cmd *cobra.Command) {
	defaultKubeconfig := ""
	if home := homedir.HomeDir(); home != "" {
		defaultKubeconfig = filepath.Join(home, ".kube", "config")
	}
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", defaultKubeconfig, "Path to kubeconfig file")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "Kubernetes namespace")
	cmd.Flags().StringSliceVar(&pods, "pod", []string{}, "Pods to read logs from (name or deployment/NAME)")
	cmd.Flags().StringVarP(&selector, "selector", "l", "", "Label selector for pods to read logs from")
	cmd.Flags().Int64Var(&tailLines, "tail", 1000, "Lines to read from each container")
	cmd.Flags().BoolVar(&withEvents, "events", false, "Include the namespace's warning events")
}

func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func newPipeline(ctx context.Context, logger *log.Logger) (*pipeline.Pipeline, string, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, "", err
	}
	pc, err := cfg.pipelineConfig(llmProvider, llmModel, logger)
	if err != nil {
		return nil, "", err
	}
	p, err := pipeline.New(ctx, pc)
	if err != nil {
		return nil, "", err
	}
	return p, string(pc.LLM.Provider), nil
}

// readLogFiles loads local files. "-" reads standard input.
func readLogFiles(paths []string) ([]model.LogFile, error) {
	files := make([]model.LogFile, 0, len(paths))
	for _, path := range paths {
		var (
			data []byte
			err  error
			name = filepath.Base(path)
		)
		if path == "-" {
			data, err = io.ReadAll(os.Stdin)
			name = "stdin"
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, model.LogFile{Filename: name, Content: string(data)})
	}
	return files, nil
}

// gatherInputs reads local files and, when asked, pod logs.
func gatherInputs(ctx context.Context, paths []string) ([]model.LogFile, error) {
	files, err := readLogFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(pods) == 0 && selector == "" {
		return files, nil
	}

	s := newSpinner(" Reading pod logs...")
	defer s.Stop()

	client, err := k8s.NewClient(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cluster: %w", err)
	}
	podFiles, err := client.PodLogs(ctx, k8s.LogOptions{
		Namespace: namespace,
		Pods:      pods,
		Selector:  selector,
		TailLines: tailLines,
		Events:    withEvents,
	})
	if err != nil {
		return nil, err
	}
	s.Stop()
	printSuccess(fmt.Sprintf("Read logs from %d containers", len(podFiles)))
	return append(files, podFiles...), nil
}

func humanOutput() bool {
	return outputFormat == "human" || outputFormat == ""
}

// newSpinner writes to stderr so machine-readable stdout stays clean.
func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	s.Start()
	return s
}

func printHeader(title string, files []model.LogFile) {
	if !humanOutput() {
		return
	}
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	cyan.Println("🔍 " + title)
	fmt.Printf("📄 Log files: %d\n", len(files))
	if llmProvider != "" {
		fmt.Printf("🤖 Provider: %s\n", llmProvider)
	}
	fmt.Println()
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}

func printError(msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(os.Stderr, "✗ %s\n", msg)
}
