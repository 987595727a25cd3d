package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/sentence-embed/v1/sentence"
)

// Embedder is what the one-shot commands need from a client.
type Embedder interface {
	Similarity(ctx context.Context, source, compare any) (*sentence.SimilarityResult, error)
	BatchSimilarity(ctx context.Context, sources, compares any) ([]sentence.BatchResult, error)
	Encode(ctx context.Context, sentences any) (sentence.Embedding, error)
	Close() error
}

// ClientFactory opens an Embedder for the resolved configuration.
type ClientFactory func(ctx context.Context, cfg sentence.Config) (Embedder, error)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath     string
	modelPath      string
	device         string
	sequenceLength int
	noQuiet        bool
	backend        string
	endpoint       string
	python         string
}

type app struct {
	flags     globalFlags
	newClient ClientFactory
}

func defaultClientFactory(ctx context.Context, cfg sentence.Config) (Embedder, error) {
	return sentence.NewClient(ctx, &cfg)
}

// NewRootCommand builds the command tree. A nil factory opens a real
// sentence.Client.
func NewRootCommand(newClient ClientFactory) *cobra.Command {
	if newClient == nil {
		newClient = defaultClientFactory
	}
	a := &app{newClient: newClient}

	rootCmd := &cobra.Command{
		Use:           "sentence-embed",
		Short:         "Chinese sentence embedding toolkit",
		Long:          `Compute sentence embeddings and similarity scores with a local pre-trained model, from the command line or over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.flags.modelPath, "model-path", "", "Local model directory")
	pf.StringVar(&a.flags.device, "device", sentence.DefaultDevice, "Inference device, e.g. cpu or cuda")
	pf.IntVar(&a.flags.sequenceLength, "sequence-length", sentence.DefaultSequenceLength, "Maximum sequence length")
	pf.BoolVar(&a.flags.noQuiet, "no-quiet", false, "Show model initialization logs")
	pf.StringVar(&a.flags.backend, "backend", sentence.BackendProcess, "Pipeline backend: process or http")
	pf.StringVar(&a.flags.endpoint, "endpoint", "", "Pipeline server URL for the http backend")
	pf.StringVar(&a.flags.python, "python", sentence.DefaultPython, "Python interpreter for the process backend")

	rootCmd.AddCommand(
		a.similarityCommand(),
		a.encodeCommand(),
		a.batchCommand(),
		a.serveCommand(),
	)
	return rootCmd
}

// Execute runs the CLI and exits with status 1 on error.
// This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(nil)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
}

// config resolves the configuration: defaults, then the config file and
// SENTENCE_* variables, then every flag set on the command line.
func (a *app) config(cmd *cobra.Command) (sentence.Config, error) {
	cfg, err := sentence.LoadConfig(a.flags.configPath)
	if err != nil {
		return sentence.Config{}, err
	}

	flags := cmd.Flags()
	opts := []sentence.ConfigOption{func(c *sentence.Config) { *c = cfg }}
	if flags.Changed("model-path") {
		opts = append(opts, sentence.WithModelPath(a.flags.modelPath))
	}
	if flags.Changed("device") {
		opts = append(opts, sentence.WithDevice(a.flags.device))
	}
	if flags.Changed("sequence-length") {
		opts = append(opts, sentence.WithSequenceLength(a.flags.sequenceLength))
	}
	if flags.Changed("no-quiet") {
		opts = append(opts, sentence.WithQuiet(!a.flags.noQuiet))
	}
	if flags.Changed("backend") {
		opts = append(opts, sentence.WithBackend(a.flags.backend))
	}
	if flags.Changed("endpoint") {
		opts = append(opts, sentence.WithEndpoint(a.flags.endpoint))
	}
	if flags.Changed("python") {
		opts = append(opts, sentence.WithPython(a.flags.python))
	}

	return sentence.NewConfig(opts...), nil
}

// withClient opens a client for the command, runs fn and closes the client.
// A Close failure is reported together with any error from fn.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, client Embedder) error) (err error) {
	cfg, err := a.config(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := a.newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, client.Close())
	}()

	return fn(ctx, client)
}
