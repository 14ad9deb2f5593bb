package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tdsgo/iconv"
)

var (
	outWriter io.Writer = os.Stdout
	errWriter io.Writer = os.Stderr
	inReader  io.Reader = os.Stdin
)

var (
	cfgFile       string
	fromFlag      string
	toFlag        string
	outputFile    string
	strictFlag    bool
	maxOutputFlag int
	backendFlag   string
	verbose       bool

	cfg    Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "tdsconv [file]",
	Short: "Convert text between character encodings",
	Long: `Convert a file, or standard input, from one character encoding to another.

The source encoding utf-8+latin-1 reads UTF-8 and keeps any byte that is not
valid UTF-8 as its Latin-1 character.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		outWriter = cmd.OutOrStdout()
		errWriter = cmd.ErrOrStderr()
		inReader = cmd.InOrStdin()
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readInput(args)
		if err != nil {
			return err
		}

		open, ok := backends[cfg.Backend]
		if !ok {
			return fmt.Errorf("unknown backend %q, have %s", cfg.Backend, strings.Join(backendNames(), ", "))
		}

		t := iconv.NewTranscoder(iconv.Options{
			MaxOutputSize: cfg.MaxOutputSize,
			Strict:        cfg.Strict,
			Open:          open,
			Logger:        logger,
		})
		output, err := t.Convert(cfg.From, cfg.To, input)
		if err != nil {
			return err
		}
		return writeOutput(output)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var decodeCmd = &cobra.Command{
	Use:   "decode LABEL [file]",
	Short: "Decode input in a WHATWG labelled encoding to UTF-8",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readInput(args[1:])
		if err != nil {
			return err
		}
		s, err := iconv.NewTextCodec(logger).Decode(input, args[0])
		if err != nil {
			return err
		}
		return writeOutput([]byte(s))
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode LABEL [file]",
	Short: "Encode UTF-8 input to a WHATWG labelled encoding",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readInput(args[1:])
		if err != nil {
			return err
		}
		b, err := iconv.NewTextCodec(logger).Encode(string(input), args[0])
		if err != nil {
			return err
		}
		return writeOutput(b)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tdsconv/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write to this file instead of standard output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log conversion details to standard error")
	rootCmd.Flags().StringVarP(&fromFlag, "from", "f", "", "source encoding")
	rootCmd.Flags().StringVarP(&toFlag, "to", "t", "", "target encoding")
	rootCmd.Flags().BoolVar(&strictFlag, "strict", false, "fail on an unsupported encoding pair instead of copying the input")
	rootCmd.Flags().IntVar(&maxOutputFlag, "max-output-size", 0, "largest output buffer in bytes, 0 for no limit")
	rootCmd.Flags().StringVar(&backendFlag, "backend", "", "conversion backend: "+strings.Join(backendNames(), ", "))

	rootCmd.AddCommand(decodeCmd, encodeCmd)
}

// setup reads the config file and lets set flags override it.
func setup(cmd *cobra.Command) error {
	var err error
	if cfg, err = ReadConfig(cfgFile); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("from") {
		cfg.From = fromFlag
	}
	if flags.Changed("to") {
		cfg.To = toFlag
	}
	if flags.Changed("strict") {
		cfg.Strict = strictFlag
	}
	if flags.Changed("max-output-size") {
		cfg.MaxOutputSize = maxOutputFlag
	}
	if flags.Changed("backend") {
		cfg.Backend = backendFlag
	}

	if logger, err = newLogger(cfg.LogLevel, verbose); err != nil {
		return err
	}
	return nil
}

// backends maps --backend values to conversion contexts. Builds with the
// iconv tag add the system library.
var backends = map[string]iconv.OpenFunc{
	"go": iconv.Open,
}

func backendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(inReader)
	}
	return os.ReadFile(args[0])
}

func writeOutput(b []byte) error {
	if outputFile == "" {
		_, err := outWriter.Write(b)
		return err
	}
	return os.WriteFile(outputFile, b, 0o644)
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(errWriter, err)
		os.Exit(1)
	}
}
