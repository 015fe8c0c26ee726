package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	jj "github.com/cloudfoundry/jibber_jabber"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/spicery/soundchanger/pkg/soundchange"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	version = "0.1.0"
	usage   = `soundchanger - Apply ordered sound-change rules to a word list

Usage:
  soundchanger [options]

Options:
  -h, --help            Show this help message
  -v, --version         Show version information
  --input <file>        Input word list, one word per line (defaults to stdin)
  --output <file>       Output file (defaults to stdout)
  --rules <file>        YAML rules file (defaults to the built-in example rules)
  --make-rules          Generate the default rules YAML to stdout
  --trace               Show every rule that changed a word
  --json                Write one JSON object per word
  --lowercase           Lowercase input words before applying rules
  --lang <tag>          Language for --lowercase (defaults to the system locale)
  --workers <n>         Number of parallel workers (default 1)
  --legacy-negated      Make %X match non-members of X, like older rule sets expect
  --debug               Trace rule compilation and batch progress to stderr

Examples:
  soundchanger --rules latin.yaml --input words.txt           # One result per line
  soundchanger --rules latin.yaml --input words.txt --trace   # Show derivations
  echo "pitake" | soundchanger --json                         # Built-in rules, JSON output
  soundchanger --make-rules > rules.yaml                      # Start a new rules file

See the package documentation of pkg/soundchange for the rule notation.
`
)

func main() {
	var showHelp, showVersion, makeRules, trace, asJSON, lowercase, legacy, debug bool
	var inputFile, outputFile, rulesFile, lang string
	var workers int

	flag.BoolVar(&showHelp, "h", false, "Show help")
	flag.BoolVar(&showHelp, "help", false, "Show help")
	flag.BoolVar(&showVersion, "v", false, "Show version")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&makeRules, "make-rules", false, "Generate default rules YAML")
	flag.BoolVar(&trace, "trace", false, "Show rule trace")
	flag.BoolVar(&asJSON, "json", false, "JSON lines output")
	flag.BoolVar(&lowercase, "lowercase", false, "Lowercase input words")
	flag.BoolVar(&legacy, "legacy-negated", false, "Legacy negated group references")
	flag.BoolVar(&debug, "debug", false, "Debug tracing")
	flag.StringVar(&inputFile, "input", "", "Input file (defaults to stdin)")
	flag.StringVar(&outputFile, "output", "", "Output file (defaults to stdout)")
	flag.StringVar(&rulesFile, "rules", "", "YAML rules file (optional)")
	flag.StringVar(&lang, "lang", "", "Language tag for --lowercase")
	flag.IntVar(&workers, "workers", 1, "Number of parallel workers")

	flag.Usage = func() {
		io.WriteString(os.Stderr, usage)
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("soundchanger version %s\n", version)
		os.Exit(0)
	}

	if debug {
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	} else {
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	}

	if makeRules {
		data, err := soundchange.DefaultRuleSet().Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating default rules: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		os.Exit(0)
	}

	// Reject any positional arguments
	if len(flag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Error: Unexpected positional arguments. Use --input and --output flags instead.\n\n")
		flag.Usage()
		os.Exit(1)
	}

	rules := soundchange.DefaultRuleSet()
	if rulesFile != "" {
		var err error
		rules, err = soundchange.LoadRuleSetFile(rulesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rules file '%s': %v\n", rulesFile, err)
			os.Exit(1)
		}
	}
	if legacy {
		rules.Options.LegacyNegatedReferences = true
	}
	engine, err := soundchange.NewEngine(rules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling rules: %v\n", err)
		os.Exit(1)
	}

	var input io.Reader = os.Stdin
	if inputFile != "" {
		file, err := os.Open(inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", inputFile, err)
			os.Exit(1)
		}
		defer file.Close()
		input = file
	}
	words, err := readWords(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	if lowercase {
		caser := cases.Lower(languageTag(lang))
		for i, w := range words {
			words[i] = caser.String(w)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	results, batchErr := engine.ApplyAll(ctx, words, soundchange.BatchOptions{
		Trace:   trace,
		Workers: workers,
	})

	// Prepare output destination
	var output io.Writer = os.Stdout
	var outputCloser io.Closer
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file '%s': %v\n", outputFile, err)
			os.Exit(1)
		}
		output = file
		outputCloser = file
	}

	w := bufio.NewWriter(output)
	if err := writeResults(w, results, asJSON, trace); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	// Close output file if we opened one
	if outputCloser != nil {
		if err := outputCloser.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing output file '%s': %v\n", outputFile, err)
			os.Exit(1)
		}
	}

	if batchErr != nil {
		fmt.Fprintf(os.Stderr, "Interrupted after %d of %d words: %v\n", len(results), len(words), batchErr)
		os.Exit(1)
	}
}

// readWords reads one word per line, skipping blank lines.
func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	return words, scanner.Err()
}

// languageTag parses tag, falling back to the system locale and then to the
// undetermined language.
func languageTag(tag string) language.Tag {
	if tag == "" {
		detected, err := jj.DetectIETF()
		if err != nil {
			return language.Und
		}
		tag = detected
	}
	t, err := language.Parse(tag)
	if err != nil {
		return language.Und
	}
	return t
}

func writeResults(w io.Writer, results []soundchange.Result, asJSON, trace bool) error {
	for _, res := range results {
		if asJSON {
			jsonBytes, err := json.Marshal(res)
			if err != nil {
				return fmt.Errorf("JSON encoding error: %w", err)
			}
			if _, err := fmt.Fprintln(w, string(jsonBytes)); err != nil {
				return err
			}
			continue
		}
		if !trace {
			if _, err := fmt.Fprintln(w, res.Output); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s → %s\n", res.Input, res.Output); err != nil {
			return err
		}
		for _, step := range res.Trace {
			if _, err := fmt.Fprintf(w, "    %s  [%s]\n", step.Word, step.Rule); err != nil {
				return err
			}
		}
	}
	return nil
}
