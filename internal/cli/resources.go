package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	props "github.com/goliatone/go-props"
	"github.com/goliatone/go-props/pkg/stamp"
)

func newWalkCmd(a *app) *cobra.Command {
	var (
		suffix string
		digest bool
	)
	cmd := &cobra.Command{
		Use:   "walk ROOT",
		Short: "List classpath resources under ROOT that end with a suffix",
		Long: `walk enumerates resources under ROOT breadth first across every classpath
entry, directories and archives alike. An empty ROOT ("") walks the whole
classpath.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return a.cp.ForAllEntries(args[0], suffix, func(name string, r io.Reader) error {
				if !digest {
					_, err := fmt.Fprintln(out, name)
					return err
				}
				sum, err := stamp.DigestReader(r)
				if err != nil {
					return fmt.Errorf("digest %s: %w", name, err)
				}
				_, err = fmt.Fprintf(out, "%s  %s\n", sum, name)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&suffix, "suffix", "s", ".properties", "file name suffix to match")
	cmd.Flags().BoolVar(&digest, "digest", false, "print the SHA-256 digest of each resource")
	return cmd
}

func newDigestCmd() *cobra.Command {
	var fast, checksum bool
	cmd := &cobra.Command{
		Use:   "digest [TEXT]",
		Short: "Print the digest of TEXT, or of stdin when TEXT is omitted",
		Long: `digest prints an uppercase hexadecimal digest: SHA-256 by default, MD5 with
--fast (not collision resistant, deduplication only) or BLAKE3 with
--checksum.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sumText, sumReader := stamp.Digest, stamp.DigestReader
			switch {
			case fast:
				sumText, sumReader = stamp.FastDigest, stamp.FastDigestReader
			case checksum:
				sumText, sumReader = stamp.Checksum, stamp.ChecksumReader
			}

			var sum string
			if len(args) == 1 {
				sum = sumText(args[0])
			} else {
				var err error
				if sum, err = sumReader(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), sum)
			return err
		},
	}
	cmd.Flags().BoolVar(&fast, "fast", false, "use MD5")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "use BLAKE3")
	cmd.MarkFlagsMutuallyExclusive("fast", "checksum")
	return cmd
}

func newEvalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval EXPR",
		Short: "Evaluate an expression over the layered properties",
		Long: `eval runs EXPR with store values layered over the loaded files. Dotted keys
are reachable as nested values (feature.enabled) and through props["key"].
Values are strings; parsebool and parseint convert them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.store.Evaluate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), value)
		},
	}
	a.engine = "expr"
	cmd.Flags().VarP(engineFlag{name: &a.engine}, "engine", "e", "expression engine: "+strings.Join(enginesHelp(), ", "))
	return cmd
}

func printValue(w io.Writer, value any) error {
	switch v := value.(type) {
	case string, bool, int, int64, float64, nil:
		_, err := fmt.Fprintln(w, v)
		return err
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			_, err = fmt.Fprintln(w, v)
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}
}

func enginesHelp() []string {
	out := make([]string, 0, len(props.Engines))
	for _, name := range props.Engines {
		if name == "js" && !props.JSAvailable() {
			name += " (needs the js_eval build tag)"
		}
		out = append(out, name)
	}
	return out
}

// engineFlag accepts the engine names props.NewEngine understands.
type engineFlag struct {
	name *string
}

var _ pflag.Value = engineFlag{}

func (f engineFlag) String() string {
	if f.name == nil {
		return ""
	}
	return *f.name
}

func (f engineFlag) Set(value string) error {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "javascript" {
		value = "js"
	}
	if !slices.Contains(props.Engines, value) {
		return fmt.Errorf("unknown engine %q", value)
	}
	*f.name = value
	return nil
}

func (f engineFlag) Type() string { return "engine" }
