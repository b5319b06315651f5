// Package cli implements the props command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	props "github.com/goliatone/go-props"
	"github.com/goliatone/go-props/pkg/persist"
	"github.com/goliatone/go-props/pkg/persist/cborfile"
	"github.com/goliatone/go-props/pkg/resource"
)

const (
	groupProperties = "properties"
	groupUtilities  = "utilities"
)

// Execute runs the root command through fang.
func Execute(ctx context.Context) error {
	return fang.Execute(ctx, NewRootCmd())
}

// app holds the flag values and the state built from them before a
// subcommand runs.
type app struct {
	classpath string
	files     []string
	sets      []string
	storePath string
	logLevel  string
	engine    string

	logger *slog.Logger
	cp     *resource.Classpath
	table  *props.Table
	store  *persist.Store
}

// NewRootCmd builds the props command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "props",
		Short: "Inspect property tables, persistent properties and classpath resources",
		Long: `props loads property files from a classpath into a property table and
reads them through the persistent property store, which consults the store
first and the loaded files second.

The classpath is a list of directories and .zip/.jar archives separated by
the platform list separator. It defaults to $PROPS_CLASSPATH, or the current
directory when that is unset.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.classpath, "classpath", "", "classpath to resolve property files and resources against")
	flags.StringArrayVarP(&a.files, "file", "f", nil, "property file to load, resolved on the classpath (repeatable)")
	flags.StringArrayVar(&a.sets, "set", nil, "override a global property as key=value (repeatable)")
	flags.StringVar(&a.storePath, "store", "", "CBOR file backing the persistent property store")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupProperties, Title: "Property Commands"},
		&cobra.Group{ID: groupUtilities, Title: "Utility Commands"},
	)

	for _, cmd := range []*cobra.Command{newGetCmd(a), newSetCmd(a), newUnsetCmd(a), newListCmd(a), newEvalCmd(a)} {
		cmd.GroupID = groupProperties
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{newWalkCmd(a), newDigestCmd()} {
		cmd.GroupID = groupUtilities
		rootCmd.AddCommand(cmd)
	}
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	var err error
	if a.classpath != "" {
		a.cp, err = resource.ParseClasspath(a.classpath)
	} else {
		a.cp, err = resource.ClasspathFromEnv()
	}
	if errors.Is(err, resource.ErrEmptyClasspath) {
		a.logger.Warn("classpath has no usable entries", "error", err)
		a.cp, err = resource.NewClasspath(), nil
	}
	if err != nil {
		return err
	}

	a.table = props.New(
		props.WithClasspath(a.cp),
		props.WithLoadLogger(props.SlogLoadLogger(a.logger)),
		props.WithEvaluatorLogger(props.SlogEvaluatorLogger(a.logger)),
		props.WithEngine(a.engine),
	)
	if err := a.table.AddPropertyFiles(a.files...); err != nil {
		return err
	}
	for _, pair := range a.sets {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid --set %q: want key=value", pair)
		}
		a.table.SetGlobalProperty(strings.TrimSpace(key), value)
	}

	storeOpts := []persist.Option{persist.WithFallback(a.table)}
	if a.storePath != "" {
		provider, err := cborfile.Open(a.storePath)
		if err != nil {
			return err
		}
		storeOpts = append(storeOpts, persist.WithProvider(provider))
	}
	a.store = persist.New(storeOpts...)
	return nil
}

func (a *app) close() error {
	if a.cp == nil {
		return nil
	}
	return a.cp.Close()
}

var errNoStore = errors.New("this command needs --store")
