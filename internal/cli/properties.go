package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-props/layering"
	"github.com/goliatone/go-props/pkg/persist"
)

func newGetCmd(a *app) *cobra.Command {
	var (
		def   string
		trace bool
	)
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print a property, consulting the store and then the loaded files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			ctx := cmd.Context()
			if trace {
				var defs []string
				if cmd.Flags().Changed("default") {
					defs = append(defs, def)
				}
				report, err := a.store.Trace(ctx, key, defs...)
				if err != nil {
					return err
				}
				payload, err := report.ToJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return err
			}

			if cmd.Flags().Changed("default") {
				value, err := a.store.GetWithFallbackDefault(ctx, key, def)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
				return err
			}
			value, ok, err := a.store.GetWithFallback(ctx, key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", persist.ErrNotFound, key)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}
	cmd.Flags().StringVarP(&def, "default", "d", "", "value printed when no layer holds the key")
	cmd.Flags().BoolVar(&trace, "trace", false, "print the answer of every layer as JSON")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Write a property to the store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.storePath == "" {
				return errNoStore
			}
			prev, existed, err := a.store.Set(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if existed {
				a.logger.Info("property replaced", "key", args[0], "previous", prev)
			}
			return nil
		},
	}
}

func newUnsetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a property from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.storePath == "" {
				return errNoStore
			}
			_, existed, err := a.store.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !existed {
				a.logger.Warn("property was not stored", "key", args[0])
			}
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every property, store values layered over the loaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := a.store.Values(cmd.Context())
			if err != nil {
				return err
			}
			return writeValues(cmd.OutOrStdout(), format, values)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "properties", "output format: properties, json or yaml")
	return cmd
}

// writeValues prints values flat in properties format, or nested on dotted
// keys for json and yaml.
func writeValues(w io.Writer, format string, values map[string]string) error {
	switch format {
	case "properties", "":
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, err := fmt.Fprintf(w, "%s=%s\n", key, values[key]); err != nil {
				return err
			}
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(layering.Nest(values))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(layering.Nest(values)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
