package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/mentor-platform/internal/platform/auth"
	platform "github.com/example/mentor-platform/internal/platform/config"
	"github.com/example/mentor-platform/internal/platform/logging"
	"github.com/example/mentor-platform/services/moderation/internal/bootstrap"
	"github.com/example/mentor-platform/services/moderation/internal/config"
	"github.com/example/mentor-platform/services/moderation/internal/flags"
	"github.com/example/mentor-platform/services/moderation/internal/messages"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

// opener returns the store selected by the storage flags and a func that
// releases it.
type opener func(ctx context.Context, cfg config.StorageConfig) (*store.Store, func(), error)

func defaultOpener(ctx context.Context, cfg config.StorageConfig) (*store.Store, func(), error) {
	log, err := logging.New("warn", "modctl")
	if err != nil {
		log = zap.NewNop()
	}
	kv, closeKV, err := bootstrap.OpenKV(ctx, cfg, log, nil)
	if err != nil {
		return nil, closeKV, err
	}
	return store.New(kv, cfg.Namespace), closeKV, nil
}

var operator = store.Actor{ID: "modctl", Role: store.RoleAdmin}

func rootCmd(open opener) *cobra.Command {
	var (
		storage config.StorageConfig
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:           "modctl",
		Short:         "Inspect and maintain the moderation store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&storage.Backend, "backend", platform.String("STORAGE_BACKEND", ""), "storage backend: memory, redis or postgres (inferred from the URLs when empty)")
	pf.StringVar(&storage.RedisURL, "redis-url", platform.String("REDIS_URL", ""), "Redis URL")
	pf.StringVar(&storage.DatabaseURL, "database-url", platform.String("DATABASE_URL", ""), "Postgres DSN")
	pf.StringVar(&storage.Namespace, "namespace", platform.String("STORAGE_NAMESPACE", store.DefaultNamespace), "key namespace")
	pf.DurationVar(&timeout, "timeout", 30*time.Second, "overall command timeout")

	withStore := func(fn func(ctx context.Context, st *store.Store, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			st, release, err := open(ctx, storage.Resolved())
			if release != nil {
				defer release()
			}
			if err != nil {
				return err
			}
			return fn(ctx, st, c.OutOrStdout())
		}
	}

	cmd.AddCommand(
		migrateCmd(withStore),
		flagsCmd(withStore),
		messagesCmd(withStore),
		tokenCmd(),
	)
	return cmd
}

type storeRunner func(fn func(ctx context.Context, st *store.Store, out io.Writer) error) func(*cobra.Command, []string) error

func migrateCmd(withStore storeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite every collection in normalized form",
		Long: `Rewrite threads, answers, messages and flags so that records written by
older releases carry every vote set, a counter equal to the size of its set
and no duplicate voters.`,
		Args: cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, st *store.Store, out io.Writer) error {
			rep, err := st.Migrate(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "migrated threads=%d answers=%d messages=%d flags=%d\n",
				rep.Threads, rep.Answers, rep.Messages, rep.Flags)
			return nil
		}),
	}
}

func flagsCmd(withStore storeRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Work with moderation flags",
	}

	var (
		targets    []string
		openOnly   bool
		outputJSON bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List flags, newest first",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, st *store.Store, out io.Writer) error {
			var types []store.TargetType
			for _, t := range targets {
				tt := store.TargetType(strings.ToLower(strings.TrimSpace(t)))
				if !tt.Valid() {
					return fmt.Errorf("unknown target type %q", t)
				}
				types = append(types, tt)
			}
			items, err := flags.New(st).List(ctx, types...)
			if err != nil {
				return err
			}
			if openOnly {
				kept := items[:0]
				for _, f := range items {
					if f.Status.Open() {
						kept = append(kept, f)
					}
				}
				items = kept
			}
			flags.SortNewestFirst(items)
			if outputJSON {
				return writeJSON(out, items)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTARGET\tSTATUS\tREPORTER\tCREATED\tREASON")
			for _, f := range items {
				fmt.Fprintf(tw, "%s\t%s/%s\t%s\t%s\t%s\t%s\n",
					f.ID, f.TargetType, f.TargetID, f.Status, f.ReporterID, f.CreatedAt.Format(time.RFC3339), f.Reason)
			}
			return tw.Flush()
		}),
	}
	list.Flags().StringSliceVar(&targets, "target", nil, "filter by target type (thread, answer, message)")
	list.Flags().BoolVar(&openOnly, "open", false, "only new and in_review flags")
	list.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")

	var resolver string
	set := &cobra.Command{
		Use:   "set-status <flag-id> <status>",
		Short: "Move a flag to new, in_review, resolved or dismissed",
		Args:  cobra.ExactArgs(2),
	}
	set.RunE = func(c *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st *store.Store, out io.Writer) error {
			actor := operator
			if strings.TrimSpace(resolver) != "" {
				actor.ID = strings.TrimSpace(resolver)
			}
			f, err := flags.New(st).UpdateStatus(ctx, actor, args[0], store.FlagStatus(strings.ToLower(args[1])))
			if err != nil {
				return err
			}
			return writeJSON(out, f)
		})(c, args)
	}
	set.Flags().StringVar(&resolver, "as", "", "admin id recorded as resolvedBy")

	cmd.AddCommand(list, set)
	return cmd
}

func messagesCmd(withStore storeRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Work with chat message moderation",
	}
	flagged := &cobra.Command{
		Use:   "flagged",
		Short: "List flagged messages, most recently flagged first",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, st *store.Store, out io.Writer) error {
			items, err := messages.New(st).ListFlagged(ctx, operator)
			if err != nil {
				return err
			}
			return writeJSON(out, items)
		}),
	}
	cmd.AddCommand(flagged)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if strings.TrimSpace(secret) == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			if strings.TrimSpace(subject) == "" {
				return fmt.Errorf("--sub is required")
			}
			tok, err := auth.JWTVerifier{Secret: []byte(secret)}.Sign(subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", platform.String("JWT_SECRET", ""), "HMAC secret")
	cmd.Flags().StringVar(&subject, "sub", "", "user id")
	cmd.Flags().StringVar(&role, "role", string(store.RoleMentee), "mentee, mentor or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
