package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"phoneline/internal/auth"
	"phoneline/internal/config"
	"phoneline/internal/rbac"
	"phoneline/internal/routing"
	"phoneline/pkg/logger"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

var errInvalidHours = errors.New("business hours are invalid")

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "linectl",
		Short:         "Inspect and preview business line call routing",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logger.NewWithWriter(cmd.ErrOrStderr(), "", logLevel))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.AddCommand(newValidateCmd(), newDaysCmd(), newPreviewCmd(), newTokenCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	var start, end, days string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a business hours configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseDayList(days)
			if err != nil {
				return err
			}
			res := routing.ValidateBusinessHours(start, end, parsed)
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.IsValid {
				return errInvalidHours
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", routing.DefaultBusinessHoursStart, "opening time, HH:MM")
	cmd.Flags().StringVar(&end, "end", routing.DefaultBusinessHoursEnd, "closing time, HH:MM")
	cmd.Flags().StringVar(&days, "days", "1,2,3,4,5", "comma-separated ISO weekdays, 1=Monday")
	return cmd
}

func newDaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "days",
		Short: "Convert business day lists",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "format DAY...",
			Short: "Render day numbers as a stored list, e.g. 5 1 3 -> 1,3,5",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				days, err := parseDayList(strings.Join(args, ","))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), routing.FormatBusinessDays(days))
				return err
			},
		},
		&cobra.Command{
			Use:   "parse LIST",
			Short: "Parse a stored list, dropping invalid entries",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return writeJSON(cmd.OutOrStdout(), routing.ParseBusinessDays(args[0]))
			},
		},
		&cobra.Command{
			Use:   "names LIST",
			Short: "Render a stored list as weekday names",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), routing.DayNames(routing.ParseBusinessDays(args[0])))
				return err
			},
		},
	)
	return cmd
}

type previewFlags struct {
	at       string
	timezone string
	mode     string
	start    string
	end      string
	days     string
	forward  string
	agent    string
	apiKey   string
	busy     string
	fallback string
	missed   bool
	active   int
}

type previewOutput struct {
	At             string           `json:"at"`
	Decision       routing.Decision `json:"decision"`
	ContextMessage string           `json:"context_message,omitempty"`
	BusinessDays   string           `json:"business_days_label"`
}

func newPreviewCmd() *cobra.Command {
	var f previewFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the routing decision for a hypothetical call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := routing.LoadLocation(f.timezone)
			if err != nil {
				return fmt.Errorf("unknown timezone %q", f.timezone)
			}
			at := time.Now()
			if f.at != "" {
				if at, err = time.Parse(time.RFC3339, f.at); err != nil {
					return fmt.Errorf("--at must be RFC3339: %w", err)
				}
			}
			if f.active < 0 {
				return errors.New("--active must not be negative")
			}
			s := routing.Settings{
				AgentMode:             routing.AgentMode(f.mode),
				ForwardEnabled:        f.forward != "",
				ForwardNumber:         f.forward,
				FallbackAction:        routing.FallbackAction(f.fallback),
				BusinessHoursStart:    f.start,
				BusinessHoursEnd:      f.end,
				BusinessDays:          routing.ParseBusinessDays(f.days),
				ElevenLabsAgentID:     f.agent,
				ElevenLabsAPIKey:      f.apiKey,
				ElevenLabsBusyAgentID: f.busy,
			}
			eng := routing.NewEngine(routing.WithLocation(loc))
			d := eng.Decide(s, routing.CallState{IsVAMissedCall: f.missed, ActiveCallCount: f.active, At: at})
			slog.Debug("preview", "rule", d.Rule, "effective_mode", d.EffectiveMode)
			return writeJSON(cmd.OutOrStdout(), previewOutput{
				At:             at.In(loc).Format(time.RFC3339),
				Decision:       d,
				ContextMessage: routing.ContextMessage(d.AgentContext, s),
				BusinessDays:   routing.DayNames(s.BusinessDays),
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.at, "at", "", "call time, RFC3339 (default now)")
	fl.StringVar(&f.timezone, "timezone", routing.DefaultTimezone, "business timezone")
	fl.StringVar(&f.mode, "mode", string(routing.AgentModeAuto), "agent mode")
	fl.StringVar(&f.start, "start", routing.DefaultBusinessHoursStart, "opening time, HH:MM")
	fl.StringVar(&f.end, "end", routing.DefaultBusinessHoursEnd, "closing time, HH:MM")
	fl.StringVar(&f.days, "days", "1,2,3,4,5", "comma-separated ISO weekdays")
	fl.StringVar(&f.forward, "forward", "", "VA forward number; empty disables forwarding")
	fl.StringVar(&f.agent, "agent", "", "ElevenLabs agent id")
	fl.StringVar(&f.apiKey, "api-key", "", "ElevenLabs API key (any non-empty value enables the agent)")
	fl.StringVar(&f.busy, "busy-agent", "", "ElevenLabs busy-line agent id")
	fl.StringVar(&f.fallback, "fallback", string(routing.FallbackElevenLabs), "missed call fallback action")
	fl.BoolVar(&f.missed, "missed", false, "evaluate the VA missed-call callback")
	fl.IntVar(&f.active, "active", 0, "calls already in progress on the line")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var user, workspace, role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin API access token (reads JWT_* from the environment)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user == "" || workspace == "" {
				return errors.New("--user and --workspace are required")
			}
			if !rbac.IsKnownRole(role) {
				return fmt.Errorf("unknown role %q", role)
			}
			cfg, err := env.ParseAsWithOptions[config.AuthConfig](env.Options{Environment: env.ToMap(os.Environ())})
			if err != nil {
				return err
			}
			if ttl > 0 {
				cfg.AccessTokenTTL = ttl
			}
			if cfg.AccessTokenTTL <= 0 {
				cfg.AccessTokenTTL = 15 * time.Minute
			}
			m, err := auth.NewManager(cfg)
			if err != nil {
				return err
			}
			tok, err := m.IssueAccess(time.Now(), user, workspace, role)
			if err != nil {
				return err
			}
			slog.Info("token issued", "user_id", user, "workspace_id", workspace, "role", role, "ttl", cfg.AccessTokenTTL)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (sub)")
	cmd.Flags().StringVar(&workspace, "workspace", "", "workspace id")
	cmd.Flags().StringVar(&role, "role", rbac.RoleOwner, "role")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_ACCESS_TTL or 15m)")
	return cmd
}

// parseDayList parses comma-separated integers without range filtering so
// validation can report out-of-range days.
func parseDayList(v string) ([]int, error) {
	var out []int
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("day %q is not a number", p)
		}
		out = append(out, n)
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
