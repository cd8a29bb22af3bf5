package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"valet/internal/action"
	"valet/internal/authz"
	"valet/internal/capability"
	"valet/internal/executor"
)

var (
	requestTarget  string
	requestParams  []string
	requestGrants  []string
	requestConfirm string
)

// requestCmd runs a single action request through a fresh pipeline. Because
// all state is session-scoped, grants and the confirmation answer are
// supplied on the same invocation.
var requestCmd = &cobra.Command{
	Use:   "request <action-kind>",
	Short: "Route one action request through the authorization pipeline",
	Long: `Builds an action descriptor and routes it through the guarded executor,
printing the structured decision payload. Grants given with --grant apply
to this invocation's session only.

Example:
  valet request open_application --target firefox --grant app-control
  valet request delete_file --target /tmp/x --param full_path=/tmp/x \
      --grant delete-file --answer yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := action.ParseKind(args[0])
		if kind == action.KindUnknown {
			return fmt.Errorf("unknown action kind %q (see 'valet scopes')", args[0])
		}

		params, err := parseParams(requestParams)
		if err != nil {
			return err
		}

		pipe := executor.NewPipeline(cfg, nil)
		for _, g := range requestGrants {
			pipe.Consent.Grant(capability.Scope(g))
		}

		plan, err := pipe.Request(cmd.Context(), kind, requestTarget, params)
		if err != nil {
			return err
		}
		fmt.Println(plan.Describe())
		logger.Debug("request evaluated",
			zap.String("kind", kind.String()),
			zap.String("permission", string(plan.Permission)))

		if plan.Permission == authz.AllowWithConfirmation {
			if requestConfirm == "" {
				fmt.Println("\npending confirmation; re-run with --answer yes|no")
				return nil
			}
			handled, confirmed, err := pipe.HandleConfirmation(cmd.Context(), requestConfirm)
			if !handled {
				return fmt.Errorf("--answer must be yes or no, got %q", requestConfirm)
			}
			if err != nil {
				return err
			}
			if confirmed != nil {
				fmt.Println("\nafter confirmation:")
				fmt.Println(confirmed.Describe())
			} else {
				fmt.Println("\ncancelled; no backend was touched")
			}
		}
		return nil
	},
}

func init() {
	requestCmd.Flags().StringVarP(&requestTarget, "target", "t", "", "action target label")
	requestCmd.Flags().StringArrayVarP(&requestParams, "param", "p", nil, "action parameter key=value (repeatable)")
	requestCmd.Flags().StringArrayVarP(&requestGrants, "grant", "g", nil, "capability scope to grant for this session (repeatable)")
	requestCmd.Flags().StringVar(&requestConfirm, "answer", "", "confirmation answer when the action needs one (yes or no)")
}

func parseParams(raw []string) (map[string]string, error) {
	params := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", kv)
		}
		params[key] = value
	}
	return params, nil
}
