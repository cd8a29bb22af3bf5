package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"valet/internal/terminal"
)

var terminalReason string

// terminalCmd validates a terminal observation command, prints the dry-run
// preview, and executes only after the exact confirmation token is typed.
var terminalCmd = &cobra.Command{
	Use:   "terminal <command> [args...]",
	Short: "Validate and run a sandboxed observation command",
	Long: `Validates the command against the sandbox policy (allow-list, forbidden
tokens, no flags), shows the dry-run preview, and asks for the exact
confirmation token before executing. Execution is direct argv invocation
with no shell interpretation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		validator := terminal.NewValidator(cfg.Terminal)
		spec := terminal.CommandSpec{
			Command:  args[0],
			Args:     args[1:],
			Reason:   terminalReason,
			ReadOnly: true,
		}

		res := validator.Validate(spec)
		fmt.Println(validator.Preview(res))
		if !res.Valid {
			return fmt.Errorf("validation failed: %s", res.Violation)
		}

		fmt.Print("> ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return fmt.Errorf("no confirmation given")
		}
		token := strings.TrimRight(scanner.Text(), "\r\n")

		runner := terminal.NewRunner(validator)
		runner.SetAuditCallback(func(ev terminal.AuditEvent) {
			logger.Debug("terminal audit",
				zap.String("type", string(ev.Type)),
				zap.String("command", ev.Command),
				zap.String("detail", ev.Detail))
		})

		result, err := runner.ConfirmAndRun(cmd.Context(), res, token, nil)
		if err != nil {
			return err
		}

		fmt.Println(result.Output)
		if result.Stderr != "" {
			fmt.Fprintln(os.Stderr, result.Stderr)
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("command exited with code %d", result.ExitCode)
		}
		return nil
	},
}

func init() {
	terminalCmd.Flags().StringVar(&terminalReason, "reason", "", "why this observation is needed")
}
