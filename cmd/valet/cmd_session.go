package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"valet/internal/action"
	"valet/internal/capability"
	"valet/internal/executor"
	"valet/internal/followup"
	"valet/internal/session"
)

// sessionCmd starts an interactive session: one consent store, one pending
// gate and one follow-up context live for the duration of the process and
// die with it. Ctrl-C aborts a running plan instead of killing the process.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start an interactive authorization session",
	Long: `Commands inside the session:
  grant <scope>              grant a capability scope
  revoke <scope>             revoke a capability scope
  request <kind> [k=v ...]   route an action request (target=... sets the target)
  yes | no                   answer a pending confirmation
  again <utterance>          replay via the follow-up context
  plan <kind:target> ...     run a multi-step plan (Ctrl-C aborts)
  status                     show granted scopes and pending action
  quit                       end the session (all grants are discarded)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe := executor.NewPipeline(cfg, nil)
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("valet session started; state is in-memory only")
		for {
			fmt.Print("valet> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			fields := strings.Fields(line)
			verb, rest := fields[0], fields[1:]

			switch verb {
			case "quit", "exit":
				fmt.Println("session ended; all grants discarded")
				return nil
			case "grant", "revoke":
				if len(rest) != 1 {
					fmt.Printf("usage: %s <scope>\n", verb)
					continue
				}
				if verb == "grant" {
					pipe.Consent.Grant(capability.Scope(rest[0]))
				} else {
					pipe.Consent.Revoke(capability.Scope(rest[0]))
				}
				fmt.Printf("%sed %s\n", verb, rest[0])
			case "request":
				runRequest(cmd, pipe, rest)
			case "yes", "no":
				handled, plan, err := pipe.HandleConfirmation(cmd.Context(), verb)
				if !handled {
					continue
				}
				if err != nil {
					fmt.Println(err)
					continue
				}
				if plan != nil {
					fmt.Println(plan.Describe())
				} else {
					fmt.Println("cancelled; no backend was touched")
				}
			case "again":
				runReplay(cmd, pipe, strings.Join(rest, " "))
			case "plan":
				runPlanCommand(cmd, pipe, rest)
			case "status":
				printStatus(pipe)
			default:
				fmt.Printf("unknown command %q\n", verb)
			}
		}
	},
}

func runRequest(cmd *cobra.Command, pipe *executor.Pipeline, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: request <kind> [target=... k=v ...]")
		return
	}
	kind := action.ParseKind(args[0])
	if kind == action.KindUnknown {
		fmt.Printf("unknown action kind %q\n", args[0])
		return
	}

	params := make(map[string]string)
	target := ""
	for _, kv := range args[1:] {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			fmt.Printf("ignoring %q (want key=value)\n", kv)
			continue
		}
		if key == "target" {
			target = value
			continue
		}
		params[key] = value
	}

	plan, err := pipe.Request(cmd.Context(), kind, target, params)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(plan.Describe())
}

func runReplay(cmd *cobra.Command, pipe *executor.Pipeline, utterance string) {
	if utterance == "" {
		fmt.Println("usage: again <utterance>")
		return
	}
	// The text-command surface has no NLU confidence model; an explicit
	// "again ..." is maximally confident by construction.
	res, plan, err := pipe.Replay(cmd.Context(), utterance, 1.0)
	if err != nil {
		fmt.Println(err)
		return
	}
	switch res.Outcome {
	case followup.Resolved:
		fmt.Println(plan.Describe())
	case followup.LowConfidence:
		fmt.Println("please be more specific about what to repeat")
	case followup.NoContext:
		fmt.Println("nothing recent to repeat")
	case followup.NoReference:
		fmt.Println("that doesn't look like a reference to a prior action")
	case followup.CrossIntentBlocked:
		fmt.Println("refusing: that reference crosses into a different action domain")
	case followup.DangerousBlocked:
		fmt.Println("refusing: dangerous actions are never replayed")
	case followup.ReplayLimited:
		fmt.Println("replay limit reached for that action; ask for it explicitly")
	}
}

func runPlanCommand(cmd *cobra.Command, pipe *executor.Pipeline, specs []string) {
	if len(specs) == 0 {
		fmt.Println("usage: plan <kind:target> [kind:target ...]")
		return
	}

	descs := make([]*action.Descriptor, 0, len(specs))
	for _, s := range specs {
		kindStr, target, _ := strings.Cut(s, ":")
		kind := action.ParseKind(kindStr)
		if kind == action.KindUnknown {
			fmt.Printf("unknown action kind %q\n", kindStr)
			return
		}
		desc, err := action.NewDescriptor(pipe.Registry, kind, target, nil, nil)
		if err != nil {
			fmt.Println(err)
			return
		}
		descs = append(descs, desc)
	}

	sess := session.New()

	// Ctrl-C during the plan requests a cooperative abort.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			sess.Abort()
		case <-done:
		}
	}()
	defer func() {
		signal.Stop(sigCh)
		close(done)
	}()

	if err := pipe.RunPlan(cmd.Context(), sess, descs); err != nil {
		fmt.Println(err)
	}

	fmt.Printf("session %s: %s\n", sess.ID(), sess.State())
	for _, step := range sess.Steps() {
		line := fmt.Sprintf("  %s %s -> %s", step.ID, step.Action.Kind(), step.State)
		if step.Error != "" {
			line += " (" + step.Error + ")"
		}
		fmt.Println(line)
	}
}

func printStatus(pipe *executor.Pipeline) {
	granted := pipe.Consent.Granted().Sorted()
	if len(granted) == 0 {
		fmt.Println("granted scopes: (none)")
	} else {
		fmt.Print("granted scopes:")
		for _, s := range granted {
			fmt.Printf(" %s", s)
		}
		fmt.Println()
	}
	if pipe.Gate.HasPending() {
		p := pipe.Gate.Pending()
		fmt.Printf("pending: %s - %s\n", p.Action.Kind(), p.Preview)
	} else {
		fmt.Println("pending: (none)")
	}
	fmt.Printf("follow-up entries: %d\n", pipe.Context.Len())
}
