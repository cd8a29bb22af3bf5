package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"valet/internal/action"
	"valet/internal/capability"
)

// scopesCmd prints the capability registry: every action kind, its required
// scopes, risk level and whether it needs confirmation.
var scopesCmd = &cobra.Command{
	Use:   "scopes",
	Short: "List action kinds and the capability scopes they require",
	Run: func(cmd *cobra.Command, args []string) {
		reg := capability.DefaultRegistry()
		fmt.Printf("%-20s %-24s %-8s %s\n", "ACTION", "REQUIRED SCOPES", "RISK", "CONFIRM")
		for _, kind := range action.AllKinds {
			scopes := reg.RequiredScopes(string(kind)).Sorted()
			scopeStr := "(none)"
			if len(scopes) > 0 {
				scopeStr = ""
				for i, s := range scopes {
					if i > 0 {
						scopeStr += ", "
					}
					scopeStr += string(s)
				}
			}
			risk := action.DefaultRisk(kind)
			confirm := ""
			if risk == action.RiskHigh {
				confirm = "yes"
			}
			fmt.Printf("%-20s %-24s %-8s %s\n", kind, scopeStr, risk, confirm)
		}
	},
}
