package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/contracthub/contracthub/internal/roles"
)

func newRolesCmd() *cobra.Command {
	rolesCmd := &cobra.Command{
		Use:   "roles",
		Short: "Inspect the role/permission table",
	}
	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Print every role with its permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := roles.BuildCatalog()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROLE\tSTAFF\tPERMISSIONS")
			for _, row := range catalog.Roles {
				perms := make([]string, 0, len(row.Permissions))
				for _, p := range row.Permissions {
					perms = append(perms, string(p))
				}
				listed := strings.Join(perms, ",")
				if listed == "" {
					listed = "-"
				}
				fmt.Fprintf(tw, "%s\t%t\t%s\n", row.Role, row.Staff, listed)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	rolesCmd.AddCommand(list)
	return rolesCmd
}
