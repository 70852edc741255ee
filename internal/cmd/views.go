package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logview-dev/logview/internal/viewstore"
)

var viewsCmd = &cobra.Command{
	Use:   "views <root>",
	Short: "List the views stored under a root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args[0])
		if err != nil {
			return err
		}
		names, err := viewstore.New(root).List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No views found. Create one with: logview create <root> --pattern \"...\"")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <root> <old> <new>",
	Short: "Rename a view without changing its content",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args[0])
		if err != nil {
			return err
		}
		view, err := viewstore.New(root).Rename(args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Renamed view %q to %q\n", args[1], view.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
	rootCmd.AddCommand(renameCmd)
}
