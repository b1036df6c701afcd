package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var namespaceJSON bool

var namespaceCmd = &cobra.Command{
	Use:     "namespace",
	Aliases: []string{"ns"},
	Short:   "Manage namespaces",
	Long:    `List, inspect and delete the namespaces created by 'askdocs ingest'.`,
	RunE:    runNamespaceList,
}

var namespaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List namespaces",
	Args:  cobra.NoArgs,
	RunE:  runNamespaceList,
}

var namespaceDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a namespace",
	Long:  `Deletes a namespace together with its vectors and conversations.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runNamespaceDelete,
}

var namespaceChatsCmd = &cobra.Command{
	Use:   "chats <name>",
	Short: "List conversations of a namespace",
	Long:  `Lists the chat IDs recorded for a namespace, most recent first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runNamespaceChats,
}

func init() {
	namespaceListCmd.Flags().BoolVar(&namespaceJSON, "json", false, "output as JSON")
	namespaceCmd.AddCommand(namespaceListCmd)
	namespaceCmd.AddCommand(namespaceDeleteCmd)
	namespaceCmd.AddCommand(namespaceChatsCmd)
	rootCmd.AddCommand(namespaceCmd)
}

// namespaceInfo is the JSON form of a listed namespace.
type namespaceInfo struct {
	Name      string `json:"name"`
	Vectors   int    `json:"vectors"`
	CreatedAt string `json:"created_at"`
}

func runNamespaceList(cmd *cobra.Command, _ []string) error {
	if namespaceService == nil {
		return errors.New("namespace service not configured")
	}

	ctx := commandContext(cmd)
	records, err := namespaceService.List(ctx, userEmail)
	if err != nil {
		return fmt.Errorf("failed to list namespaces: %w", err)
	}

	infos := make([]namespaceInfo, len(records))
	for i, r := range records {
		count, err := namespaceService.EntryCount(ctx, r.Name)
		if err != nil {
			return fmt.Errorf("failed to count vectors of %s: %w", r.Name, err)
		}
		infos[i] = namespaceInfo{
			Name:      r.Name,
			Vectors:   count,
			CreatedAt: r.CreatedAt.Format("2006-01-02 15:04"),
		}
	}

	if namespaceJSON {
		return outputJSON(cmd, infos)
	}

	if len(infos) == 0 {
		cmd.Println("No namespaces found. Run 'askdocs ingest <path> --namespace <name>' to create one.")
		return nil
	}

	cmd.Printf("%-24s %8s  %s\n", "NAME", "VECTORS", "CREATED")
	for _, info := range infos {
		cmd.Printf("%-24s %8d  %s\n", info.Name, info.Vectors, info.CreatedAt)
	}
	return nil
}

func runNamespaceDelete(cmd *cobra.Command, args []string) error {
	if namespaceService == nil {
		return errors.New("namespace service not configured")
	}

	name := args[0]
	if err := namespaceService.Delete(commandContext(cmd), name, userEmail); err != nil {
		return fmt.Errorf("failed to delete namespace %s: %w", name, err)
	}

	cmd.Printf("Deleted namespace %q\n", name)
	return nil
}

func runNamespaceChats(cmd *cobra.Command, args []string) error {
	if namespaceService == nil {
		return errors.New("namespace service not configured")
	}

	name := args[0]
	ids, err := namespaceService.Chats(commandContext(cmd), name, userEmail)
	if err != nil {
		return fmt.Errorf("failed to list chats of %s: %w", name, err)
	}

	if len(ids) == 0 {
		cmd.Printf("No conversations in %q.\n", name)
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}
