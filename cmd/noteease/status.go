package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/noteease/internal/platform"
	"github.com/aretw0/noteease/pkg/adapters/fs"
	"github.com/aretw0/noteease/pkg/core"
)

func newStatusCmd(a *app) *cobra.Command {
	var diagram bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the store and backend state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			var intro introspection.Introspectable = store
			state, _ := intro.State().(core.StoreState)

			out := cmd.OutOrStdout()
			if diagram {
				config := introspection.DefaultDiagramConfig()
				config.SecondaryID = "notes"
				config.SecondaryLabel = "Note Store"
				fmt.Fprintln(out, introspection.TreeDiagram(buildStatusTree(state), config))
				return nil
			}

			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(map[string]any{
				"component": store.ComponentType(),
				"adapter":   a.cfg.Adapter,
				"state":     state,
			})
		},
	}

	cmd.Flags().BoolVar(&diagram, "diagram", false, "Print a Mermaid diagram instead of JSON")
	return cmd
}

type statusNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []statusNode
}

// Status must match classes in introspection.DefaultStyles().
func buildStatusTree(state core.StoreState) statusNode {
	storeStatus := "running"
	if state.Closed {
		storeStatus = "stopped"
	}
	if state.LastWriteError != "" {
		storeStatus = "failed"
	}

	backend := statusNode{
		Name:     "Backend",
		Status:   "running",
		Metadata: map[string]string{"type": state.PersisterType},
	}
	if roState, ok := state.Backend.(platform.ReadOnlyState); ok {
		backend.Metadata["read_only"] = strconv.FormatBool(roState.ReadOnly)
	}
	if fsState, ok := state.Backend.(fs.RepositoryState); ok {
		backend.Metadata["read_only"] = strconv.FormatBool(fsState.ReadOnly)
		watcher := "suspended"
		if fsState.WatcherActive {
			watcher = "running"
		}
		backend.Metadata["path"] = fsState.Path
		backend.Children = []statusNode{{
			Name:     "Watcher",
			Status:   watcher,
			Metadata: map[string]string{"type": "goroutine"},
		}}
	}

	return statusNode{
		Name:   "Store",
		Status: storeStatus,
		Metadata: map[string]string{
			"notes":       strconv.Itoa(state.NoteCount),
			"pending":     strconv.Itoa(state.PendingWrites),
			"subscribers": strconv.Itoa(state.Subscribers),
		},
		Children: []statusNode{backend},
	}
}
