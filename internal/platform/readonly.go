package platform

import (
	"context"

	"github.com/aretw0/noteease/pkg/core"
)

// ReadOnlyState is reported by backends opened read-only through a wrapper.
// Backend holds the wrapped backend's own state, if it has one.
type ReadOnlyState struct {
	ReadOnly bool `json:"read_only"`
	Backend  any  `json:"backend,omitempty"`
}

// readOnlyKV rejects writes for backends without a native read-only mode.
type readOnlyKV struct {
	core.KV
}

func readOnly(kv core.KV) core.KV {
	return readOnlyKV{KV: kv}
}

func (r readOnlyKV) Set(context.Context, string, []byte) error {
	return core.ErrReadOnly
}

func (r readOnlyKV) ComponentType() string {
	if comp, ok := r.KV.(interface{ ComponentType() string }); ok {
		return comp.ComponentType()
	}
	return "kv"
}

func (r readOnlyKV) State() any {
	state := ReadOnlyState{ReadOnly: true}
	if intro, ok := r.KV.(interface{ State() any }); ok {
		state.Backend = intro.State()
	}
	return state
}
