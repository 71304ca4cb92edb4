package model

import (
	"encoding/json"
	"fmt"
)

// TargetState distinguishes the three states an edge target can be in.
type TargetState int

const (
	// TargetResolved means the target denotes a real node by ID.
	TargetResolved TargetState = iota
	// TargetUnresolved means the target is a local name the parser could not
	// bind; the resolver will attempt to rewrite it using its symbol indices.
	TargetUnresolved
	// TargetExternal means the target names a symbol outside the analyzed
	// source set (library types in extends/implements clauses). External
	// targets are never resolved and the edge is dropped at resolution time.
	TargetExternal
)

// Target is a tagged edge endpoint: Resolved(id), Unresolved{name, callType},
// or External{name}. The zero value is an unusable resolved target with an
// empty ID; construct targets with Resolved, Unresolved, or External.
//
// Keeping the state explicit (instead of sentinel string prefixes on a plain
// ID) makes the resolver's dispatch exhaustive and the post-resolution
// invariant checkable: a serialized graph contains only resolved targets.
type Target struct {
	state    TargetState
	id       string   // resolved node ID
	name     string   // unresolved or external symbol name
	callType CallType // set only for unresolved references
}

// Resolved creates a target that denotes the node with the given ID.
func Resolved(id string) Target {
	return Target{state: TargetResolved, id: id}
}

// Unresolved creates a placeholder target for a local reference to name,
// tagged with the call type observed at the call site.
func Unresolved(name string, ct CallType) Target {
	return Target{state: TargetUnresolved, name: name, callType: ct}
}

// External creates a target for a symbol known to live outside the analyzed
// sources.
func External(name string) Target {
	return Target{state: TargetExternal, name: name}
}

// State returns the target's tag.
func (t Target) State() TargetState { return t.state }

// IsResolved reports whether the target denotes a real node.
func (t Target) IsResolved() bool { return t.state == TargetResolved }

// ID returns the node ID for resolved targets and "" otherwise.
func (t Target) ID() string {
	if t.state == TargetResolved {
		return t.id
	}
	return ""
}

// Name returns the symbol name for unresolved and external targets and ""
// for resolved ones.
func (t Target) Name() string { return t.name }

// CallType returns the call-site tag of an unresolved target.
func (t Target) CallType() CallType { return t.callType }

// String renders the target for diagnostics.
func (t Target) String() string {
	switch t.state {
	case TargetResolved:
		return t.id
	case TargetUnresolved:
		return fmt.Sprintf("unresolved::%s[%s]", t.name, t.callType)
	default:
		return "external::" + t.name
	}
}

// targetJSON is the serialization shape for targets. Only resolved targets
// appear in exported documents, but the full shape round-trips through the
// cache between pipeline stages.
type targetJSON struct {
	State    string   `json:"state" bson:"state"`
	ID       string   `json:"id,omitempty" bson:"id,omitempty"`
	Name     string   `json:"name,omitempty" bson:"name,omitempty"`
	CallType CallType `json:"call_type,omitempty" bson:"call_type,omitempty"`
}

const (
	stateResolved   = "resolved"
	stateUnresolved = "unresolved"
	stateExternal   = "external"
)

// MarshalJSON implements json.Marshaler.
func (t Target) MarshalJSON() ([]byte, error) {
	out := targetJSON{ID: t.id, Name: t.name, CallType: t.callType}
	switch t.state {
	case TargetResolved:
		out.State = stateResolved
	case TargetUnresolved:
		out.State = stateUnresolved
	case TargetExternal:
		out.State = stateExternal
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Target) UnmarshalJSON(data []byte) error {
	var in targetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.State {
	case stateResolved:
		*t = Resolved(in.ID)
	case stateUnresolved:
		*t = Unresolved(in.Name, in.CallType)
	case stateExternal:
		*t = External(in.Name)
	default:
		return fmt.Errorf("unknown target state %q", in.State)
	}
	return nil
}
