// Stage F: linearity checking (spec §4.4). The centerpiece of the
// checker: a flow-sensitive table of binding states threaded through
// every statement, forked at branches and compared at joins.
//
// Grounded on the walk shape of internal/typesystem/inference_control.go
// and inference_solver.go (a table threaded through sequential
// composition, forked at branches, compared at joins) — funxy itself has
// no linearity pass (it is garbage collected), so this is new logic
// whose *shape*, not content, is borrowed from the teacher.
package analyzer

import (
	"sort"

	"github.com/amber-lang/amberc/internal/diagnostics"
	"github.com/amber-lang/amberc/internal/types"
)

// ConsumeState is a linear binding's state at one program point (spec
// §4.4).
type ConsumeState int

const (
	Available ConsumeState = iota
	Consumed
	BorrowedRead
	BorrowedWrite
)

func (s ConsumeState) String() string {
	switch s {
	case Available:
		return "available"
	case Consumed:
		return "consumed"
	case BorrowedRead:
		return "borrowed (read)"
	case BorrowedWrite:
		return "borrowed (write)"
	default:
		return "?"
	}
}

// Binding is one local name in scope during the walk of a function body:
// its resolved type and, if the type's effective universe is Linear, its
// current consumption state.
type Binding struct {
	Name  string
	Type  types.Type
	State ConsumeState
}

// Linear reports whether this binding is subject to linearity tracking
// at all (spec §4.4: "only bindings whose effective universe is Linear
// are tracked; Free bindings may be read or ignored freely").
func (b *Binding) Linear() bool { return b.Type != nil && b.Type.Universe() == types.Linear }

// Table is the flow-sensitive state threaded through a function body's
// statement walk (spec §4.4): a snapshot of every in-scope binding's
// consumption state at one program point.
type Table struct {
	bindings map[string]*Binding
}

func NewTable() *Table {
	return &Table{bindings: make(map[string]*Binding)}
}

// Clone returns an independent copy, used when the walk forks at a
// branch (if/case): each arm starts from the same incoming snapshot and
// mutates its own copy.
func (t *Table) Clone() *Table {
	cp := &Table{bindings: make(map[string]*Binding, len(t.bindings))}
	for k, v := range t.bindings {
		b := *v
		cp.bindings[k] = &b
	}
	return cp
}

// Define introduces a fresh binding as Available.
func (t *Table) Define(name string, typ types.Type) {
	t.bindings[name] = &Binding{Name: name, Type: typ, State: Available}
}

// Undefine removes a binding, used when a borrow's lexical scope ends and
// the reference variable goes out of scope.
func (t *Table) Undefine(name string) { delete(t.bindings, name) }

func (t *Table) Lookup(name string) (*Binding, bool) {
	b, ok := t.bindings[name]
	return b, ok
}

// Consume marks a linear binding Consumed, rejecting a binding that is
// already consumed, or currently borrowed (spec §4.4 rules 2/6).
func (t *Table) Consume(name string) *diagnostics.Diagnostic {
	b, ok := t.bindings[name]
	if !ok || !b.Linear() {
		return nil
	}
	switch b.State {
	case Consumed:
		return diagnostics.ValueUsedAfterConsumed(name)
	case BorrowedRead, BorrowedWrite:
		return diagnostics.UseWhileBorrowed(name)
	}
	b.State = Consumed
	return nil
}

// Borrow marks a linear binding as borrowed for the duration of a borrow
// scope (spec §4.3/§4.4).
func (t *Table) Borrow(name string, kind BorrowKindState) *diagnostics.Diagnostic {
	b, ok := t.bindings[name]
	if !ok || !b.Linear() {
		return nil
	}
	if b.State != Available {
		return diagnostics.UseWhileBorrowed(name)
	}
	if kind == BorrowKindRead {
		b.State = BorrowedRead
	} else {
		b.State = BorrowedWrite
	}
	return nil
}

// Release ends a borrow, returning the binding to Available.
func (t *Table) Release(name string) {
	if b, ok := t.bindings[name]; ok && (b.State == BorrowedRead || b.State == BorrowedWrite) {
		b.State = Available
	}
}

// BorrowKindState mirrors ast.BorrowKind without importing ast here
// (kept in this package purely as a linearity-table vocabulary word).
type BorrowKindState int

const (
	BorrowKindRead BorrowKindState = iota
	BorrowKindWrite
)

// CheckForgotten reports every linear binding still Available at the end
// of a scope (spec §4.4 rule 3: "a linear value that is never consumed by
// the end of its scope is an error — 'value forgotten'").
func (t *Table) CheckForgotten(names []string) *diagnostics.Diagnostic {
	for _, name := range names {
		b, ok := t.bindings[name]
		if !ok || !b.Linear() {
			continue
		}
		if b.State == Available {
			return diagnostics.ValueForgotten(name)
		}
	}
	return nil
}

// CheckForgottenAll checks every binding currently in the table, in
// deterministic (sorted) name order — used at the end of a function body,
// where every local let-binding (not just parameters) must have been
// consumed.
func (t *Table) CheckForgottenAll() *diagnostics.Diagnostic {
	names := make([]string, 0, len(t.bindings))
	for name := range t.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return t.CheckForgotten(names)
}

// Join compares two tables produced by the two arms of a branch (spec
// §4.4 rule 4: "asymmetric consumption — a linear binding consumed on
// one arm but not the other — is an error"). Bindings introduced inside
// only one arm are not compared (they are out of scope after the join).
// Returns the joined table (the then-arm's table is reused as a
// convention, since both arms must agree) and the first diagnosed
// mismatch, if any.
func Join(before, thenTable, elseTable *Table) (*Table, *diagnostics.Diagnostic) {
	for name, preBinding := range before.bindings {
		if !preBinding.Linear() {
			continue
		}
		tb, tok := thenTable.bindings[name]
		eb, eok := elseTable.bindings[name]
		if !tok || !eok {
			continue
		}
		if tb.State != eb.State {
			return nil, diagnostics.AsymmetricConsumption(name)
		}
	}
	return thenTable, nil
}
