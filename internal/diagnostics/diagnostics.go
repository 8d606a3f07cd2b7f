// Package diagnostics implements the error taxonomy of spec §7: every
// stage failure is one of a closed set of typed Go errors, each carrying a
// message built from styled fragments (Text/Code/Span) and, where
// applicable, a source span. Grounded on
// internal/typesystem/error.go's typed-error-per-category pattern,
// generalized across all seven categories instead of just one.
package diagnostics

import (
	"encoding/json"
	"strings"

	"github.com/amber-lang/amberc/internal/token"
)

// Category is the closed set of error kinds from spec §7.
type Category string

const (
	CategoryParse       Category = "ParseError"
	CategoryDeclaration Category = "DeclarationError"
	CategoryType        Category = "TypeError"
	CategoryLinearity   Category = "LinearityError"
	CategoryInstance    Category = "InstanceError"
	CategoryCli         Category = "CliError"
	CategoryInternal    Category = "InternalError"
)

// FragmentKind distinguishes the styled pieces a message is built from.
type FragmentKind string

const (
	FragmentText FragmentKind = "text"
	FragmentCode FragmentKind = "code"
	FragmentSpan FragmentKind = "span"
)

// Fragment is one styled piece of a diagnostic message.
type Fragment struct {
	Kind FragmentKind
	Text string
}

func Text(s string) Fragment { return Fragment{Kind: FragmentText, Text: s} }
func Code(s string) Fragment { return Fragment{Kind: FragmentCode, Text: s} }

// Diagnostic is the single error type every stage returns. Message class
// (e.g. "kind-mismatch", "value forgotten") is the first Text fragment by
// convention, matching spec §7's "message classes".
type Diagnostic struct {
	Category  Category
	Fragments []Fragment
	Span      token.Span
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(string(d.Category))
	b.WriteString(": ")
	for i, f := range d.Fragments {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(f.Text)
	}
	if !d.Span.IsZero() {
		b.WriteString(" (at ")
		b.WriteString(d.Span.String())
		b.WriteString(")")
	}
	return b.String()
}

// WithSpan returns a copy of d adorned with span, unless d already carries
// a non-zero span (the innermost span wins — mirrors exception-unwinding
// adorning the throw site, not the catch site).
func (d *Diagnostic) WithSpan(span token.Span) *Diagnostic {
	if !d.Span.IsZero() {
		return d
	}
	cp := *d
	cp.Span = span
	return &cp
}

func newf(cat Category, class string, rest ...Fragment) *Diagnostic {
	frags := append([]Fragment{Text(class)}, rest...)
	return &Diagnostic{Category: cat, Fragments: frags}
}

// Declaration error constructors, one per spec §4.1 message class.
func ModuleNameMismatch(iface, body string) *Diagnostic {
	return newf(CategoryDeclaration, "module name mismatch",
		Text("interface declares"), Code(iface), Text("but body declares"), Code(body))
}

func KindMismatch(name string) *Diagnostic {
	return newf(CategoryDeclaration, "declaration kind mismatch", Code(name))
}

func TypeMismatch(name string) *Diagnostic {
	return newf(CategoryDeclaration, "type mismatch", Code(name))
}

func UniverseMismatch(name string) *Diagnostic {
	return newf(CategoryDeclaration, "universe mismatch", Code(name))
}

func FunctionParameterMismatch(name, axis string) *Diagnostic {
	return newf(CategoryDeclaration, "function parameter mismatch",
		Code(name), Text("axis:"), Text(axis))
}

func MissingBody(name string) *Diagnostic {
	return newf(CategoryDeclaration, "missing body", Code(name))
}

func MultiArgumentTypeclass(name string) *Diagnostic {
	return newf(CategoryDeclaration, "multi-argument typeclass unsupported", Code(name))
}

func DuplicateTypeParameter(name string) *Diagnostic {
	return newf(CategoryDeclaration, "duplicate type parameter", Code(name))
}

// Type errors, spec §4.2/§4.3.
func UnknownType(name string) *Diagnostic {
	return newf(CategoryType, "unknown type", Code(name))
}

func UnknownIdentifier(name string) *Diagnostic {
	return newf(CategoryType, "unknown identifier", Code(name))
}

func ArgCountMismatch(name string, want, got int) *Diagnostic {
	return newf(CategoryType, "wrong number of type arguments", Code(name))
}

func IncompatibleUniverse(context string) *Diagnostic {
	return newf(CategoryType, "incompatible universe", Text(context))
}

func NonTotalSubstitution(name string) *Diagnostic {
	return newf(CategoryType, "substitution not total over typarams", Code(name))
}

func NonExhaustiveCase(unionName string) *Diagnostic {
	return newf(CategoryType, "non-exhaustive case", Code(unionName))
}

func DuplicateCase(tag string) *Diagnostic {
	return newf(CategoryType, "case covered more than once", Code(tag))
}

func TypeMismatchExpr(want, got string) *Diagnostic {
	return newf(CategoryType, "type mismatch", Text("expected"), Code(want), Text("got"), Code(got))
}

func UnsafeOperationOutsideUnsafeModule(op string) *Diagnostic {
	return newf(CategoryType, "unsafe operation outside unsafe module", Code(op))
}

// Linearity errors, spec §4.4.
func ValueUsedAfterConsumed(binding string) *Diagnostic {
	return newf(CategoryLinearity, "value used after being consumed", Code(binding))
}

func ValueForgotten(binding string) *Diagnostic {
	return newf(CategoryLinearity, "value forgotten", Code(binding))
}

func AsymmetricConsumption(binding string) *Diagnostic {
	return newf(CategoryLinearity, "asymmetric consumption across branches", Code(binding))
}

func LinearConsumedInLoop(binding string) *Diagnostic {
	return newf(CategoryLinearity, "linear value declared outside loop consumed inside it", Code(binding))
}

func DoubleReadInCall(binding string) *Diagnostic {
	return newf(CategoryLinearity, "same linear binding read twice in one call", Code(binding))
}

func UseWhileBorrowed(binding string) *Diagnostic {
	return newf(CategoryLinearity, "use of binding while borrowed", Code(binding))
}

func ReferenceEscapesRegion(regionName string) *Diagnostic {
	return newf(CategoryLinearity, "reference escapes its region", Code(regionName))
}

// Instance errors, spec §4.6.
func BadInstanceArgumentShape(traitName string) *Diagnostic {
	return newf(CategoryInstance, "bad instance argument shape", Code(traitName))
}

func OverlappingInstances(traitName string) *Diagnostic {
	return newf(CategoryInstance, "overlapping instances", Code(traitName))
}

func MissingInstance(traitName, typeName string) *Diagnostic {
	return newf(CategoryInstance, "missing instance", Code(traitName), Code(typeName))
}

func InstanceUniverseViolation(traitName string) *Diagnostic {
	return newf(CategoryInstance, "instance argument universe not accepted by typeclass", Code(traitName))
}

// CLI errors, spec §6.1.
func RepeatedFlag(name string) *Diagnostic {
	return newf(CategoryCli, "repeated flag", Code(name))
}

func UnknownFlag(name string) *Diagnostic {
	return newf(CategoryCli, "unknown flag", Code(name))
}

func MissingFlagValue(name string) *Diagnostic {
	return newf(CategoryCli, "flag requires a value", Code(name))
}

func BadEntrypoint(spec string) *Diagnostic {
	return newf(CategoryCli, "malformed entrypoint", Code(spec))
}

func UnknownTarget(name string) *Diagnostic {
	return newf(CategoryCli, "unknown target", Code(name))
}

// Internal invariant violations, spec §7.
func Internal(what string) *Diagnostic {
	return newf(CategoryInternal, what)
}

// Bag accumulates diagnostics across a pipeline run. Per spec §5, any
// stage aborts the whole pipeline on the first error — Bag.First reports
// that error; later additions after a first error are not expected but
// are kept for completeness (e.g. JSON-mode LSP-style reporting, which
// spec §7 explicitly calls out as wanting every diagnostic from every
// stage, not just the first).
type Bag struct {
	items []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic) {
	if d == nil {
		return
	}
	b.items = append(b.items, d)
}

func (b *Bag) Empty() bool { return len(b.items) == 0 }

func (b *Bag) All() []*Diagnostic { return b.items }

func (b *Bag) First() *Diagnostic {
	if len(b.items) == 0 {
		return nil
	}
	return b.items[0]
}

// jsonFragment/jsonDiagnostic mirror Fragment/Diagnostic for serialization
// without exposing Go-internal field tags on the public types above.
type jsonFragment struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type jsonDiagnostic struct {
	Category  string         `json:"category"`
	Fragments []jsonFragment `json:"fragments"`
	Span      string         `json:"span,omitempty"`
}

// MarshalJSON renders a diagnostic the way --errors=json (spec §6.1) emits
// it: kind, message fragments, and span.
func (d *Diagnostic) MarshalJSON() ([]byte, error) {
	jd := jsonDiagnostic{Category: string(d.Category)}
	for _, f := range d.Fragments {
		jd.Fragments = append(jd.Fragments, jsonFragment{Kind: string(f.Kind), Text: f.Text})
	}
	if !d.Span.IsZero() {
		jd.Span = d.Span.String()
	}
	return json.Marshal(jd)
}
