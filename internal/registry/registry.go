package registry

import (
	"fmt"
	"math"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Fundamentals are the only true input parameters of the theory. Everything
// a helper or correction factor computes derives from these.
type Fundamentals struct {
	// C3 is the topological fixed point, 1/(8π).
	C3 float64
	// Phi0 is the fundamental VEV from RG self-consistency.
	Phi0 float64
	// MPlanck is the Planck mass in GeV.
	MPlanck float64
}

// DefaultFundamentals returns the canonical parameter set.
func DefaultFundamentals() Fundamentals {
	return Fundamentals{
		C3:      1 / (8 * math.Pi),
		Phi0:    0.053171,
		MPlanck: 1.2209e19,
	}
}

// Registry is the immutable map of named pure functions available to
// formulas. See the package documentation.
type Registry struct {
	fundamentals Fundamentals
	mathFuncs    map[string]function.Function
	helpers      map[string]function.Function
	corrections  map[string]function.Function
}

// Option customizes a registry at construction time. The registry stays
// immutable afterwards.
type Option func(*Registry)

// WithHelper adds an extra named helper function. Intended for tests that
// need instrumented helpers; production code uses the built-in set.
func WithHelper(name string, fn function.Function) Option {
	return func(r *Registry) {
		r.helpers[name] = fn
	}
}

// New constructs a registry over the given fundamental parameters.
func New(f Fundamentals, opts ...Option) *Registry {
	r := &Registry{
		fundamentals: f,
		mathFuncs:    mathWhitelist(),
		helpers:      make(map[string]function.Function),
		corrections:  make(map[string]function.Function),
	}

	r.helpers["gamma_n"] = unary(func(n float64) float64 {
		return cascadeGamma(n)
	})
	r.helpers["phi_n"] = unary(func(n float64) float64 {
		sum := 0.0
		for k := 0.0; k < n; k++ {
			sum += cascadeGamma(k)
		}
		return f.Phi0 * math.Exp(-sum)
	})

	r.corrections["correction_4d_loop"] = nullary(func() float64 { return 1 - 2*f.C3 })
	r.corrections["correction_kk_geometry"] = nullary(func() float64 { return 1 - 4*f.C3 })
	r.corrections["correction_vev_backreaction_plus"] = nullary(func() float64 { return 1 + 2*f.Phi0 })
	r.corrections["correction_vev_backreaction_minus"] = nullary(func() float64 { return 1 - 2*f.Phi0 })

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// cascadeGamma is the E₈ cascade attenuation at level n.
func cascadeGamma(n float64) float64 {
	return 0.834 + 0.108*n + 0.0105*n*n
}

// Fundamentals returns the parameter set the registry was built over.
func (r *Registry) Fundamentals() Fundamentals {
	return r.fundamentals
}

// IsMathFunction reports whether name is on the fixed mathematical whitelist.
func (r *Registry) IsMathFunction(name string) bool {
	_, ok := r.mathFuncs[name]
	return ok
}

// IsHelper reports whether name is a registered helper function.
func (r *Registry) IsHelper(name string) bool {
	_, ok := r.helpers[name]
	return ok
}

// IsCorrection reports whether name is a registered correction factor.
func (r *Registry) IsCorrection(name string) bool {
	_, ok := r.corrections[name]
	return ok
}

// HasFunction reports whether name resolves to any callable function.
func (r *Registry) HasFunction(name string) bool {
	return r.IsMathFunction(name) || r.IsHelper(name) || r.IsCorrection(name)
}

// Functions returns a fresh map of every callable function, suitable for an
// hcl.EvalContext. Mutating the returned map does not affect the registry.
func (r *Registry) Functions() map[string]function.Function {
	out := make(map[string]function.Function, len(r.mathFuncs)+len(r.helpers)+len(r.corrections))
	for name, fn := range r.mathFuncs {
		out[name] = fn
	}
	for name, fn := range r.helpers {
		out[name] = fn
	}
	for name, fn := range r.corrections {
		out[name] = fn
	}
	return out
}

// CorrectionNames returns every correction factor name in lexical order.
func (r *Registry) CorrectionNames() []string {
	out := make([]string, 0, len(r.corrections))
	for name := range r.corrections {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// mathWhitelist is the fixed set of mathematical functions a formula may
// call. Anything else fails symbol resolution at compile time.
func mathWhitelist() map[string]function.Function {
	return map[string]function.Function{
		"pow":  binary(math.Pow),
		"sqrt": unary(math.Sqrt),
		"exp":  unary(math.Exp),
		"log":  unary(math.Log),
		"sin":  unary(math.Sin),
		"cos":  unary(math.Cos),
		"asin": unary(math.Asin),
		"acos": unary(math.Acos),
	}
}

func nullary(impl func() float64) function.Function {
	return function.New(&function.Spec{
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.NumberFloatVal(impl()), nil
		},
	})
}

func unary(impl func(float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "x", Type: cty.Number}},
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			x, _ := args[0].AsBigFloat().Float64()
			return numberVal(impl(x))
		},
	})
}

func binary(impl func(float64, float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "x", Type: cty.Number},
			{Name: "y", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			x, _ := args[0].AsBigFloat().Float64()
			y, _ := args[1].AsBigFloat().Float64()
			return numberVal(impl(x, y))
		},
	})
}

// numberVal converts a float into a cty number, rejecting NaN instead of
// letting it panic inside cty.
func numberVal(v float64) (cty.Value, error) {
	if math.IsNaN(v) {
		return cty.NilVal, fmt.Errorf("result is not a number")
	}
	return cty.NumberFloatVal(v), nil
}
