package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/vk/topoconst/internal/compiler"
)

// Artifact is a self-contained computation unit for one target constant.
type Artifact struct {
	TargetID string

	// Units holds one compiled program per definition in the target's
	// transitive closure, in topological order; the target's program is
	// last. Within a unit, intermediate step names are local to that unit.
	Units []*compiler.Program

	// Accuracy is the embedded final stage comparing the computed value
	// against the experimental reference.
	Accuracy AccuracyStage
}

// AccuracyStage carries the experimental reference baked into the artifact
// at generation time, so execution needs no access to the definition store.
type AccuracyStage struct {
	MeasuredValue  float64
	Uncertainty    float64
	AccuracyTarget float64
	Unit           string
}

// TargetProgram returns the compiled program for the target itself.
func (a *Artifact) TargetProgram() *compiler.Program {
	return a.Units[len(a.Units)-1]
}

// Corrections returns the correction factors the target's program applies.
func (a *Artifact) Corrections() []string {
	return a.TargetProgram().Corrections
}

// Steps returns the artifact's flattened step list. Local step names are
// qualified with their unit id so the flattened view has unique ids.
func (a *Artifact) Steps() []compiler.Step {
	var out []compiler.Step
	for _, unit := range a.Units {
		for _, s := range unit.Steps {
			qualified := s
			if s.ID != unit.ConstantID {
				qualified.ID = unit.ConstantID + "." + s.ID
			}
			out = append(out, qualified)
		}
	}
	return out
}

// Encode renders the artifact in its canonical textual form.
func (a *Artifact) Encode() string {
	var b strings.Builder
	fmt.Fprintf(&b, "target: %s\n", a.TargetID)
	for _, unit := range a.Units {
		fmt.Fprintf(&b, "unit %s {\n%s}\n", unit.ConstantID, unit.Encode())
	}
	fmt.Fprintf(&b, "accuracy: measured=%v uncertainty=%v target=%v unit=%s\n",
		a.Accuracy.MeasuredValue, a.Accuracy.Uncertainty, a.Accuracy.AccuracyTarget, a.Accuracy.Unit)
	return b.String()
}

// Fingerprint returns the SHA-256 of the canonical encoding, hex encoded.
// Equal fingerprints mean byte-identical artifacts.
func (a *Artifact) Fingerprint() string {
	sum := sha256.Sum256([]byte(a.Encode()))
	return hex.EncodeToString(sum[:])
}
