// Package render defines the visual collaborator of the show engine and its implementations
//
// The engine never draws; it creates handles, pushes transforms every frame and disposes
// handles when a firework leaves its active window. Scene keeps that state in memory and
// Terminal composes a Scene onto a tcell screen.
package render

import (
	"fmt"

	"github.com/lixenwraith/fireworks/vmath"
)

// Kind selects the primitive behind a visual
type Kind uint8

const (
	KindProjectile Kind = iota // Rising launch shell
	KindLaunchPath             // Trail behind the shell
	KindShrapnel               // One explosion fragment
	KindBurstPath              // Trail behind a fragment
)

var kindNames = [...]string{
	KindProjectile: "projectile",
	KindLaunchPath: "launch_path",
	KindShrapnel:   "shrapnel",
	KindBurstPath:  "burst_path",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsPath reports whether the kind is drawn from a polyline
func (k Kind) IsPath() bool {
	return k == KindLaunchPath || k == KindBurstPath
}

// Handle identifies a visual, zero is never issued
type Handle uint32

// VisualParams are the creation-time attributes of a visual
type VisualParams struct {
	Owner     int // Firework id, for grouping in snapshots
	Color     vmath.Color
	Scale     float64
	Thickness float64
}

// Renderer is implemented by anything that can display show visuals
// Calls with a disposed or unknown handle are ignored
type Renderer interface {
	CreateVisual(kind Kind, p VisualParams) Handle
	SetPosition(h Handle, p vmath.Vec3)
	SetScale(h Handle, s float64)
	SetColor(h Handle, c vmath.Color)
	SetPath(h Handle, pts []vmath.Vec3, thickness float64)
	Show(h Handle)
	Hide(h Handle)
	DisposeVisual(h Handle)
}
