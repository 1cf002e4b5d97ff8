package simulation

import (
	"github.com/ajitpratap0/prefabpool/pkg/scene"
	"github.com/ajitpratap0/prefabpool/pkg/transform"
)

// Bullet is the behaviour attached to every bullet entity. It is reset on
// activation so a reused bullet starts exactly like a fresh one.
type Bullet struct {
	speed float64

	Age         int
	Velocity    transform.Vec3
	Activations int
}

var _ scene.Behaviour = (*Bullet)(nil)

// OnActivate resets age and points the velocity along the spawn heading.
func (b *Bullet) OnActivate(e *scene.Entity) {
	b.Age = 0
	b.Velocity = e.Rotation.Forward().Scale(b.speed)
	b.Activations++
}

// OnDeactivate clears the motion state.
func (b *Bullet) OnDeactivate(*scene.Entity) {
	b.Velocity = transform.Vec3{}
}

// Step advances the bullet one frame.
func (b *Bullet) Step(e *scene.Entity) {
	e.Position = e.Position.Add(b.Velocity)
	b.Age++
}

// Expired reports whether the bullet has lived for lifetime frames.
func (b *Bullet) Expired(lifetime int) bool {
	return b.Age >= lifetime
}

// Turret spins in place and fires along its barrel.
type Turret struct {
	Position transform.Vec3
	Rotation transform.Quat
	TurnRate float64 // radians per frame
}

// Turn rotates the turret by one frame of TurnRate.
func (t *Turret) Turn() {
	t.Rotation = transform.FromYaw(t.TurnRate).Mul(t.Rotation)
}

// Muzzle is where bullets appear: one unit out along the barrel.
func (t *Turret) Muzzle() transform.Vec3 {
	return t.Position.Add(t.Rotation.Forward())
}

// BulletTemplate builds the scene template for bullets moving at speed.
func BulletTemplate(speed float64) *scene.Template {
	return &scene.Template{
		Name: BulletPrefab,
		Behaviour: func(*scene.Entity) scene.Behaviour {
			return &Bullet{speed: speed}
		},
	}
}
