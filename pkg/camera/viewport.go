package camera

import "sync"

// Viewport is the camera plus interaction controller a transition drives.
// Update must be called after the position or target is changed externally.
type Viewport interface {
	Position() Vec3
	SetPosition(Vec3)
	Target() Vec3
	SetTarget(Vec3)
	Enabled() bool
	SetEnabled(bool)
	Update()
}

// ViewState is a consistent snapshot of an OrbitViewport.
type ViewState struct {
	Pose    Pose `json:"pose"`
	Enabled bool `json:"enabled"`
}

// OrbitViewport is an in-process viewport holding an orbit camera's pose and
// whether free interaction is allowed. Each Update publishes the current
// state to the registered hook.
type OrbitViewport struct {
	mu       sync.Mutex
	position Vec3
	target   Vec3
	enabled  bool
	updates  uint64
	onUpdate func(ViewState)
}

func NewOrbitViewport(initial Pose) *OrbitViewport {
	return &OrbitViewport{
		position: initial.Position,
		target:   initial.LookAt,
		enabled:  true,
	}
}

func (v *OrbitViewport) Position() Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.position
}

func (v *OrbitViewport) SetPosition(p Vec3) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.position = p
}

func (v *OrbitViewport) Target() Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.target
}

func (v *OrbitViewport) SetTarget(t Vec3) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.target = t
}

func (v *OrbitViewport) Enabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled
}

func (v *OrbitViewport) SetEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = enabled
}

// OnUpdate registers fn to receive the state after every Update. fn must
// not call back into the transition engine.
func (v *OrbitViewport) OnUpdate(fn func(ViewState)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onUpdate = fn
}

func (v *OrbitViewport) Update() {
	v.mu.Lock()
	v.updates++
	state := v.stateLocked()
	hook := v.onUpdate
	v.mu.Unlock()

	if hook != nil {
		hook(state)
	}
}

// Updates counts Update calls, one per rendered frame.
func (v *OrbitViewport) Updates() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updates
}

func (v *OrbitViewport) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

func (v *OrbitViewport) stateLocked() ViewState {
	return ViewState{
		Pose:    Pose{Position: v.position, LookAt: v.target},
		Enabled: v.enabled,
	}
}
