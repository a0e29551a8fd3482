// Package capture – workflow state machine
//
// This file implements the step-gated state machine driving a capture
// station. Every transition is validated against the current state, so UI
// bugs cannot submit half-finished registrations or leak an open camera.
package capture

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State identifies a step of the capture workflow.
type State int

const (
	// NoSubprogram is the initial state: nothing selected yet.
	NoSubprogram State = iota
	// SubprogramSelected means a sub-program was chosen; search is enabled.
	SubprogramSelected
	// PersonPending means the operator is searching for a person.
	PersonPending
	// PersonSelected means a directory person is chosen; capture is enabled.
	PersonSelected
	// CardCaptured means the credential photo has been taken.
	CardCaptured
	// ProofCaptured means the proof photo has been taken and the
	// registration can be submitted.
	ProofCaptured
	// Submitting means the registration is on the wire.
	Submitting
	// Success means the backend confirmed the registration.
	Success
	// Failed means the last submission failed; state is preserved so the
	// operator can retry or resolve a conflict.
	Failed
)

// String returns a short label for logging.
func (s State) String() string {
	switch s {
	case NoSubprogram:
		return "no_subprogram"
	case SubprogramSelected:
		return "subprogram_selected"
	case PersonPending:
		return "person_pending"
	case PersonSelected:
		return "person_selected"
	case CardCaptured:
		return "card_captured"
	case ProofCaptured:
		return "proof_captured"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ErrInvalidTransition is returned when an operation is not legal in the
// current state.
var ErrInvalidTransition = errors.New("capture: invalid transition")

// Backend is the slice of the API client the workflow needs. *Client
// satisfies it; tests substitute fakes.
type Backend interface {
	SearchPersons(ctx context.Context, name string, subprogram int) ([]Person, string, error)
	RegisterPerson(ctx context.Context, fullName, curp string, subprogram int) (*Person, error)
	Submit(ctx context.Context, sub Submission) (*SubmitResult, error)
}

// Workflow is the capture station state machine. All exported methods are
// safe for concurrent use; the UI may drive it from an event loop while
// debounced searches complete on timer goroutines.
type Workflow struct {
	backend Backend
	open    CameraOpener

	debounce   *Debouncer
	resetDelay time.Duration
	now        func() time.Time

	mu         sync.Mutex
	state      State
	subprogram int
	results    []Person
	message    string
	person     *Person
	cardImage  string
	proofImage string
	camera     Camera
	resetTimer *time.Timer
	lastErr    error
	lastResult *SubmitResult
}

// NewWorkflow constructs a Workflow in the NoSubprogram state. Searches
// are debounced by 500ms; the success screen resets after 3s.
func NewWorkflow(backend Backend, open CameraOpener) *Workflow {
	return &Workflow{
		backend:    backend,
		open:       open,
		debounce:   NewDebouncer(500 * time.Millisecond),
		resetDelay: 3 * time.Second,
		now:        time.Now,
		state:      NoSubprogram,
	}
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Err returns the error recorded by the last failed submission, if any.
func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Result returns the backend confirmation of the last successful
// submission, or nil.
func (w *Workflow) Result() *SubmitResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastResult
}

// Results returns the current search matches and guidance message.
func (w *Workflow) Results() ([]Person, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.results, w.message
}

// Person returns the selected person, or nil.
func (w *Workflow) Person() *Person {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.person
}

// SelectSubprogram chooses the sub-program and clears any search state,
// selection, and captured images from a previous person. It is not legal
// while a submission is on the wire.
func (w *Workflow) SelectSubprogram(subprogram int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Submitting {
		return ErrInvalidTransition
	}
	w.debounce.Cancel()
	w.clearPersonLocked()
	w.subprogram = subprogram
	if subprogram <= 0 {
		w.state = NoSubprogram
		return nil
	}
	w.state = SubprogramSelected
	return nil
}

// Search schedules a debounced directory search for query. Only the last
// call within the debounce window reaches the backend, and a response is
// discarded when a newer keystroke has superseded it.
func (w *Workflow) Search(ctx context.Context, query string) error {
	w.mu.Lock()
	switch w.state {
	case SubprogramSelected, PersonPending:
	default:
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	w.state = PersonPending
	sp := w.subprogram
	w.mu.Unlock()

	w.debounce.Schedule(func(gen uint64) {
		results, msg, err := w.backend.SearchPersons(ctx, query, sp)
		w.mu.Lock()
		defer w.mu.Unlock()
		// A newer keystroke or a state change invalidates this response.
		if !w.debounce.Latest(gen) || w.state != PersonPending {
			return
		}
		if err != nil {
			w.results, w.message = nil, ""
			return
		}
		w.results, w.message = results, msg
	})
	return nil
}

// SelectPerson picks the i-th search match and advances to PersonSelected.
func (w *Workflow) SelectPerson(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != PersonPending || i < 0 || i >= len(w.results) {
		return ErrInvalidTransition
	}
	p := w.results[i]
	w.person = &p
	w.state = PersonSelected
	return nil
}

// RegisterNewPerson is the escape hatch for a person missing from the
// directory: it registers them inline and then behaves like a selection.
func (w *Workflow) RegisterNewPerson(ctx context.Context, fullName, curp string) error {
	w.mu.Lock()
	switch w.state {
	case SubprogramSelected, PersonPending:
	default:
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	sp := w.subprogram
	w.mu.Unlock()

	p, err := w.backend.RegisterPerson(ctx, fullName, curp, sp)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case SubprogramSelected, PersonPending:
	default:
		// Reset raced the backend call; drop the result.
		return nil
	}
	if w.subprogram != sp {
		// The operator switched subprograms mid-flight; drop the result.
		return nil
	}
	w.debounce.Cancel()
	w.person = p
	w.results, w.message = nil, ""
	w.state = PersonSelected
	return nil
}

// CaptureCard grabs a frame for the credential photo. The camera is
// acquired on first use and stays open across retakes; it is released when
// the workflow leaves the capture steps.
func (w *Workflow) CaptureCard(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case PersonSelected, CardCaptured:
	default:
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	w.mu.Unlock()

	uri, err := w.grabEncoded(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.cardImage = uri
	w.state = CardCaptured
	return nil
}

// CaptureProof grabs a frame for the proof-of-address photo. Submission
// stays disabled until this step completes.
func (w *Workflow) CaptureProof(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case CardCaptured, ProofCaptured:
	default:
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	w.mu.Unlock()

	uri, err := w.grabEncoded(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.proofImage = uri
	w.state = ProofCaptured
	return nil
}

// RetakeCard discards the credential photo (and any proof photo taken
// after it) and returns to PersonSelected. The camera stays open.
func (w *Workflow) RetakeCard() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case CardCaptured, ProofCaptured:
	default:
		return ErrInvalidTransition
	}
	w.cardImage, w.proofImage = "", ""
	w.state = PersonSelected
	return nil
}

// RetakeProof discards the proof photo and returns to CardCaptured.
func (w *Workflow) RetakeProof() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != ProofCaptured {
		return ErrInvalidTransition
	}
	w.proofImage = ""
	w.state = CardCaptured
	return nil
}

// Submit sends the registration. Both photos must have been captured:
// Submit is legal only from ProofCaptured, and from Failed for retries
// (a fresh folio is generated on every attempt, which also resolves folio
// collisions).
//
// On success the workflow shows Success and resets to NoSubprogram after
// the display delay. On failure it moves to Failed and keeps all captured
// state; the recorded error tells the operator whether to retry
// (ErrTimeout, ErrFolioConflict) or resolve a duplicate (ErrPersonConflict).
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case ProofCaptured, Failed:
	default:
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	if w.person == nil || w.cardImage == "" || w.proofImage == "" {
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	// Leaving the capture steps: release the camera before the wire call.
	w.releaseCameraLocked()
	sub := Submission{
		Folio:      NewFolio(w.now()),
		CURP:       w.person.CURP,
		FullName:   w.person.FullName,
		Role:       w.person.Role,
		Section:    w.person.Section,
		Subprogram: w.subprogram,
		CardImage:  w.cardImage,
		ProofImage: w.proofImage,
	}
	w.state = Submitting
	w.lastErr = nil
	w.mu.Unlock()

	res, err := w.backend.Submit(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Submitting {
		// Reset raced the response; drop it.
		return nil
	}
	if err != nil {
		w.state = Failed
		w.lastErr = err
		return err
	}
	w.state = Success
	w.lastResult = res
	w.resetTimer = time.AfterFunc(w.resetDelay, w.Reset)
	return nil
}

// ResolveConflict acknowledges a duplicate-registration failure: the
// selected person and their photos are discarded and the workflow returns
// to the person search, keeping the sub-program.
func (w *Workflow) ResolveConflict() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Failed || !errors.Is(w.lastErr, ErrPersonConflict) {
		return ErrInvalidTransition
	}
	w.clearPersonLocked()
	w.lastErr = nil
	w.state = PersonPending
	return nil
}

// Reset returns the workflow to NoSubprogram, releasing the camera and
// cancelling any pending search or reset timer.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce.Cancel()
	if w.resetTimer != nil {
		w.resetTimer.Stop()
		w.resetTimer = nil
	}
	w.clearPersonLocked()
	w.subprogram = 0
	w.lastErr = nil
	w.lastResult = nil
	w.state = NoSubprogram
}

// grabEncoded acquires the camera if needed, grabs one frame, and encodes
// it as a JPEG data URI.
func (w *Workflow) grabEncoded(ctx context.Context) (string, error) {
	w.mu.Lock()
	cam := w.camera
	w.mu.Unlock()

	if cam == nil {
		opened, err := w.open(ctx)
		if err != nil {
			return "", err
		}
		w.mu.Lock()
		if w.camera == nil {
			w.camera = opened
			cam = opened
		} else {
			// Lost the race to another capture call; use the winner's.
			cam = w.camera
			defer opened.Close()
		}
		w.mu.Unlock()
	}

	frame, err := cam.Grab(ctx)
	if err != nil {
		return "", err
	}
	return EncodeJPEGDataURI(frame)
}

// clearPersonLocked drops search results, the selected person, captured
// images, and the camera. Callers must hold w.mu.
func (w *Workflow) clearPersonLocked() {
	w.results, w.message = nil, ""
	w.person = nil
	w.cardImage, w.proofImage = "", ""
	w.releaseCameraLocked()
}

// releaseCameraLocked closes the camera if open. Callers must hold w.mu.
func (w *Workflow) releaseCameraLocked() {
	if w.camera != nil {
		_ = w.camera.Close()
		w.camera = nil
	}
}
