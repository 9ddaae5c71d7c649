package host

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nspcc-dev/cdm-contract/cdm"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"go.uber.org/zap"
)

// stateKey is the store key of the encoded cdm.State.
var stateKey = []byte{0x01, 'c', 'd', 'm'}

// methodInitialize is the metrics and log label of Initialize calls.
const methodInitialize = "initialize"

var (
	// ErrNotInitialized is returned by calls made before Initialize.
	ErrNotInitialized = errors.New("state is not initialized")
	// ErrAlreadyInitialized is returned by the second Initialize call.
	ErrAlreadyInitialized = errors.New("state is already initialized")
)

// Option configures Host.
type Option func(*Host)

// WithLogger sets logger of the Host. Nop logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		h.log = l
	}
}

// WithMetrics makes Host report calls to m.
func WithMetrics(m *Metrics) Option {
	return func(h *Host) {
		h.metrics = m
	}
}

// Host serves CDM log calls against the state persisted in a store.
// Host is safe for concurrent use, calls are applied one by one in the
// order they acquire the Host.
type Host struct {
	mtx     sync.Mutex
	store   storage.Store
	log     *zap.Logger
	metrics *Metrics
}

// New creates Host over the given store. The store is not closed by Host.
func New(store storage.Store, opts ...Option) *Host {
	h := &Host{
		store: store,
		log:   zap.NewNop(),
	}

	for _, o := range opts {
		o(h)
	}

	return h
}

// Initialize creates the state owned by caller. It can be called only once
// per store; subsequent calls fail with ErrAlreadyInitialized.
func (h *Host) Initialize(caller cdm.Identity) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	_, err := h.load()
	switch {
	case err == nil:
		h.metrics.observe(methodInitialize, outcomeFailed)
		return ErrAlreadyInitialized
	case !errors.Is(err, ErrNotInitialized):
		h.metrics.observe(methodInitialize, outcomeFailed)
		return err
	}

	err = h.commit(cdm.Initialize(caller))
	if err != nil {
		h.metrics.observe(methodInitialize, outcomeFailed)
		return err
	}

	h.metrics.observe(methodInitialize, outcomeApplied)
	h.log.Info("state initialized", zap.Stringer("owner", caller))

	return nil
}

// AddProvider whitelists provider on behalf of caller, see cdm.AddProvider.
func (h *Host) AddProvider(caller, provider cdm.Identity) error {
	_, err := h.Invoke(caller, cdm.AddProviderCommand{Provider: provider})
	return err
}

// SubmitMessage appends m to the log on behalf of caller and reports whether
// it was accepted, see cdm.SubmitMessage. Dropped submissions are not errors.
func (h *Host) SubmitMessage(caller cdm.Identity, m cdm.Message) (bool, error) {
	res, err := h.Invoke(caller, cdm.SubmitMessageCommand{Message: m})
	return res.Applied, err
}

// Invoke applies cmd on behalf of caller. The call is atomic: either the
// resulting state is persisted or the store is left as it was.
func (h *Host) Invoke(caller cdm.Identity, cmd cdm.Command) (cdm.Result, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	method := cmd.Method()
	l := h.log.With(zap.String("method", method), zap.Stringer("caller", caller))

	s, err := h.load()
	if err != nil {
		h.metrics.observe(method, outcomeFailed)
		return cdm.Result{}, err
	}

	next := s.Copy()

	res, err := cmd.Apply(next, caller)
	if err != nil {
		if errors.Is(err, cdm.ErrUnauthorized) {
			h.metrics.observe(method, outcomeUnauthorized)
			l.Warn("call rejected", zap.Error(err))
		} else {
			h.metrics.observe(method, outcomeFailed)
			l.Error("call failed", zap.Error(err))
		}
		return cdm.Result{}, err
	}

	if !res.Applied {
		h.metrics.observe(method, outcomeDropped)
		l.Debug("call completed without effect")
		return res, nil
	}

	err = h.commit(next)
	if err != nil {
		h.metrics.observe(method, outcomeFailed)
		l.Error("state commit failed", zap.Error(err))
		return cdm.Result{}, err
	}

	h.metrics.observe(method, outcomeApplied)
	l.Debug("call applied",
		zap.Int("providers", next.ProviderCount()),
		zap.Int("messages", next.MessageCount()))

	return res, nil
}

// State returns a snapshot of the current state.
func (h *Host) State() (*cdm.State, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.load()
}

func (h *Host) load() (*cdm.State, error) {
	raw, err := h.store.Get(stateKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	return cdm.StateFromBytes(raw)
}

// commit writes s into a cached view of the store and persists the view.
func (h *Host) commit(s *cdm.State) error {
	raw, err := s.Bytes()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	view := storage.NewMemCachedStore(h.store)
	view.Put(stateKey, raw)

	_, err = view.Persist()
	if err != nil {
		return fmt.Errorf("persist state: %w", err)
	}

	return nil
}
