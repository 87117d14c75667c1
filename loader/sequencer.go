package loader

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/moffa90/go-sandbox/protocol"
	"github.com/moffa90/go-sandbox/symtab"
)

// Device is the session surface the Sequencer drives. *device.Session
// satisfies it.
type Device interface {
	ControlSender
	DisableRunningMode() error
	SetModePointer(address uint32) error
}

// Default source paths produced by the sandbox build.
const (
	DefaultSymbolsPath      = "build/sandbox_symbols.txt"
	DefaultInstructionsPath = "build/sandbox_inst.bin"
	DefaultDataPath         = "build/sandbox_data.bin"
)

// Sources names the build outputs a run installs.
type Sources struct {
	// Symbols is the symbol table text
	Symbols string

	// Instructions is the instruction region image
	Instructions string

	// Data is the data region image
	Data string
}

// DefaultSources returns the paths the sandbox build writes to.
func DefaultSources() Sources {
	return Sources{
		Symbols:      DefaultSymbolsPath,
		Instructions: DefaultInstructionsPath,
		Data:         DefaultDataPath,
	}
}

// Plan is everything a run needs, loaded and resolved before the device is
// touched.
type Plan struct {
	// Addresses are the resolved symbol addresses
	Addresses symtab.Addresses

	// Instructions is the instruction image placed at Addresses.InstBase
	Instructions protocol.Image

	// Data is the data image placed at Addresses.DataBase
	Data protocol.Image

	// Install is the address written to the mode pointer last
	Install uint32
}

// Load reads the symbol table and both images and resolves the required
// symbols. Errors are *SequenceError values at StepLoad or StepResolve.
func Load(src Sources, opts ...Option) (*Plan, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return load(src, cfg)
}

func load(src Sources, cfg Config) (*Plan, error) {
	text, err := cfg.ReadFile(src.Symbols)
	if err != nil {
		return nil, &SequenceError{Step: StepLoad, Err: fmt.Errorf("read symbols: %w", err)}
	}

	tab, err := symtab.ParseReader(bytes.NewReader(text))
	if err != nil {
		return nil, &SequenceError{Step: StepLoad, Err: err}
	}

	addrs, err := tab.Resolve()
	if err != nil {
		return nil, &SequenceError{Step: StepResolve, Err: err}
	}

	var install uint32
	switch cfg.InstallTarget {
	case InstallEntry:
		install = addrs.Entry
	case InstallMode:
		install = addrs.Mode
	default:
		return nil, &SequenceError{Step: StepResolve, Err: fmt.Errorf("unknown install target %q", cfg.InstallTarget)}
	}

	// 0 is the disable value of the mode pointer slot
	if install == protocol.DisabledAddress {
		return nil, &SequenceError{Step: StepResolve, Err: fmt.Errorf("install target %q resolves to 0x%08x, which disables the mode pointer", cfg.InstallTarget, install)}
	}

	inst, err := cfg.ReadFile(src.Instructions)
	if err != nil {
		return nil, &SequenceError{Step: StepLoad, Err: fmt.Errorf("read instructions: %w", err)}
	}

	data, err := cfg.ReadFile(src.Data)
	if err != nil {
		return nil, &SequenceError{Step: StepLoad, Err: fmt.Errorf("read data: %w", err)}
	}

	return &Plan{
		Addresses:    addrs,
		Instructions: protocol.Image{Name: "instructions", Base: addrs.InstBase, Data: inst},
		Data:         protocol.Image{Name: "data", Base: addrs.DataBase, Data: data},
		Install:      install,
	}, nil
}

// Sequencer installs a sandbox: it disables the running sandbox, uploads the
// instruction and data images, then installs the new mode pointer.
//
// A run that fails during upload leaves the previous sandbox disabled and
// its memory partially overwritten. The protocol has no read-back; recover
// by running the whole sequence again.
type Sequencer struct {
	dev      Device
	src      Sources
	config   Config
	uploader *Uploader
	running  sync.Mutex
}

// NewSequencer creates a Sequencer that installs the build outputs in src
// through dev.
//
// Example:
//
//	seq := loader.NewSequencer(sess, loader.DefaultSources(),
//	    loader.WithLogger(logger),
//	)
//	if err := seq.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
func NewSequencer(dev Device, src Sources, opts ...Option) *Sequencer {
	if dev == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Sequencer{
		dev:      dev,
		src:      src,
		config:   cfg,
		uploader: &Uploader{dev: dev, config: cfg},
	}
}

// Run performs the install sequence:
//  1. Load sources and resolve symbols
//  2. Disable the running sandbox
//  3. Wait the quiescence interval
//  4. Upload the instruction image
//  5. Upload the data image
//  6. Install the mode pointer
//
// Run stops at the first failure and returns a *SequenceError naming the
// step; later steps are not executed and nothing is rolled back. Nothing is
// sent to the device when step 1 fails. Cancelling ctx stops the run before
// its next step or chunk.
func (s *Sequencer) Run(ctx context.Context) error {
	if !s.running.TryLock() {
		return ErrBusy
	}
	defer s.running.Unlock()

	startTime := time.Now()

	// Phase 1: Load and resolve
	s.reportProgress(Progress{Phase: PhaseLoading})

	plan, err := load(s.src, s.config)
	if err != nil {
		return err
	}

	s.logInfo("resolved symbols",
		"sandbox_main", fmt.Sprintf("0x%08x", plan.Addresses.Entry),
		"sandbox_mode", fmt.Sprintf("0x%08x", plan.Addresses.Mode),
		"inst", fmt.Sprintf("0x%08x", plan.Addresses.InstBase),
		"data", fmt.Sprintf("0x%08x", plan.Addresses.DataBase),
	)

	// Phase 2: Disable the running sandbox
	if err := s.step(ctx, StepDisable, PhaseDisabling, startTime, s.dev.DisableRunningMode); err != nil {
		return err
	}

	// Phase 3: Let it exit
	if err := s.step(ctx, StepQuiesce, PhaseQuiescing, startTime, func() error {
		return s.config.sleep(ctx, s.config.Quiescence)
	}); err != nil {
		return err
	}

	// Phase 4-5: Upload both regions
	if err := s.step(ctx, StepUploadInst, PhaseUploading, startTime, func() error {
		return s.uploader.Upload(ctx, plan.Instructions)
	}); err != nil {
		return err
	}

	if err := s.step(ctx, StepUploadData, PhaseUploading, startTime, func() error {
		return s.uploader.Upload(ctx, plan.Data)
	}); err != nil {
		return err
	}

	// Phase 6: Install
	s.logInfo("upload complete, adding mode address",
		"target", string(s.config.InstallTarget),
		"addr", fmt.Sprintf("0x%08x", plan.Install),
	)

	if err := s.step(ctx, StepInstall, PhaseInstalling, startTime, func() error {
		return s.dev.SetModePointer(plan.Install)
	}); err != nil {
		return err
	}

	s.reportProgress(Progress{
		Phase:       PhaseComplete,
		Percentage:  100,
		ElapsedTime: time.Since(startTime),
	})

	s.logInfo("sandbox installed",
		"inst_bytes", len(plan.Instructions.Data),
		"data_bytes", len(plan.Data.Data),
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// step runs one device step unless ctx is already done, wrapping any
// failure in a *SequenceError.
func (s *Sequencer) step(ctx context.Context, step Step, phase string, start time.Time, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &SequenceError{Step: step, Err: fmt.Errorf("cancelled: %w", err)}
	}

	if phase != PhaseUploading {
		s.reportProgress(Progress{Phase: phase, ElapsedTime: time.Since(start)})
	}

	if err := fn(); err != nil {
		s.logError("sequence aborted", "step", string(step), "err", err)
		return &SequenceError{Step: step, Err: err}
	}
	return nil
}

// reportProgress calls the progress callback if configured.
func (s *Sequencer) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Sequencer) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Sequencer) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
