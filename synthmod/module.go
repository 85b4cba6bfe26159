// Package synthmod is the host-facing factory entry point: it returns a
// Module handle through which the host creates SoundAssets, Synthesizers
// and SynthesizerInstances.
package synthmod

import (
	"github.com/synthcore/synthcore"
	"github.com/synthcore/synthcore/config"
	"github.com/synthcore/synthcore/internal/dsplog"
	"github.com/synthcore/synthcore/params"
)

// Module is the single object the host obtains from the package's factory
// entry point. It owns the process-wide buffer pool, the parameter store,
// and logging, and mints the three object kinds the host asks for.
type Module struct {
	pool   *synthcore.SharedBufferPool
	params *params.Store
	log    *dsplog.Logger
}

// New is the factory entry point: the host calls this once at startup.
func New() *Module {
	return &Module{
		pool:   synthcore.NewSharedBufferPool(),
		params: params.NewStore(),
		log:    dsplog.New("synthcore: "),
	}
}

// Init applies the parsed config file, logging a warning for every
// unrecognized property.
func (m *Module) Init(cfg config.Config, warnings []string) {
	m.params.SetConfig(cfg)
	for _, w := range warnings {
		m.log.Warnf("config: %s", w)
	}
}

func (m *Module) CreateSoundAsset(path string, loader func(string) ([]byte, error), decoder synthcore.Decoder) *synthcore.SoundAsset {
	return synthcore.NewSoundAsset(path, loader, decoder)
}

func (m *Module) CreateSynthesizer() *synthcore.Synthesizer {
	return synthcore.NewSynthesizer()
}

func (m *Module) CreateSynthesizerInstance() *synthcore.SynthesizerInstance {
	return synthcore.NewSynthesizerInstance(m.pool)
}

// Dispatch runs a host debug command (e.g. "help") against this module's
// parameter store.
func (m *Module) Dispatch(command string, args []string) (string, error) {
	return m.params.Dispatch(command, args)
}
