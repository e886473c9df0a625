package core

// ProcessorConfig defines the framing used when a sample stream is reduced
// to one value per hop before it reaches a comb bank.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	HopSize    int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns 48 kHz input read in 64k blocks and
// reduced in hops of 256 samples.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  65536,
		HopSize:    256,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the number of samples read per block.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithHopSize sets the number of samples reduced into one frame value.
// A hop of 1 passes samples through unchanged.
func WithHopSize(hop int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if hop > 0 {
			cfg.HopSize = hop
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// FrameRate returns frames per second after hop reduction.
func (c ProcessorConfig) FrameRate() float64 {
	if c.HopSize <= 0 {
		return c.SampleRate
	}
	return c.SampleRate / float64(c.HopSize)
}
