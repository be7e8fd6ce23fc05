package vm

// Config holds the VM's operational resource limits, loaded from the
// environment by internal/maincmd so a host process can bound a script's
// call depth and running time without recompiling.
type Config struct {
	// MaxCallFrames bounds how many nested (possibly recursive) calls may be
	// in flight at once. A value <= 0 means no limit.
	MaxCallFrames int `env:"LOX_MAX_CALLFRAMES" envDefault:"1024"`

	// MaxSteps bounds the number of bytecode instructions a single Interpret
	// call may execute before the VM aborts it. A value <= 0 means no limit.
	MaxSteps int `env:"LOX_MAX_STEPS" envDefault:"0"`
}
